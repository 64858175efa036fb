package v1

import (
	"errors"
	"io"
	"net/http"

	"resume-ledger-backend/internal/delivery/http/response"
	"resume-ledger-backend/internal/domain"
	"resume-ledger-backend/pkg/apperror"
	"resume-ledger-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type AvatarHandler struct {
	avatarUC       domain.AvatarUsecase
	securityLogger *security.SecurityLogger
	maxBytes       int64
}

type SetAvatarRequest struct {
	URL string `json:"url" binding:"required"`
}

// NewAvatarHandler registers avatar routes. uploadLimit runs before the
// multipart upload only; writeLimit guards URL overrides.
func NewAvatarHandler(public *gin.RouterGroup, uploadLimit, writeLimit gin.HandlerFunc, avatarUC domain.AvatarUsecase, securityLogger *security.SecurityLogger, maxBytes int64) {
	handler := &AvatarHandler{
		avatarUC:       avatarUC,
		securityLogger: securityLogger,
		maxBytes:       maxBytes,
	}

	public.PUT("/resumes/owner/:owner/avatar", writeLimit, handler.SetAvatarURL)
	public.POST("/resumes/owner/:owner/avatar", uploadLimit, handler.UploadAvatar)
}

// SetAvatarURL godoc
// @Summary      Set avatar URL
// @Description  Records an externally hosted avatar (http(s) URL or image data URI) for an owner.
// @Tags         avatars
// @Accept       json
// @Produce      json
// @Param        owner    path  string            true  "Owner address (0x...)"
// @Param        request  body  SetAvatarRequest  true  "Avatar URL"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /resumes/owner/{owner}/avatar [put]
func (h *AvatarHandler) SetAvatarURL(c *gin.Context) {
	owner := c.Param("owner")

	var req SetAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	if err := h.avatarUC.SetAvatarURL(c.Request.Context(), owner, req.URL); err != nil {
		h.logRejected(c, owner, err)
		c.Error(err)
		return
	}

	h.securityLogger.LogOverlayChanged(c.Request.Context(), owner, c.ClientIP(), c.GetString("RequestID"), "avatar", "set")
	response.Success(c, http.StatusOK, "Avatar updated successfully", gin.H{"owner": owner, "avatar_url": req.URL})
}

// UploadAvatar godoc
// @Summary      Upload avatar
// @Description  Validates, downsizes and publishes an avatar image. The response tier tells whether the image is durably stored or inlined.
// @Tags         avatars
// @Accept       multipart/form-data
// @Produce      json
// @Param        owner  path      string  true  "Owner address (0x...)"
// @Param        file   formData  file    true  "Image file (jpg, png, gif, webp)"
// @Success      201  {object}  response.Response{data=domain.PublishResult}
// @Failure      400  {object}  response.Response
// @Failure      413  {object}  response.Response
// @Failure      429  {object}  response.Response
// @Router       /resumes/owner/{owner}/avatar [post]
func (h *AvatarHandler) UploadAvatar(c *gin.Context) {
	owner := c.Param("owner")
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Error(apperror.New(http.StatusRequestEntityTooLarge, "Avatar file is too large", err))
			return
		}
		c.Error(apperror.BadRequest("Avatar file is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.Error(apperror.Internal(err))
		return
	}

	result, err := h.avatarUC.UploadAvatar(c.Request.Context(), owner, fileHeader.Filename, data)
	if err != nil {
		h.logRejected(c, owner, err)
		c.Error(err)
		return
	}

	h.securityLogger.LogUploadAccepted(c.Request.Context(), owner, c.ClientIP(), c.GetString("RequestID"), string(result.Tier), result.Size)
	response.Success(c, http.StatusCreated, "Avatar uploaded successfully", result)
}

func (h *AvatarHandler) logRejected(c *gin.Context, owner string, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Code == http.StatusBadRequest {
		h.securityLogger.LogValidationFailed(c.Request.Context(), owner, c.ClientIP(), c.GetString("RequestID"), appErr.Message)
	}
}
