package v1

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"resume-ledger-backend/internal/delivery/http/response"
	"resume-ledger-backend/internal/domain"
	"resume-ledger-backend/pkg/apperror"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

type BlobHandler struct {
	avatarUC         domain.AvatarUsecase
	maxBytes         int64
	defaultDeletable bool
}

func NewBlobHandler(public *gin.RouterGroup, uploadLimit gin.HandlerFunc, avatarUC domain.AvatarUsecase, maxBytes int64, defaultDeletable bool) {
	handler := &BlobHandler{
		avatarUC:         avatarUC,
		maxBytes:         maxBytes,
		defaultDeletable: defaultDeletable,
	}

	public.POST("/blobs", uploadLimit, handler.PublishBlob)
	public.GET("/blobs/:blobId", handler.ReadBlob)
}

// PublishBlob godoc
// @Summary      Publish blob
// @Description  Stores the raw request body. Falls back to an inline data URI when the store cannot take it.
// @Tags         blobs
// @Accept       application/octet-stream
// @Produce      json
// @Param        epochs     query  int   false  "Retention epochs"
// @Param        deletable  query  bool  false  "Whether the blob may be deleted before expiry"
// @Success      201  {object}  response.Response{data=domain.PublishResult}
// @Failure      400  {object}  response.Response
// @Failure      413  {object}  response.Response
// @Router       /blobs [post]
func (h *BlobHandler) PublishBlob(c *gin.Context) {
	epochs := 0
	if raw := c.Query("epochs"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			c.Error(apperror.BadRequest("epochs must be a non-negative integer"))
			return
		}
		epochs = v
	}

	deletable := h.defaultDeletable
	if raw := c.Query("deletable"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.Error(apperror.BadRequest("deletable must be a boolean"))
			return
		}
		deletable = v
	}

	data, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.Error(apperror.New(http.StatusRequestEntityTooLarge, "Blob is too large", err))
			return
		}
		c.Error(apperror.BadRequest("Failed to read request body"))
		return
	}

	result, err := h.avatarUC.PublishBlob(c.Request.Context(), data, epochs, deletable)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Blob published", result)
}

// ReadBlob godoc
// @Summary      Read blob
// @Tags         blobs
// @Produce      application/octet-stream
// @Param        blobId  path  string  true  "Blob id"
// @Success      200
// @Failure      404  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /blobs/{blobId} [get]
func (h *BlobHandler) ReadBlob(c *gin.Context) {
	data, err := h.avatarUC.ReadBlob(c.Request.Context(), c.Param("blobId"))
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400, immutable")
	c.Data(http.StatusOK, mimetype.Detect(data).String(), data)
}
