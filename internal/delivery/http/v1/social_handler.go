package v1

import (
	"net/http"

	"resume-ledger-backend/internal/delivery/http/response"
	"resume-ledger-backend/internal/domain"
	"resume-ledger-backend/pkg/apperror"
	"resume-ledger-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type SocialHandler struct {
	socialUC       domain.SocialUsecase
	securityLogger *security.SecurityLogger
}

type BindSocialRequest struct {
	Handle string `json:"handle" binding:"required"`
}

func NewSocialHandler(public *gin.RouterGroup, writeLimit gin.HandlerFunc, socialUC domain.SocialUsecase, securityLogger *security.SecurityLogger) {
	handler := &SocialHandler{socialUC: socialUC, securityLogger: securityLogger}

	social := public.Group("/resumes/owner/:owner/social")
	{
		social.GET("", handler.Status)
		social.PUT("", writeLimit, handler.Bind)
		social.DELETE("", writeLimit, handler.Unbind)
	}
}

// Status godoc
// @Summary      Social binding status
// @Tags         social
// @Produce      json
// @Param        owner  path  string  true  "Owner address (0x...)"
// @Success      200  {object}  response.Response{data=domain.SocialBinding}
// @Failure      400  {object}  response.Response
// @Router       /resumes/owner/{owner}/social [get]
func (h *SocialHandler) Status(c *gin.Context) {
	binding, err := h.socialUC.Status(c.Request.Context(), c.Param("owner"))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Social binding retrieved", binding)
}

// Bind godoc
// @Summary      Bind social account
// @Tags         social
// @Accept       json
// @Produce      json
// @Param        owner    path  string             true  "Owner address (0x...)"
// @Param        request  body  BindSocialRequest  true  "Social handle"
// @Success      200  {object}  response.Response{data=domain.SocialBinding}
// @Failure      400  {object}  response.Response
// @Router       /resumes/owner/{owner}/social [put]
func (h *SocialHandler) Bind(c *gin.Context) {
	owner := c.Param("owner")

	var req BindSocialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	binding, err := h.socialUC.Bind(c.Request.Context(), owner, req.Handle)
	if err != nil {
		c.Error(err)
		return
	}

	h.securityLogger.LogOverlayChanged(c.Request.Context(), owner, c.ClientIP(), c.GetString("RequestID"), "social", "bind")
	response.Success(c, http.StatusOK, "Social account bound", binding)
}

// Unbind godoc
// @Summary      Unbind social account
// @Tags         social
// @Produce      json
// @Param        owner  path  string  true  "Owner address (0x...)"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /resumes/owner/{owner}/social [delete]
func (h *SocialHandler) Unbind(c *gin.Context) {
	owner := c.Param("owner")

	if err := h.socialUC.Unbind(c.Request.Context(), owner); err != nil {
		c.Error(err)
		return
	}

	h.securityLogger.LogOverlayChanged(c.Request.Context(), owner, c.ClientIP(), c.GetString("RequestID"), "social", "unbind")
	response.Success(c, http.StatusOK, "Social account unbound", nil)
}
