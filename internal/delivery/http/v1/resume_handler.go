package v1

import (
	"fmt"
	"net/http"

	"resume-ledger-backend/internal/delivery/http/response"
	"resume-ledger-backend/internal/domain"
	"resume-ledger-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type ResumeHandler struct {
	resumeUC domain.ResumeUsecase
	exportUC domain.ExportUsecase
	validate *validator.Validate
}

// NewResumeHandler registers the public directory routes. refreshLimit guards
// the endpoint that reconciles against the ledger.
func NewResumeHandler(public *gin.RouterGroup, refreshLimit gin.HandlerFunc, resumeUC domain.ResumeUsecase, exportUC domain.ExportUsecase, validate *validator.Validate) {
	handler := &ResumeHandler{
		resumeUC: resumeUC,
		exportUC: exportUC,
		validate: validate,
	}

	resumes := public.Group("/resumes")
	{
		resumes.GET("", refreshLimit, handler.ListResumes)
		resumes.GET("/cached", handler.CachedResumes)
		resumes.GET("/export", handler.ExportDirectory)
		resumes.GET("/owner/:owner", handler.GetOwnerResume)
		resumes.GET("/owner/:owner/exists", handler.HasResume)
	}
}

// ListResumes godoc
// @Summary      List resumes
// @Description  Rebuilds the directory from the ledger and returns every resume, newest first.
// @Tags         resumes
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Resume}
// @Failure      429  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /resumes [get]
func (h *ResumeHandler) ListResumes(c *gin.Context) {
	resumes, err := h.resumeUC.ListResumes(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resumes retrieved successfully", resumes)
}

// CachedResumes godoc
// @Summary      List cached resumes
// @Description  Returns the last reconciled directory, rebuilding it only when nothing is cached yet.
// @Tags         resumes
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Resume}
// @Failure      502  {object}  response.Response
// @Router       /resumes/cached [get]
func (h *ResumeHandler) CachedResumes(c *gin.Context) {
	resumes, err := h.resumeUC.CachedResumes(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resumes retrieved successfully", resumes)
}

// ExportDirectory godoc
// @Summary      Export directory
// @Description  Downloads the cached directory as an Excel workbook or CSV file.
// @Tags         resumes
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce      text/csv
// @Param        format  query  string  false  "xlsx (default) or csv"
// @Success      200
// @Failure      400  {object}  response.Response
// @Router       /resumes/export [get]
func (h *ResumeHandler) ExportDirectory(c *gin.Context) {
	format := c.Query("format")

	content, filename, err := h.exportUC.ExportDirectory(c.Request.Context(), format)
	if err != nil {
		c.Error(err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if format == "csv" {
		contentType = "text/csv; charset=utf-8"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, content)
}

// GetOwnerResume godoc
// @Summary      Get resume by owner
// @Description  Returns the current resume of a wallet address.
// @Tags         resumes
// @Produce      json
// @Param        owner  path  string  true  "Owner address (0x...)"
// @Success      200  {object}  response.Response{data=domain.Resume}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      502  {object}  response.Response
// @Router       /resumes/owner/{owner} [get]
func (h *ResumeHandler) GetOwnerResume(c *gin.Context) {
	owner := c.Param("owner")
	if err := h.validate.Var(owner, "required,sui_address"); err != nil {
		c.Error(apperror.BadRequest("Invalid owner address"))
		return
	}

	resume, err := h.resumeUC.GetOwnerResume(c.Request.Context(), owner)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resume retrieved successfully", resume)
}

// HasResume godoc
// @Summary      Check resume existence
// @Tags         resumes
// @Produce      json
// @Param        owner  path  string  true  "Owner address (0x...)"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /resumes/owner/{owner}/exists [get]
func (h *ResumeHandler) HasResume(c *gin.Context) {
	owner := c.Param("owner")
	if err := h.validate.Var(owner, "required,sui_address"); err != nil {
		c.Error(apperror.BadRequest("Invalid owner address"))
		return
	}

	exists, err := h.resumeUC.HasResume(c.Request.Context(), owner)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Resume lookup completed", gin.H{"owner": owner, "exists": exists})
}
