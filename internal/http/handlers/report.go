package handlers

import (
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/http/response"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/apierr"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/services"
)

type ReportHandler struct {
	reports services.ReportResolver
}

func NewReportHandler(reports services.ReportResolver) *ReportHandler {
	return &ReportHandler{reports: reports}
}

func reportContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".md":
		return "text/markdown"
	case ".json":
		return "application/json"
	case ".csv":
		return "text/csv"
	default:
		return "text/html"
	}
}

func (h *ReportHandler) serve(c *gin.Context, email, jobID, filename string) {
	content, err := h.reports.GetReport(c.Request.Context(), email, jobID, filename)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondDocument(c, reportContentType(filename), content)
}

// GET /api/get-report?project_id=&email=&filename=
func (h *ReportHandler) GetReport(c *gin.Context) {
	jobID := c.Query("project_id")
	email := c.Query("email")
	filename := c.Query("filename")
	if jobID == "" || email == "" {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeMissingParams,
			fmt.Errorf("project_id and email parameters are required"))
		return
	}
	if filename == "" {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeMissingParams,
			fmt.Errorf("filename parameter is required"))
		return
	}
	h.serve(c, email, jobID, filename)
}

// GET /api/genai-summary-files?job_id=&email=&filename=
func (h *ReportHandler) GetSummaryFile(c *gin.Context) {
	jobID := c.Query("job_id")
	email := c.Query("email")
	filename := c.Query("filename")
	if jobID == "" || email == "" || filename == "" {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeMissingParams,
			fmt.Errorf("job_id, email and filename parameters are required"))
		return
	}
	h.serve(c, email, jobID, filename)
}
