package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/http/response"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/apierr"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/services"
)

type DatasetHandler struct {
	datasets services.DatasetService
}

func NewDatasetHandler(datasets services.DatasetService) *DatasetHandler {
	return &DatasetHandler{datasets: datasets}
}

// POST /api/upload
func (h *DatasetHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation,
			fmt.Errorf("no file part"))
		return
	}
	if strings.TrimSpace(fileHeader.Filename) == "" {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation,
			fmt.Errorf("no selected file"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeIngestFailure, err)
		return
	}
	defer f.Close()

	path, err := h.datasets.StoreUpload(fileHeader.Filename, f)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation, err)
		return
	}

	response.RespondOK(c, gin.H{
		"message":   "File uploaded successfully",
		"file_path": path,
	})
}

// GET /api/input-columns?job_id=&email=
func (h *DatasetHandler) InputColumns(c *gin.Context) {
	jobID := c.Query("job_id")
	email := c.Query("email")
	if jobID == "" || email == "" {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeMissingParams,
			fmt.Errorf("job_id and email parameters are required"))
		return
	}

	cols, err := h.datasets.InputColumns(c.Request.Context(), email, jobID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"columns": cols})
}
