package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/http/response"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/apierr"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/services"
)

type ProjectHandler struct {
	training   services.TrainingService
	reconciler services.StatusReconciler
	registry   services.ProjectRegistry
}

func NewProjectHandler(training services.TrainingService, reconciler services.StatusReconciler, registry services.ProjectRegistry) *ProjectHandler {
	return &ProjectHandler{training: training, reconciler: reconciler, registry: registry}
}

// projectView is the wire shape for a listed project.
type projectView struct {
	JobID     string `json:"job_id"`
	Name      string `json:"name"`
	Version   int    `json:"version"`
	GCSPath   string `json:"gcs_path"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func viewOf(p *domain.Project) projectView {
	return projectView{
		JobID:     p.JobID,
		Name:      p.Name,
		Version:   p.Version,
		GCSPath:   p.StorageLocation,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// POST /api/submit-form
func (h *ProjectHandler) SubmitForm(c *gin.Context) {
	var params domain.TrainingParams
	if err := c.ShouldBindJSON(&params); err != nil {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeValidation,
			fmt.Errorf("no training parameters provided: %w", err))
		return
	}

	result, err := h.training.Submit(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.RespondOK(c, gin.H{
		"message":      "Training job started successfully",
		"gcs_path":     result.DatasetURI,
		"data_preview": result.Preview,
		"result":       result,
	})
}

// GET /api/training/status/:job_id
func (h *ProjectHandler) TrainingStatus(c *gin.Context) {
	jobID := c.Param("job_id")
	// Tolerate fully qualified resource names; only the short id matters.
	if i := strings.LastIndex(jobID, "/"); i >= 0 {
		jobID = jobID[i+1:]
	}
	if jobID == "" {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeMissingParams,
			fmt.Errorf("job_id is required"))
		return
	}

	handle, err := h.reconciler.Reconcile(c.Request.Context(), jobID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, handle)
}

// GET /api/get-user-projects?email=
func (h *ProjectHandler) GetUserProjects(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.RespondError(c, http.StatusBadRequest, apierr.CodeMissingParams,
			fmt.Errorf("email parameter is required"))
		return
	}
	ctx := c.Request.Context()

	// Refresh anything still in flight, then list what finished. A user the
	// registry has never seen simply has no projects yet.
	if err := h.reconciler.ReconcilePendingForUser(ctx, email); err != nil {
		respondServiceError(c, err)
		return
	}

	projects, err := h.registry.FindProjectsForUser(ctx, email, domain.StatusSuccess)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	views := make([]projectView, 0, len(projects))
	for _, p := range projects {
		views = append(views, viewOf(p))
	}
	response.RespondOK(c, gin.H{"projects": views})
}
