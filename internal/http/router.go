package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/SamruddhiBrainlab/Insightsmix-project/internal/http/handlers"
	httpMW "github.com/SamruddhiBrainlab/Insightsmix-project/internal/http/middleware"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	DatasetHandler *httpH.DatasetHandler
	ProjectHandler *httpH.ProjectHandler
	ReportHandler  *httpH.ReportHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.DatasetHandler != nil {
			api.POST("/upload", cfg.DatasetHandler.Upload)
			api.GET("/input-columns", cfg.DatasetHandler.InputColumns)
		}

		if cfg.ProjectHandler != nil {
			api.POST("/submit-form", cfg.ProjectHandler.SubmitForm)
			api.GET("/training/status/:job_id", cfg.ProjectHandler.TrainingStatus)
			api.GET("/get-user-projects", cfg.ProjectHandler.GetUserProjects)
		}

		if cfg.ReportHandler != nil {
			api.GET("/get-report", cfg.ReportHandler.GetReport)
			api.GET("/genai-summary-files", cfg.ReportHandler.GetSummaryFile)
		}
	}

	return r
}
