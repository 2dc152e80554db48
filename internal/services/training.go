package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/clients/gcp"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/clients/vertex"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/apierr"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/logger"
)

// SubmitResult is handed back to the client right after the executor
// accepts the job: the id to poll, the namespace artifacts will appear
// under, and a preview of the parsed dataset.
type SubmitResult struct {
	JobID           string              `json:"job_id"`
	DisplayName     string              `json:"display_name"`
	Version         int                 `json:"version"`
	StorageLocation string              `json:"storage_location"`
	DatasetURI      string              `json:"gcs_path"`
	Preview         []map[string]string `json:"data_preview"`
}

// TrainingService orchestrates a submission end to end: stage dataset into
// the artifact store, start the remote job, register the project PENDING.
// Any upstream failure aborts the submission; nothing is registered for a
// job the executor never accepted.
type TrainingService interface {
	Submit(ctx context.Context, params domain.TrainingParams) (*SubmitResult, error)
}

type trainingService struct {
	log      *logger.Logger
	registry ProjectRegistry
	datasets DatasetService
	store    gcp.ArtifactStore
	executor vertex.TrainingExecutor
	now      func() time.Time
}

func NewTrainingService(baseLog *logger.Logger, registry ProjectRegistry, datasets DatasetService, store gcp.ArtifactStore, executor vertex.TrainingExecutor) TrainingService {
	return &trainingService{
		log:      baseLog.With("service", "TrainingService"),
		registry: registry,
		datasets: datasets,
		store:    store,
		executor: executor,
		now:      time.Now,
	}
}

func (s *trainingService) Submit(ctx context.Context, params domain.TrainingParams) (*SubmitResult, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}

	preview, err := s.datasets.Preview(params.DataSource)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeIngestFailure,
			fmt.Errorf("preview dataset %s: %w", params.DataSource, err))
	}
	data, err := os.ReadFile(params.DataSource)
	if err != nil {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeIngestFailure,
			fmt.Errorf("read dataset %s: %w", params.DataSource, err))
	}

	version, err := s.registry.NextVersion(ctx, params.UserEmail, params.ProjectName)
	if err != nil {
		return nil, fmt.Errorf("resolve project version: %w", err)
	}

	now := s.now().UTC()
	// One namespace per project, assigned here and never reused; every
	// artifact for this job lives under it.
	namespace := fmt.Sprintf("result/%s-%s", params.ProjectName, now.Format("2006-01-02_15-04-05"))
	datasetKey := namespace + "/" + filepath.Base(params.DataSource)

	if err := s.store.Upload(ctx, datasetKey, bytes.NewReader(data), "text/csv"); err != nil {
		return nil, apierr.Upstream(fmt.Errorf("stage dataset: %w", err))
	}

	// The EDA report rides along at submit time so clients can inspect the
	// dataset while the job runs. Failing to build it never fails the
	// submission.
	if report, err := buildEDAReport(data); err != nil {
		s.log.Warn("Failed to build EDA report", "dataset", params.DataSource, "error", err)
	} else if err := s.store.Upload(ctx, namespace+"/eda_report.html", strings.NewReader(report), "text/html"); err != nil {
		s.log.Warn("Failed to upload EDA report", "namespace", namespace, "error", err)
	}

	handle, err := s.executor.Submit(ctx, vertex.SubmitSpec{
		DisplayName: fmt.Sprintf("%s-%s", params.ProjectName, now.Format("20060102-150405")),
		DatasetURI:  s.store.URI(datasetKey),
		ResultDir:   namespace,
		BucketName:  s.store.Bucket(),
		Params:      params,
	})
	if err != nil {
		return nil, apierr.Upstream(fmt.Errorf("start training job: %w", err))
	}

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal training params: %w", err)
	}
	if _, err := s.registry.UpsertProject(ctx, params.UserEmail, params.ProjectName, version, namespace, handle.JobID, datatypes.JSON(paramsJSON), domain.StatusPending); err != nil {
		// The remote job is already running; surface the fault so the
		// client can retry registration by resubmitting the status poll.
		return nil, fmt.Errorf("register project: %w", err)
	}

	s.datasets.Discard(params.DataSource)

	s.log.Info("Training job submitted",
		"job_id", handle.JobID, "project", params.ProjectName, "version", version, "namespace", namespace)

	return &SubmitResult{
		JobID:           handle.JobID,
		DisplayName:     handle.DisplayName,
		Version:         version,
		StorageLocation: namespace,
		DatasetURI:      s.store.URI(datasetKey),
		Preview:         preview.Rows,
	}, nil
}

func validateParams(params domain.TrainingParams) error {
	var missing []string
	if strings.TrimSpace(params.ProjectName) == "" {
		missing = append(missing, "projectName")
	}
	if strings.TrimSpace(params.UserEmail) == "" {
		missing = append(missing, "userEmail")
	}
	if strings.TrimSpace(params.DataSource) == "" {
		missing = append(missing, "dataSource")
	}
	if len(params.KPI) == 0 {
		missing = append(missing, "kpi")
	}
	if len(params.Media) == 0 {
		missing = append(missing, "media")
	}
	if len(params.MediaSpend) == 0 {
		missing = append(missing, "mediaSpend")
	}
	if len(missing) > 0 {
		return apierr.New(http.StatusBadRequest, apierr.CodeMissingParams,
			fmt.Errorf("missing training parameters: %s", strings.Join(missing, ", ")))
	}
	return nil
}
