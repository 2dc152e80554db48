package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/data/repos/testutil"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/apierr"
)

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "campaign.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))
	return path
}

func validTrainingParams(email, dataSource string) domain.TrainingParams {
	return domain.TrainingParams{
		ProjectName: "q3-launch",
		UserEmail:   email,
		DataSource:  dataSource,
		Time:        []string{"week"},
		Geo:         []string{"geo"},
		KPI:         []string{"revenue"},
		Media:       []string{"tv_impressions"},
		MediaSpend:  []string{"tv_spend"},
	}
}

func newTestTrainingService(t *testing.T, store *fakeStore, exec *fakeExecutor) (TrainingService, ProjectRegistry) {
	t.Helper()
	t.Setenv("UPLOAD_DIR", t.TempDir())
	registry, _ := newTestRegistry(t)
	datasets := NewDatasetService(testutil.Logger(t), registry, store)
	svc := NewTrainingService(testutil.Logger(t), registry, datasets, store, exec)
	svc.(*trainingService).now = func() time.Time {
		return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	}
	return svc, registry
}

func TestSubmitRegistersPendingProject(t *testing.T) {
	store := newFakeStore()
	exec := newFakeExecutor()
	exec.nextJobID = "4242424242"
	svc, registry := newTestTrainingService(t, store, exec)
	ctx := context.Background()
	email := "submit-ok@test.dev"

	dataset := writeDataset(t)
	res, err := svc.Submit(ctx, validTrainingParams(email, dataset))
	require.NoError(t, err)

	assert.Equal(t, "4242424242", res.JobID)
	assert.Equal(t, 1, res.Version)
	assert.Equal(t, "result/q3-launch-2025-06-15_10-30-00", res.StorageLocation)
	assert.Equal(t, "gs://test-bucket/result/q3-launch-2025-06-15_10-30-00/campaign.csv", res.DatasetURI)
	assert.Len(t, res.Preview, 3)

	// Dataset staged in the artifact store under the job namespace.
	staged, err := store.DownloadText(ctx, res.StorageLocation+"/campaign.csv")
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, staged)

	// Registered as PENDING under the executor's job id.
	p, err := registry.FindProject(ctx, email, "4242424242")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, p.Status)
	assert.Equal(t, "q3-launch", p.Name)

	// The local staging copy is gone once the job is off.
	_, err = os.Stat(dataset)
	assert.True(t, os.IsNotExist(err))

	// The executor saw the dataset location and the column groups.
	require.Len(t, exec.submitted, 1)
	assert.Equal(t, res.DatasetURI, exec.submitted[0].DatasetURI)
	assert.Equal(t, res.StorageLocation, exec.submitted[0].ResultDir)
	assert.Equal(t, []string{"revenue"}, exec.submitted[0].Params.KPI)
}

func TestSubmitWritesEDAReport(t *testing.T) {
	store := newFakeStore()
	exec := newFakeExecutor()
	svc, _ := newTestTrainingService(t, store, exec)
	ctx := context.Background()

	res, err := svc.Submit(ctx, validTrainingParams("submit-eda@test.dev", writeDataset(t)))
	require.NoError(t, err)

	report, err := store.DownloadText(ctx, res.StorageLocation+"/eda_report.html")
	require.NoError(t, err)
	assert.Contains(t, report, "<td>revenue</td>")
	assert.Contains(t, report, "<td>tv_spend</td>")
	assert.Contains(t, report, "3 rows, 5 columns")
}

func TestSubmitAssignsIncrementingVersions(t *testing.T) {
	store := newFakeStore()
	exec := newFakeExecutor()
	svc, _ := newTestTrainingService(t, store, exec)
	ctx := context.Background()
	email := "submit-versions@test.dev"

	res1, err := svc.Submit(ctx, validTrainingParams(email, writeDataset(t)))
	require.NoError(t, err)
	res2, err := svc.Submit(ctx, validTrainingParams(email, writeDataset(t)))
	require.NoError(t, err)

	assert.Equal(t, 1, res1.Version)
	assert.Equal(t, 2, res2.Version)
	assert.NotEqual(t, res1.JobID, res2.JobID)
}

func TestSubmitRejectsIncompleteParams(t *testing.T) {
	svc, _ := newTestTrainingService(t, newFakeStore(), newFakeExecutor())

	params := validTrainingParams("submit-invalid@test.dev", writeDataset(t))
	params.KPI = nil
	params.MediaSpend = nil

	_, err := svc.Submit(context.Background(), params)
	require.Error(t, err)

	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierr.CodeMissingParams, ae.Code)
	assert.Contains(t, ae.Error(), "kpi")
	assert.Contains(t, ae.Error(), "mediaSpend")
}

func TestSubmitRejectsUnreadableDataset(t *testing.T) {
	svc, _ := newTestTrainingService(t, newFakeStore(), newFakeExecutor())

	params := validTrainingParams("submit-nofile@test.dev", filepath.Join(t.TempDir(), "vanished.csv"))
	_, err := svc.Submit(context.Background(), params)
	require.Error(t, err)

	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierr.CodeIngestFailure, ae.Code)
}

func TestSubmitSurfacesExecutorFault(t *testing.T) {
	store := newFakeStore()
	exec := newFakeExecutor()
	exec.submitErr = assert.AnError
	svc, registry := newTestTrainingService(t, store, exec)
	email := "submit-upstream@test.dev"

	dataset := writeDataset(t)
	_, err := svc.Submit(context.Background(), validTrainingParams(email, dataset))
	require.Error(t, err)

	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierr.CodeUpstream, ae.Code)

	// Nothing was registered (not even the user row) and the staging copy
	// is kept for a retry.
	_, err = registry.FindProjectsForUser(context.Background(), email)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, statErr := os.Stat(dataset)
	assert.NoError(t, statErr)
}
