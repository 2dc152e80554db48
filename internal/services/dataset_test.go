package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/data/repos/testutil"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
)

const sampleCSV = "id,week,geo,revenue,tv_spend\n" +
	"0,2024-01-01,US,100.5,20\n" +
	"1,2024-01-08,US,98.2,18\n" +
	"2,2024-01-15,US,103.9,25\n"

func newTestDatasetService(t *testing.T, store *fakeStore) (DatasetService, ProjectRegistry) {
	t.Helper()
	t.Setenv("UPLOAD_DIR", t.TempDir())
	registry, _ := newTestRegistry(t)
	return NewDatasetService(testutil.Logger(t), registry, store), registry
}

func TestStoreUploadAcceptsOnlyCSV(t *testing.T) {
	svc, _ := newTestDatasetService(t, newFakeStore())

	path, err := svc.StoreUpload("sales.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(path) })

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(data))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "sales-"))

	_, err = svc.StoreUpload("sales.xlsx", strings.NewReader("junk"))
	assert.Error(t, err)

	_, err = svc.StoreUpload("", strings.NewReader("junk"))
	assert.Error(t, err)
}

func TestStoreUploadStripsDirectoryComponents(t *testing.T) {
	svc, _ := newTestDatasetService(t, newFakeStore())

	path, err := svc.StoreUpload("../../etc/sneaky.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(path) })
	assert.True(t, strings.HasPrefix(filepath.Base(path), "sneaky-"))
	assert.NotContains(t, path, "..")
}

func TestPreviewLimitsRows(t *testing.T) {
	svc, _ := newTestDatasetService(t, newFakeStore())

	var b strings.Builder
	b.WriteString("id,kpi\n")
	for i := 0; i < 20; i++ {
		b.WriteString("0,1\n")
	}
	path, err := svc.StoreUpload("long.csv", strings.NewReader(b.String()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.Remove(path) })

	preview, err := svc.Preview(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "kpi"}, preview.Columns)
	assert.Len(t, preview.Rows, previewRowLimit)
	assert.Equal(t, "1", preview.Rows[0]["kpi"])
}

func TestInputColumnsDropsIndexColumn(t *testing.T) {
	store := newFakeStore()
	svc, registry := newTestDatasetService(t, store)
	ctx := context.Background()
	email := "dataset-cols@test.dev"

	p := seedProject(t, registry, email, "cols", "job-dataset-cols")
	store.objects[p.StorageLocation+"/sales.csv"] = sampleCSV
	store.objects[p.StorageLocation+"/model_summary.html"] = "<html></html>"

	cols, err := svc.InputColumns(ctx, email, "job-dataset-cols")
	require.NoError(t, err)
	assert.Equal(t, []string{"week", "geo", "revenue", "tv_spend"}, cols)
}

func TestInputColumnsWithoutDataset(t *testing.T) {
	store := newFakeStore()
	svc, registry := newTestDatasetService(t, store)

	p := seedProject(t, registry, "dataset-empty@test.dev", "empty", "job-dataset-empty")
	store.objects[p.StorageLocation+"/model_summary.html"] = "<html></html>"

	_, err := svc.InputColumns(context.Background(), "dataset-empty@test.dev", "job-dataset-empty")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInputColumnsUnknownProject(t *testing.T) {
	svc, _ := newTestDatasetService(t, newFakeStore())

	_, err := svc.InputColumns(context.Background(), "dataset-none@test.dev", "job-never-registered")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDiscardTolerantOfMissingFile(t *testing.T) {
	svc, _ := newTestDatasetService(t, newFakeStore())

	svc.Discard("")
	svc.Discard(filepath.Join(t.TempDir(), "never-created.csv"))
}
