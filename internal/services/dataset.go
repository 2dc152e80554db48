package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/clients/gcp"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/envutil"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/logger"
)

const previewRowLimit = 5

// DatasetService is the thin ingestion edge: it stages uploaded files
// locally until submission, parses CSV for previews, and reads persisted
// dataset headers back out of the artifact store.
type DatasetService interface {
	StoreUpload(filename string, data io.Reader) (string, error)
	Preview(localPath string) (*DatasetPreview, error)
	InputColumns(ctx context.Context, ownerEmail, jobID string) ([]string, error)
	Discard(localPath string)
}

// DatasetPreview is what the client sees right after upload: the header and
// the first few records.
type DatasetPreview struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

type datasetService struct {
	log       *logger.Logger
	registry  ProjectRegistry
	store     gcp.ArtifactStore
	uploadDir string
}

func NewDatasetService(baseLog *logger.Logger, registry ProjectRegistry, store gcp.ArtifactStore) DatasetService {
	return &datasetService{
		log:       baseLog.With("service", "DatasetService"),
		registry:  registry,
		store:     store,
		uploadDir: envutil.Get("UPLOAD_DIR", "uploaded_files"),
	}
}

// StoreUpload stages an uploaded dataset on local disk. Only CSV is
// accepted; the stored name carries a timestamp so repeated uploads of the
// same file never collide.
func (s *datasetService) StoreUpload(filename string, data io.Reader) (string, error) {
	base := filepath.Base(strings.TrimSpace(filename))
	if base == "" || base == "." {
		return "", fmt.Errorf("missing filename")
	}
	if !strings.EqualFold(filepath.Ext(base), ".csv") {
		return "", fmt.Errorf("file type not allowed: %s", filepath.Ext(base))
	}

	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stored := fmt.Sprintf("%s-%s.csv", stem, time.Now().UTC().Format("20060102-150405"))
	dest := filepath.Join(s.uploadDir, stored)

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, data); err != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("write upload file: %w", err)
	}

	s.log.Info("Dataset staged", "path", dest)
	return dest, nil
}

func (s *datasetService) Preview(localPath string) (*DatasetPreview, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return parseCSVPreview(f)
}

// InputColumns reads the persisted dataset header for a project. Column 0
// is the conventional row index and is excluded.
func (s *datasetService) InputColumns(ctx context.Context, ownerEmail, jobID string) ([]string, error) {
	p, err := s.registry.FindProject(ctx, ownerEmail, jobID)
	if err != nil {
		return nil, err
	}

	keys, err := s.store.ListKeys(ctx, p.StorageLocation+"/")
	if err != nil {
		return nil, err
	}
	var datasetKey string
	for _, k := range keys {
		if strings.HasSuffix(strings.ToLower(k), ".csv") {
			datasetKey = k
			break
		}
	}
	if datasetKey == "" {
		return nil, domain.ErrNotFound
	}

	content, err := s.store.DownloadText(ctx, datasetKey)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(strings.NewReader(content))
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	if len(header) <= 1 {
		return []string{}, nil
	}
	cols := make([]string, 0, len(header)-1)
	for _, c := range header[1:] {
		cols = append(cols, strings.TrimSpace(c))
	}
	return cols, nil
}

func (s *datasetService) Discard(localPath string) {
	if localPath == "" {
		return
	}
	if err := os.Remove(localPath); err != nil && !os.IsNotExist(err) {
		s.log.Warn("Failed to remove staged dataset", "path", localPath, "error", err)
	}
}

func parseCSVPreview(r io.Reader) (*DatasetPreview, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := []map[string]string{}
	for len(rows) < previewRowLimit {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}

	return &DatasetPreview{Columns: header, Rows: rows}, nil
}
