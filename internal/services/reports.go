package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/clients/gcp"
	rediscache "github.com/SamruddhiBrainlab/Insightsmix-project/internal/clients/redis"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/clients/vertex"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/apierr"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/logger"
)

// derivableReports maps a generatable summary name to the precursor
// artifact the generator consumes. Anything not listed here is served
// strictly by presence.
var derivableReports = map[string]string{
	"MMM_summary.md": "model_summary.html",
	"MSO_summary.md": "optimization_output.html",
}

// ResolverConfig bounds the lazy-generation path. SettleWait is how long to
// wait between writing a generated report and the single re-fetch; with a
// synchronous generator it can stay zero.
type ResolverConfig struct {
	SettleWait time.Duration
}

// ReportResolver serves named report artifacts for a project, generating
// derivable summaries on demand. At most one generation attempt and one
// re-fetch happen per call.
type ReportResolver interface {
	GetReport(ctx context.Context, ownerEmail, jobID, reportName string) (string, error)
}

type reportResolver struct {
	log       *logger.Logger
	registry  ProjectRegistry
	store     gcp.ArtifactStore
	generator vertex.DocumentGenerator
	cache     rediscache.ReportCache
	cfg       ResolverConfig
}

// NewReportResolver accepts a nil cache; caching is an optimization, not a
// dependency.
func NewReportResolver(baseLog *logger.Logger, registry ProjectRegistry, store gcp.ArtifactStore, generator vertex.DocumentGenerator, cache rediscache.ReportCache, cfg ResolverConfig) ReportResolver {
	return &reportResolver{
		log:       baseLog.With("service", "ReportResolver"),
		registry:  registry,
		store:     store,
		generator: generator,
		cache:     cache,
		cfg:       cfg,
	}
}

func (s *reportResolver) GetReport(ctx context.Context, ownerEmail, jobID, reportName string) (string, error) {
	if strings.TrimSpace(reportName) == "" {
		return "", apierr.New(http.StatusBadRequest, apierr.CodeMissingParams,
			fmt.Errorf("missing report name"))
	}

	// Ownership gate: the project must resolve for this owner before any
	// artifact content is touched.
	p, err := s.registry.FindProject(ctx, ownerEmail, jobID)
	if err != nil {
		return "", err
	}
	key := path.Join(p.StorageLocation, reportName)

	if s.cache != nil {
		if content, ok := s.cache.Get(ctx, key); ok {
			return content, nil
		}
	}

	content, err := s.store.DownloadText(ctx, key)
	if err == nil {
		s.cacheSet(ctx, key, content)
		return content, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return "", err
	}

	precursorName, derivable := derivableReports[reportName]
	if !derivable {
		return "", domain.ErrNotFound
	}

	precursorKey := path.Join(p.StorageLocation, precursorName)
	present, err := s.store.Exists(ctx, precursorKey)
	if err != nil {
		return "", err
	}
	if !present {
		// Nothing to derive from yet (training output not materialized).
		return "", domain.ErrNotFound
	}
	precursor, err := s.store.DownloadText(ctx, precursorKey)
	if err != nil {
		return "", err
	}

	s.log.Info("Generating derived report", "job_id", jobID, "report", reportName, "precursor", precursorName)
	summary, err := s.generator.Summarize(ctx, "text/html", []byte(precursor))
	if err != nil {
		return "", fmt.Errorf("generate %s: %w", reportName, err)
	}
	if err := s.store.Upload(ctx, key, strings.NewReader(summary), "text/markdown"); err != nil {
		return "", fmt.Errorf("persist generated %s: %w", reportName, err)
	}

	if s.cfg.SettleWait > 0 {
		select {
		case <-time.After(s.cfg.SettleWait):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	// Exactly one re-fetch; a second miss is a plain NotFound, never a loop.
	content, err = s.store.DownloadText(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	s.cacheSet(ctx, key, content)
	return content, nil
}

func (s *reportResolver) cacheSet(ctx context.Context, key, content string) {
	if s.cache != nil {
		s.cache.Set(ctx, key, content)
	}
}
