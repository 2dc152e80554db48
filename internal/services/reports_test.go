package services

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/data/repos/testutil"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/apierr"
)

func TestGetReportServesExistingArtifact(t *testing.T) {
	registry, _ := newTestRegistry(t)
	store := newFakeStore()
	gen := &fakeGenerator{out: "should not be used"}
	resolver := NewReportResolver(testutil.Logger(t), registry, store, gen, nil, ResolverConfig{})
	ctx := context.Background()

	p := seedProject(t, registry, "report-plain@test.dev", "plain", "job-report-plain")
	store.objects[path.Join(p.StorageLocation, "model_fit.html")] = "<html>fit</html>"

	content, err := resolver.GetReport(ctx, "report-plain@test.dev", "job-report-plain", "model_fit.html")
	require.NoError(t, err)
	assert.Equal(t, "<html>fit</html>", content)
	assert.Zero(t, gen.callCount())
}

func TestGetReportOwnershipGate(t *testing.T) {
	registry, _ := newTestRegistry(t)
	store := newFakeStore()
	resolver := NewReportResolver(testutil.Logger(t), registry, store, &fakeGenerator{}, nil, ResolverConfig{})
	ctx := context.Background()

	p := seedProject(t, registry, "report-owner@test.dev", "owned", "job-report-owned")
	store.objects[path.Join(p.StorageLocation, "model_fit.html")] = "private"

	_, err := resolver.GetReport(ctx, "report-intruder@test.dev", "job-report-owned", "model_fit.html")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetReportDerivesMissingSummary(t *testing.T) {
	registry, _ := newTestRegistry(t)
	store := newFakeStore()
	gen := &fakeGenerator{out: "## Key takeaways\n- spend is flat"}
	resolver := NewReportResolver(testutil.Logger(t), registry, store, gen, nil, ResolverConfig{})
	ctx := context.Background()
	email := "report-derive@test.dev"

	p := seedProject(t, registry, email, "derive", "job-report-derive")
	store.objects[path.Join(p.StorageLocation, "model_summary.html")] = "<html>full model</html>"

	content, err := resolver.GetReport(ctx, email, "job-report-derive", "MMM_summary.md")
	require.NoError(t, err)
	assert.Equal(t, gen.out, content)
	assert.Equal(t, 1, gen.callCount())

	// The generated artifact is now persisted; a second call serves it
	// without touching the generator again.
	content, err = resolver.GetReport(ctx, email, "job-report-derive", "MMM_summary.md")
	require.NoError(t, err)
	assert.Equal(t, gen.out, content)
	assert.Equal(t, 1, gen.callCount())
}

func TestGetReportRejectsEmptyName(t *testing.T) {
	registry, _ := newTestRegistry(t)
	resolver := NewReportResolver(testutil.Logger(t), registry, newFakeStore(), &fakeGenerator{}, nil, ResolverConfig{})

	_, err := resolver.GetReport(context.Background(), "report-noname@test.dev", "job-report-noname", "  ")
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, apierr.CodeMissingParams, apiErr.Code)
}

func TestGetReportNonDerivableMissing(t *testing.T) {
	registry, _ := newTestRegistry(t)
	store := newFakeStore()
	gen := &fakeGenerator{out: "unused"}
	resolver := NewReportResolver(testutil.Logger(t), registry, store, gen, nil, ResolverConfig{})

	seedProject(t, registry, "report-missing@test.dev", "missing", "job-report-missing")

	_, err := resolver.GetReport(context.Background(), "report-missing@test.dev", "job-report-missing", "unheard_of.html")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, gen.callCount())
}

func TestGetReportDerivableWithoutPrecursor(t *testing.T) {
	registry, _ := newTestRegistry(t)
	store := newFakeStore()
	gen := &fakeGenerator{out: "unused"}
	resolver := NewReportResolver(testutil.Logger(t), registry, store, gen, nil, ResolverConfig{})

	seedProject(t, registry, "report-early@test.dev", "early", "job-report-early")

	// Training output has not landed yet, so there is nothing to summarize.
	_, err := resolver.GetReport(context.Background(), "report-early@test.dev", "job-report-early", "MSO_summary.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, gen.callCount())
}

func TestGetReportGeneratorFailure(t *testing.T) {
	registry, _ := newTestRegistry(t)
	store := newFakeStore()
	gen := &fakeGenerator{err: fmt.Errorf("model overloaded")}
	resolver := NewReportResolver(testutil.Logger(t), registry, store, gen, nil, ResolverConfig{})

	p := seedProject(t, registry, "report-genfail@test.dev", "genfail", "job-report-genfail")
	store.objects[path.Join(p.StorageLocation, "optimization_output.html")] = "<html>opt</html>"

	_, err := resolver.GetReport(context.Background(), "report-genfail@test.dev", "job-report-genfail", "MSO_summary.md")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, gen.callCount())
}

func TestGetReportSingleRefetch(t *testing.T) {
	registry, _ := newTestRegistry(t)
	store := newFakeStore()
	store.dropWrite = true
	gen := &fakeGenerator{out: "summary"}
	resolver := NewReportResolver(testutil.Logger(t), registry, store, gen, nil, ResolverConfig{})

	p := seedProject(t, registry, "report-refetch@test.dev", "refetch", "job-report-refetch")
	// Precursor must survive dropWrite, so plant it directly.
	store.objects[path.Join(p.StorageLocation, "model_summary.html")] = "<html>m</html>"

	// The upload is acknowledged but never materializes; the one re-fetch
	// misses and the call ends as NotFound instead of retrying.
	_, err := resolver.GetReport(context.Background(), "report-refetch@test.dev", "job-report-refetch", "MMM_summary.md")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, gen.callCount())
}

func TestGetReportCacheShortCircuits(t *testing.T) {
	registry, _ := newTestRegistry(t)
	store := newFakeStore()
	cache := newFakeCache()
	gen := &fakeGenerator{out: "unused"}
	resolver := NewReportResolver(testutil.Logger(t), registry, store, gen, cache, ResolverConfig{})
	ctx := context.Background()
	email := "report-cache@test.dev"

	p := seedProject(t, registry, email, "cached", "job-report-cache")
	key := path.Join(p.StorageLocation, "model_fit.html")
	store.objects[key] = "from store"

	content, err := resolver.GetReport(ctx, email, "job-report-cache", "model_fit.html")
	require.NoError(t, err)
	assert.Equal(t, "from store", content)

	// Subsequent reads come from the cache, even if the object vanishes.
	delete(store.objects, key)
	content, err = resolver.GetReport(ctx, email, "job-report-cache", "model_fit.html")
	require.NoError(t, err)
	assert.Equal(t, "from store", content)
}
