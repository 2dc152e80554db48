package services

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/clients/vertex"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
)

type fakeExecutor struct {
	mu        sync.Mutex
	jobs      map[string]*domain.TrainingJobHandle
	submitErr error
	nextJobID string
	submitted []vertex.SubmitSpec
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{jobs: map[string]*domain.TrainingJobHandle{}}
}

func (f *fakeExecutor) Submit(_ context.Context, spec vertex.SubmitSpec) (*domain.TrainingJobHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	f.submitted = append(f.submitted, spec)
	id := f.nextJobID
	if id == "" {
		id = fmt.Sprintf("job-%d", len(f.submitted))
	}
	h := &domain.TrainingJobHandle{JobID: id, DisplayName: spec.DisplayName, State: "JOB_STATE_QUEUED"}
	f.jobs[id] = h
	return h, nil
}

func (f *fakeExecutor) GetJob(_ context.Context, jobID string) (*domain.TrainingJobHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	h, ok := f.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return h, nil
}

func (f *fakeExecutor) setState(jobID, state string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if h, ok := f.jobs[jobID]; ok {
		h.State = state
	} else {
		f.jobs[jobID] = &domain.TrainingJobHandle{JobID: jobID, State: state}
	}
}

type fakeStore struct {
	mu        sync.Mutex
	objects   map[string]string
	bucket    string
	dropWrite bool
	uploads   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}, bucket: "test-bucket"}
}

func (f *fakeStore) Upload(_ context.Context, key string, data io.Reader, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sb strings.Builder
	if _, err := io.Copy(&sb, data); err != nil {
		return err
	}
	f.uploads = append(f.uploads, key)
	if !f.dropWrite {
		f.objects[key] = sb.String()
	}
	return nil
}

func (f *fakeStore) DownloadText(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	content, ok := f.objects[key]
	if !ok {
		return "", domain.ErrNotFound
	}
	return content, nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStore) ListKeys(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []string{}
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeStore) URI(key string) string { return "gs://" + f.bucket + "/" + key }

func (f *fakeStore) Bucket() string { return f.bucket }

type fakeGenerator struct {
	mu    sync.Mutex
	calls int
	out   string
	err   error
}

func (f *fakeGenerator) Summarize(_ context.Context, _ string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newFakeCache() *fakeCache { return &fakeCache{entries: map[string]string{}} }

func (f *fakeCache) Get(_ context.Context, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.entries[key]
	return v, ok
}

func (f *fakeCache) Set(_ context.Context, key, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = content
}

func (f *fakeCache) Close() error { return nil }

// brokenRegistry wraps a real registry but fails every status write, for
// exercising the swallowed-persistence-fault path.
type brokenRegistry struct {
	ProjectRegistry
}

func (b *brokenRegistry) ApplyStatus(context.Context, string, domain.ProjectStatus) (bool, error) {
	return false, fmt.Errorf("registry write unavailable")
}
