package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/clients/vertex"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/logger"
)

// StatusReconciler folds the executor's ground-truth job state into the
// registry. Reconciliation is pull-based and idempotent: the mapping is a
// total function of the current executor state, so repeated or concurrent
// polls converge on the same stored status.
type StatusReconciler interface {
	Reconcile(ctx context.Context, jobID string) (*domain.TrainingJobHandle, error)
	ReconcilePendingForUser(ctx context.Context, ownerEmail string) error
}

type statusReconciler struct {
	log      *logger.Logger
	registry ProjectRegistry
	executor vertex.TrainingExecutor
}

func NewStatusReconciler(baseLog *logger.Logger, registry ProjectRegistry, executor vertex.TrainingExecutor) StatusReconciler {
	return &statusReconciler{
		log:      baseLog.With("service", "StatusReconciler"),
		registry: registry,
		executor: executor,
	}
}

// statusForExecutorState is the one place executor vocabulary meets project
// vocabulary. In-flight states collapse to RUNNING; cancelled and expired
// jobs count as failed since no result will ever materialize. The false
// return means "leave the stored status alone".
func statusForExecutorState(state string) (domain.ProjectStatus, bool) {
	switch state {
	case "JOB_STATE_QUEUED", "JOB_STATE_PENDING", "JOB_STATE_RUNNING",
		"JOB_STATE_CANCELLING", "JOB_STATE_PAUSED", "JOB_STATE_UPDATING":
		return domain.StatusRunning, true
	case "JOB_STATE_SUCCEEDED":
		return domain.StatusSuccess, true
	case "JOB_STATE_FAILED", "JOB_STATE_EXPIRED", "JOB_STATE_CANCELLED":
		return domain.StatusFailed, true
	default:
		return "", false
	}
}

// Reconcile returns the raw executor metadata even when the registry write
// fails; status delivery to the caller is never blocked by a persistence
// fault. An executor-side unknown job id is the only hard failure.
func (s *statusReconciler) Reconcile(ctx context.Context, jobID string) (*domain.TrainingJobHandle, error) {
	handle, err := s.executor.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query executor for job %s: %w", jobID, err)
	}

	mapped, ok := statusForExecutorState(handle.State)
	if !ok {
		s.log.Warn("Unrecognized executor state, leaving project status untouched",
			"job_id", jobID, "state", handle.State, "error", domain.ErrStateInconsistency)
		return handle, nil
	}

	moved, err := s.registry.ApplyStatus(ctx, jobID, mapped)
	if err != nil {
		// Persistence faults are swallowed here: the caller still gets the
		// freshest executor state, and the next poll retries the write.
		s.log.Error("Failed to persist reconciled status", "job_id", jobID, "status", mapped, "error", err)
		return handle, nil
	}
	if moved {
		s.log.Info("Project status reconciled", "job_id", jobID, "status", mapped, "state", handle.State)
	}
	return handle, nil
}

// reconcileSweepConcurrency caps the number of in-flight executor polls per
// listing sweep.
const reconcileSweepConcurrency = 4

// ReconcilePendingForUser refreshes every non-terminal project for a user.
// Reconciliations are independent and order-free, so they run as a bounded
// parallel sweep; one failing poll does not block the rest.
func (s *statusReconciler) ReconcilePendingForUser(ctx context.Context, ownerEmail string) error {
	open, err := s.registry.FindProjectsForUser(ctx, ownerEmail, domain.StatusPending, domain.StatusRunning)
	if err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(reconcileSweepConcurrency)
	for _, p := range open {
		jobID := p.JobID
		g.Go(func() error {
			if _, err := s.Reconcile(ctx, jobID); err != nil {
				s.log.Warn("Skipping failed reconciliation during listing", "job_id", jobID, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}
