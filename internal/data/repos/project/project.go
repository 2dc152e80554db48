package project

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/logger"
)

type ProjectRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, p *domain.Project) (*domain.Project, error)
	GetByJobID(ctx context.Context, tx *gorm.DB, jobID string) (*domain.Project, error)
	GetByOwnerAndJobID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, jobID string) (*domain.Project, error)
	ListByOwnerAndStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID, statuses []domain.ProjectStatus) ([]*domain.Project, error)
	UpdateStatusIfForward(ctx context.Context, tx *gorm.DB, jobID string, next domain.ProjectStatus) (bool, error)
	NextVersion(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string) (int, error)
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{db: db, log: baseLog.With("repo", "ProjectRepo")}
}

// Upsert registers a project keyed by its executor job id. Re-running the
// same registration updates the mutable fields in place instead of creating
// a second row; the job_id primary key is the concurrency backstop. Status
// is intentionally excluded from the conflict assignments; it only ever
// moves through UpdateStatusIfForward, so a retried registration can never
// drag a reconciled project back to PENDING.
func (r *projectRepo) Upsert(ctx context.Context, tx *gorm.DB, p *domain.Project) (*domain.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "job_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"name":             p.Name,
				"version":          p.Version,
				"storage_location": p.StorageLocation,
				"training_params":  p.TrainingParams,
				"updated_at":       now,
			}),
		}).
		Create(p).Error; err != nil {
		return nil, err
	}

	return r.GetByJobID(ctx, transaction, p.JobID)
}

func (r *projectRepo) GetByJobID(ctx context.Context, tx *gorm.DB, jobID string) (*domain.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var p domain.Project
	err := transaction.WithContext(ctx).
		Where("job_id = ?", jobID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) GetByOwnerAndJobID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, jobID string) (*domain.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var p domain.Project
	err := transaction.WithContext(ctx).
		Where("job_id = ? AND user_id = ?", jobID, userID).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByOwnerAndStatus returns newest-first for deterministic client display.
func (r *projectRepo) ListByOwnerAndStatus(ctx context.Context, tx *gorm.DB, userID uuid.UUID, statuses []domain.ProjectStatus) ([]*domain.Project, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var out []*domain.Project
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStatusIfForward applies a status transition only in the legal
// direction. The WHERE clause names the exact predecessor set, so two
// concurrent reconciliations converge without ever regressing a terminal
// status; the false return covers both "already there" and "would move
// backward".
func (r *projectRepo) UpdateStatusIfForward(ctx context.Context, tx *gorm.DB, jobID string, next domain.ProjectStatus) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if !next.Valid() {
		return false, domain.ErrStateInconsistency
	}

	var predecessors []domain.ProjectStatus
	switch next {
	case domain.StatusRunning:
		predecessors = []domain.ProjectStatus{domain.StatusPending}
	case domain.StatusSuccess, domain.StatusFailed:
		predecessors = []domain.ProjectStatus{domain.StatusPending, domain.StatusRunning}
	default:
		// PENDING is the creation state; nothing transitions into it.
		return false, nil
	}

	res := transaction.WithContext(ctx).
		Model(&domain.Project{}).
		Where("job_id = ? AND status IN ?", jobID, predecessors).
		Updates(map[string]interface{}{
			"status":     next,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// NextVersion resolves the explicit version counter for a resubmitted
// project name: one past the highest existing version for this owner+name,
// starting at 1.
func (r *projectRepo) NextVersion(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var current int64
	err := transaction.WithContext(ctx).
		Model(&domain.Project{}).
		Select("COALESCE(MAX(version), 0)").
		Where("user_id = ? AND name = ?", userID, name).
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return int(current) + 1, nil
}
