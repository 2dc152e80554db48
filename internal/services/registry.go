package services

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	projectrepo "github.com/SamruddhiBrainlab/Insightsmix-project/internal/data/repos/project"
	userrepo "github.com/SamruddhiBrainlab/Insightsmix-project/internal/data/repos/user"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/logger"
)

// ProjectRegistry is the single source of truth for project identity and
// lifecycle status. It owns the canonical status field; the executor's
// ground truth only reaches it through the reconciler.
type ProjectRegistry interface {
	UpsertProject(ctx context.Context, ownerEmail, name string, version int, storageLocation, jobID string, params datatypes.JSON, status domain.ProjectStatus) (*domain.Project, error)
	FindProjectsForUser(ctx context.Context, ownerEmail string, statuses ...domain.ProjectStatus) ([]*domain.Project, error)
	FindProject(ctx context.Context, ownerEmail, jobID string) (*domain.Project, error)
	NextVersion(ctx context.Context, ownerEmail, name string) (int, error)
	ApplyStatus(ctx context.Context, jobID string, status domain.ProjectStatus) (bool, error)
}

type projectRegistry struct {
	db       *gorm.DB
	log      *logger.Logger
	users    userrepo.UserRepo
	projects projectrepo.ProjectRepo
}

func NewProjectRegistry(db *gorm.DB, baseLog *logger.Logger, users userrepo.UserRepo, projects projectrepo.ProjectRepo) ProjectRegistry {
	return &projectRegistry{
		db:       db,
		log:      baseLog.With("service", "ProjectRegistry"),
		users:    users,
		projects: projects,
	}
}

// UpsertProject finds-or-creates the owner and registers the project under
// its job id in one transaction. Retried registrations land on the same row.
func (s *projectRegistry) UpsertProject(ctx context.Context, ownerEmail, name string, version int, storageLocation, jobID string, params datatypes.JSON, status domain.ProjectStatus) (*domain.Project, error) {
	var out *domain.Project
	err := s.db.Transaction(func(tx *gorm.DB) error {
		owner, err := s.users.GetOrCreateByEmail(ctx, tx, ownerEmail)
		if err != nil {
			return err
		}
		p, err := s.projects.Upsert(ctx, tx, &domain.Project{
			JobID:           jobID,
			Name:            name,
			Version:         version,
			StorageLocation: storageLocation,
			UserID:          owner.ID,
			Status:          status,
			TrainingParams:  params,
		})
		if err != nil {
			return err
		}
		// Status moves through the monotonic guard only; the upsert leaves
		// an existing row's status untouched.
		if p.Status != status {
			if _, err := s.projects.UpdateStatusIfForward(ctx, tx, jobID, status); err != nil {
				return err
			}
			if p, err = s.projects.GetByJobID(ctx, tx, jobID); err != nil {
				return err
			}
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Project registered", "job_id", jobID, "name", name, "version", version, "owner_email", ownerEmail)
	return out, nil
}

func (s *projectRegistry) FindProjectsForUser(ctx context.Context, ownerEmail string, statuses ...domain.ProjectStatus) ([]*domain.Project, error) {
	owner, err := s.users.GetByEmail(ctx, nil, ownerEmail)
	if err != nil {
		return nil, err
	}
	return s.projects.ListByOwnerAndStatus(ctx, nil, owner.ID, statuses)
}

func (s *projectRegistry) FindProject(ctx context.Context, ownerEmail, jobID string) (*domain.Project, error) {
	owner, err := s.users.GetByEmail(ctx, nil, ownerEmail)
	if err != nil {
		return nil, err
	}
	return s.projects.GetByOwnerAndJobID(ctx, nil, owner.ID, jobID)
}

func (s *projectRegistry) NextVersion(ctx context.Context, ownerEmail, name string) (int, error) {
	owner, err := s.users.GetByEmail(ctx, nil, ownerEmail)
	if errors.Is(err, domain.ErrNotFound) {
		// First submission from this address; the user row appears later in
		// the registration transaction.
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return s.projects.NextVersion(ctx, nil, owner.ID, name)
}

func (s *projectRegistry) ApplyStatus(ctx context.Context, jobID string, status domain.ProjectStatus) (bool, error) {
	return s.projects.UpdateStatusIfForward(ctx, nil, jobID, status)
}
