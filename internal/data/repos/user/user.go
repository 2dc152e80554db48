package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/logger"
)

type UserRepo interface {
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error)
	GetOrCreateByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var u domain.User
	err := transaction.WithContext(ctx).
		Where("email = ?", normalizeEmail(email)).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetOrCreateByEmail implements the lazy user lifecycle: the first
// submission from an address creates the row. The unique index on email
// makes concurrent first submissions converge on a single row.
func (r *userRepo) GetOrCreateByEmail(ctx context.Context, tx *gorm.DB, email string) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:        uuid.New(),
		Email:     normalizeEmail(email),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoNothing: true,
		}).
		Create(&u).Error; err != nil {
		return nil, err
	}

	// On conflict the insert is a no-op and u still carries the fresh UUID;
	// read back whichever row actually holds the email.
	return r.GetByEmail(ctx, transaction, u.Email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
