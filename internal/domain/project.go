package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ProjectStatus string

const (
	StatusPending ProjectStatus = "PENDING"
	StatusRunning ProjectStatus = "RUNNING"
	StatusSuccess ProjectStatus = "SUCCESS"
	StatusFailed  ProjectStatus = "FAILED"
)

// Rank orders statuses along the only legal direction of travel:
// PENDING < RUNNING < {SUCCESS, FAILED}. The two terminal states share a
// rank; neither can replace the other.
func (s ProjectStatus) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusRunning:
		return 1
	case StatusSuccess, StatusFailed:
		return 2
	default:
		return -1
	}
}

func (s ProjectStatus) Valid() bool { return s.Rank() >= 0 }

func (s ProjectStatus) Terminal() bool { return s.Rank() == 2 }

// Project wraps one submitted dataset, one remote training job and its
// resulting artifacts. The executor-assigned job id doubles as the primary
// key; a row exists only once the executor has accepted the submission.
type Project struct {
	JobID           string         `gorm:"column:job_id;primaryKey" json:"job_id"`
	Name            string         `gorm:"column:name;not null;index:idx_projects_owner_name,priority:2" json:"name"`
	Version         int            `gorm:"column:version;not null;default:1" json:"version"`
	StorageLocation string         `gorm:"column:storage_location;not null" json:"storage_location"`
	UserID          uuid.UUID      `gorm:"type:uuid;column:user_id;not null;index:idx_projects_owner_name,priority:1" json:"user_id"`
	Status          ProjectStatus  `gorm:"column:status;not null" json:"status"`
	TrainingParams  datatypes.JSON `gorm:"column:training_params;type:jsonb" json:"training_params,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
