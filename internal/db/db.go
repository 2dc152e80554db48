package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/domain"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/envutil"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/platform/logger"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewService opens the registry database. Production runs against Postgres;
// local development falls back to an on-disk sqlite file when DB_DRIVER says
// so, matching how the service is deployed against managed SQL in the cloud
// and a local file everywhere else.
func NewService(log *logger.Logger) (*Service, error) {
	serviceLog := log.With("service", "DBService")

	driver := envutil.Get("DB_DRIVER", "postgres")

	var (
		gdb *gorm.DB
		err error
	)
	switch driver {
	case "sqlite":
		path := envutil.Get("SQLITE_PATH", "insightsmix.db")
		serviceLog.Info("Opening sqlite database", "path", path)
		gdb, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	default:
		host := envutil.Get("POSTGRES_HOST", "localhost")
		port := envutil.Get("POSTGRES_PORT", "5432")
		user := envutil.Get("POSTGRES_USER", "postgres")
		password := envutil.Get("POSTGRES_PASSWORD", "")
		name := envutil.Get("POSTGRES_NAME", "insightsmix")
		sslmode := envutil.Get("POSTGRES_SSLMODE", "disable")

		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)
		serviceLog.Info("Connecting to Postgres", "host", host, "db", name)
		gdb, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
		})
	}
	if err != nil {
		serviceLog.Error("Failed to open database", "driver", driver, "error", err)
		return nil, fmt.Errorf("open database (%s): %w", driver, err)
	}

	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating registry tables...")
	if err := s.db.AutoMigrate(
		&domain.User{},
		&domain.Project{},
	); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	return nil
}

func (s *Service) DB() *gorm.DB {
	return s.db
}
