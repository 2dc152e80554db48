package services

import (
	"testing"

	"gorm.io/gorm"

	projectrepo "github.com/SamruddhiBrainlab/Insightsmix-project/internal/data/repos/project"
	"github.com/SamruddhiBrainlab/Insightsmix-project/internal/data/repos/testutil"
	userrepo "github.com/SamruddhiBrainlab/Insightsmix-project/internal/data/repos/user"
)

func newTestRegistry(t *testing.T) (ProjectRegistry, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return NewProjectRegistry(db, log, userrepo.NewUserRepo(db, log), projectrepo.NewProjectRepo(db, log)), db
}
