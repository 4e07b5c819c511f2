package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/travel_app/internal/models"
	"github.com/Skotchmaster/travel_app/pkg/db"
)

// NewDB opens a migrated sqlite database in a per-test temp dir.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "sqlite:" + filepath.Join(t.TempDir(), "travel.db")
	gdb, err := db.Open(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(models.All()...))

	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}
