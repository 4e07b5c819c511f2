package migrations

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUpDown(t *testing.T) {
	dsn := os.Getenv("TRAVEL_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TRAVEL_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	m, err := Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.Up(ctx))
	v, err := m.Version(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, v)

	require.NoError(t, m.Up(ctx))

	require.NoError(t, m.Down(ctx))
	v, err = m.Version(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, v)
}
