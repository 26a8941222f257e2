//go:build integration

package migration

import (
	"context"
	"testing"

	"github.com/muhammadchandra19/exchange/pkg/logger"
	"github.com/muhammadchandra19/exchange/pkg/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableExists(t *testing.T, client postgresql.PostgreSQLClient, name string) bool {
	t.Helper()
	var exists bool
	err := client.QueryRow(context.Background(),
		"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)", name).Scan(&exists)
	require.NoError(t, err)
	return exists
}

func TestRunner_UpAndDown(t *testing.T) {
	helper := postgresql.NewTestHelper(t)
	client := helper.GetClient()
	ctx := context.Background()

	runner := NewRunner(client, logger.NewNop(), Config{Dir: "../../services/market-feed/migrations"})
	require.NoError(t, runner.EnsureTable(ctx))
	// idempotent
	require.NoError(t, runner.EnsureTable(ctx))

	migrations, err := Load("../../services/market-feed/migrations")
	require.NoError(t, err)

	n, err := runner.Up(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, tableExists(t, client, "coins"))
	assert.False(t, tableExists(t, client, "markets"))

	n, err = runner.Up(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, len(migrations)-1, n)
	assert.True(t, tableExists(t, client, "markets"))

	applied, err := runner.Applied(ctx)
	require.NoError(t, err)
	assert.Len(t, applied, len(migrations))

	n, err = runner.Up(ctx, 0)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = runner.Down(ctx, len(migrations))
	require.NoError(t, err)
	assert.Equal(t, len(migrations), n)
	assert.False(t, tableExists(t, client, "coins"))

	applied, err = runner.Applied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}
