package postgresql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHelper ties a TestContainer to the lifetime of a test.
type TestHelper struct {
	Container *TestContainer
	T         *testing.T
}

// NewTestHelper creates a new test helper with default configuration.
func NewTestHelper(t *testing.T) *TestHelper {
	return NewTestHelperWithConfig(t, nil)
}

// NewTestHelperWithConfig creates a new test helper with custom configuration.
// It is skipped in -short mode.
func NewTestHelperWithConfig(t *testing.T, config *TestContainerConfig) *TestHelper {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	container, err := NewTestContainer(context.Background(), config)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := container.Close(); err != nil {
			t.Logf("Failed to close test container: %v", err)
		}
	})

	return &TestHelper{
		Container: container,
		T:         t,
	}
}

// CleanupTables truncates all tables between tests.
func (h *TestHelper) CleanupTables() {
	require.NoError(h.T, h.Container.TruncateAllTables())
}

// ExecuteSQL executes SQL and fails the test on error.
func (h *TestHelper) ExecuteSQL(sql string, args ...any) {
	require.NoError(h.T, h.Container.ExecuteSQL(sql, args...))
}

// GetClient returns the PostgreSQL client.
func (h *TestHelper) GetClient() PostgreSQLClient {
	return h.Container.Client
}

// GetConnectionString returns the connection string.
func (h *TestHelper) GetConnectionString() string {
	return h.Container.GetConnectionString()
}

// GetConnectionString returns the connection string for the test database.
func (tc *TestContainer) GetConnectionString() string {
	return tc.ConnStr
}
