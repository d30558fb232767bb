//go:build database

package integration

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// exerciseHistory archives a project twice and walks every history subcommand.
func exerciseHistory(t *testing.T, backend, connStr string) {
	t.Helper()
	root := writeProject(t)
	env := []string{
		"DEVIAN_HISTORY_BACKEND=" + backend,
		"DEVIAN_HISTORY_DB_CONNECT=" + connStr,
		"DEVIAN_COLOR=no",
	}

	// Run devian-archive history migrate
	_, err := runCommand(t, root, env, "history", "migrate")
	require.NoError(t, err)

	// Run devian-archive history clear
	_, err = runCommand(t, root, env, "history", "clear")
	require.NoError(t, err)

	// Run devian-archive archive twice
	for range 2 {
		_, err = runCommand(t, root, env, "archive", "--output", t.TempDir())
		require.NoError(t, err)
	}

	// Run devian-archive history status
	output, err := runCommand(t, root, env, "history", "status")
	require.NoError(t, err)
	assert.Contains(t, output, "Total Runs: 2")

	// Run devian-archive history list
	output, err = runCommand(t, root, env, "history", "list", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, output, root)

	// Run devian-archive history export
	exportDir := filepath.Join(t.TempDir(), "export")
	_, err = runCommand(t, root, env, "history", "export", "--output-file", exportDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(exportDir, "runs.parquet"))
	assert.FileExists(t, filepath.Join(exportDir, "files.parquet"))
}

// TestHistoryWithSQLite tests the history commands with the embedded SQLite backend.
func TestHistoryWithSQLite(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	exerciseHistory(t, "sqlite", "")
}

// TestHistoryWithMySQL tests the history commands with a MySQL backend.
func TestHistoryWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "devian",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/devian?parseTime=true", host, port.Port())
	exerciseHistory(t, "mysql", connStr)
}

// TestHistoryWithPostgres tests the history commands with a PostgreSQL backend.
func TestHistoryWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	exerciseHistory(t, "postgresql", connStr)
}
