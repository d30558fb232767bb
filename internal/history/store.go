package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// Table names for run history.
const (
	runsTable  = "devian_archive_runs"
	filesTable = "devian_archived_files"
)

// sqliteTimeFormat keeps SQLite text timestamps fixed-width so they sort lexically.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryStoreImpl implements the HistoryStore interface.
type HistoryStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.HistoryStore = &HistoryStoreImpl{} // Compile-time check

// NewHistoryStore creates a new HistoryStore with the specified backend.
func NewHistoryStore(backend schema.DatabaseBackend, connStr string) (contract.HistoryStore, error) {
	if backend == schema.NoneBackend || backend == "" {
		// Return a no-op store for disabled tracking
		return &HistoryStoreImpl{backend: schema.NoneBackend}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	if err := createHistoryTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history tables: %w", err)
	}

	return &HistoryStoreImpl{db: db, backend: backend}, nil
}

// openDB opens a connection pool for the backend without verifying it.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetHistoryDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		dsn, err := mysqlDSN(connStr)
		if err != nil {
			return nil, err
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported history backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// mysqlDSN forces parseTime so DATETIME columns scan into time.Time.
func mysqlDSN(connStr string) (string, error) {
	cfg, err := mysql.ParseDSN(connStr)
	if err != nil {
		return "", fmt.Errorf("invalid MySQL connection string: %w", err)
	}
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

// quoteTableName quotes a fixed table name for the backend's dialect.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return "`" + name + "`"
	default:
		return `"` + name + `"`
	}
}

// placeholders returns n positional parameters for the backend.
func placeholders(backend schema.DatabaseBackend, n int) []string {
	out := make([]string, n)
	for i := range out {
		if backend == schema.PostgreSQLBackend {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

// createHistoryTables creates the history tables.
func createHistoryTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{runsTable, getCreateRunsQuery(backend)},
		{filesTable, getCreateFilesQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateRunsQuery returns the CREATE TABLE query for devian_archive_runs.
func getCreateRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(runsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) PRIMARY KEY,
				root_path VARCHAR(1024) NOT NULL,
				archive_path VARCHAR(1024),
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				file_count INT NOT NULL DEFAULT 0,
				size_bytes BIGINT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				root_path TEXT NOT NULL,
				archive_path TEXT,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				file_count INT NOT NULL DEFAULT 0,
				size_bytes BIGINT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT PRIMARY KEY,
				root_path TEXT NOT NULL,
				archive_path TEXT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				file_count INTEGER NOT NULL DEFAULT 0,
				size_bytes INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateFilesQuery returns the CREATE TABLE query for devian_archived_files.
func getCreateFilesQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(filesTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id VARCHAR(36) NOT NULL,
				rel_path VARCHAR(768) NOT NULL,
				size_bytes BIGINT NOT NULL,
				mod_time DATETIME(6) NOT NULL,
				PRIMARY KEY (run_id, rel_path)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				rel_path TEXT NOT NULL,
				size_bytes BIGINT NOT NULL,
				mod_time TIMESTAMPTZ NOT NULL,
				PRIMARY KEY (run_id, rel_path)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id TEXT NOT NULL,
				rel_path TEXT NOT NULL,
				size_bytes INTEGER NOT NULL,
				mod_time TEXT NOT NULL,
				PRIMARY KEY (run_id, rel_path)
			);
		`, quotedTableName)
	}
}

// disabled reports whether the store is a no-op.
func (hs *HistoryStoreImpl) disabled() bool {
	return hs.backend == schema.NoneBackend || hs.db == nil
}

// BeginRun records the start of an archive run.
func (hs *HistoryStoreImpl) BeginRun(runID string, root string, startTime time.Time, configParams map[string]any) error {
	if hs.disabled() {
		return nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return fmt.Errorf("failed to marshal config params: %w", err)
	}

	p := placeholders(hs.backend, 4)
	query := fmt.Sprintf(`INSERT INTO %s (run_id, root_path, start_time, config_params) VALUES (%s, %s, %s, %s)`,
		quoteTableName(runsTable, hs.backend), p[0], p[1], p[2], p[3])
	if _, err := hs.db.Exec(query, runID, root, formatTime(startTime, hs.backend), string(configJSON)); err != nil {
		return fmt.Errorf("failed to insert archive run: %w", err)
	}
	return nil
}

// EndRun updates the run with completion data.
func (hs *HistoryStoreImpl) EndRun(runID string, endTime time.Time, archivePath string, fileCount int, sizeBytes int64) error {
	if hs.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(runsTable, hs.backend)
	p := placeholders(hs.backend, 1)
	row := hs.db.QueryRow(fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quotedTableName, p[0]), runID)
	startTime, err := scanTime(row, hs.backend)
	if err != nil {
		return fmt.Errorf("failed to get start_time for run %s: %w", runID, err)
	}

	durationMs := endTime.Sub(startTime).Milliseconds()

	p = placeholders(hs.backend, 6)
	query := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, archive_path = %s, file_count = %s, size_bytes = %s WHERE run_id = %s`,
		quotedTableName, p[0], p[1], p[2], p[3], p[4], p[5])
	if _, err := hs.db.Exec(query, formatTime(endTime, hs.backend), durationMs, archivePath, fileCount, sizeBytes, runID); err != nil {
		return fmt.Errorf("failed to update archive run: %w", err)
	}
	return nil
}

// RecordFiles stores the files that went into the run's archive in one transaction.
func (hs *HistoryStoreImpl) RecordFiles(runID string, files []schema.FileRecord) error {
	if hs.disabled() || len(files) == 0 {
		return nil
	}

	tx, err := hs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p := placeholders(hs.backend, 4)
	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %s (run_id, rel_path, size_bytes, mod_time) VALUES (%s, %s, %s, %s)`,
		quoteTableName(filesTable, hs.backend), p[0], p[1], p[2], p[3]))
	if err != nil {
		return fmt.Errorf("failed to prepare file insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, f := range files {
		if _, err := stmt.Exec(runID, f.RelPath, f.Size, formatTime(f.ModTime, hs.backend)); err != nil {
			return fmt.Errorf("failed to insert file %s: %w", f.RelPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit file records: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (hs *HistoryStoreImpl) Close() error {
	if hs.db != nil {
		return hs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the history store.
func (hs *HistoryStoreImpl) GetStatus() (schema.HistoryStatus, error) {
	status := schema.HistoryStatus{
		Backend:    string(hs.backend),
		Connected:  hs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if hs.disabled() {
		return status, nil
	}

	quotedRuns := quoteTableName(runsTable, hs.backend)

	row := hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedRuns))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		row = hs.db.QueryRow(fmt.Sprintf("SELECT run_id FROM %s ORDER BY start_time DESC LIMIT 1", quotedRuns))
		if err := row.Scan(&status.LastRunID); err != nil {
			return status, fmt.Errorf("failed to get last run id: %w", err)
		}

		row = hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time DESC LIMIT 1", quotedRuns))
		lastRunTime, err := scanTime(row, hs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		status.LastRunTime = lastRunTime

		row = hs.db.QueryRow(fmt.Sprintf("SELECT start_time FROM %s ORDER BY start_time ASC LIMIT 1", quotedRuns))
		oldestRunTime, err := scanTime(row, hs.backend)
		if err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldestRunTime

		row = hs.db.QueryRow(fmt.Sprintf("SELECT COALESCE(SUM(file_count), 0), COALESCE(SUM(size_bytes), 0) FROM %s", quotedRuns))
		if err := row.Scan(&status.TotalFiles, &status.TotalBytes); err != nil {
			return status, fmt.Errorf("failed to get archive totals: %w", err)
		}
	}

	for _, table := range []string{runsTable, filesTable} {
		row = hs.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, hs.backend)))
		var count int64
		if err := row.Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllRuns retrieves all runs from the store, newest first.
func (hs *HistoryStoreImpl) GetAllRuns() ([]schema.ArchiveRunRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, root_path, archive_path, start_time, end_time, run_duration_ms, file_count, size_bytes, config_params
		FROM %s ORDER BY start_time DESC`, quoteTableName(runsTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query archive runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ArchiveRunRecord
	for rows.Next() {
		var record schema.ArchiveRunRecord
		var archivePath sql.NullString

		switch hs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &record.Root, &archivePath, &startTimeStr, &endTimeStr,
				&record.RunDurationMs, &record.FileCount, &record.SizeBytes, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan archive run: %w", err)
			}
			if record.StartTime, err = time.Parse(time.RFC3339Nano, startTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse start_time: %w", err)
			}
			if endTimeStr != nil {
				endTime, err := time.Parse(time.RFC3339Nano, *endTimeStr)
				if err != nil {
					return nil, fmt.Errorf("failed to parse end_time: %w", err)
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL store as native datetime
			if err := rows.Scan(&record.RunID, &record.Root, &archivePath, &record.StartTime, &record.EndTime,
				&record.RunDurationMs, &record.FileCount, &record.SizeBytes, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan archive run: %w", err)
			}
		}
		record.ArchivePath = archivePath.String
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archive runs: %w", err)
	}
	return results, nil
}

// GetAllFiles retrieves all archived file rows from the store.
func (hs *HistoryStoreImpl) GetAllFiles() ([]schema.ArchivedFileRecord, error) {
	if hs.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, rel_path, size_bytes, mod_time FROM %s ORDER BY run_id, rel_path`,
		quoteTableName(filesTable, hs.backend))
	rows, err := hs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query archived files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ArchivedFileRecord
	for rows.Next() {
		var record schema.ArchivedFileRecord

		switch hs.backend {
		case schema.SQLiteBackend:
			var modTimeStr string
			if err := rows.Scan(&record.RunID, &record.RelPath, &record.SizeBytes, &modTimeStr); err != nil {
				return nil, fmt.Errorf("failed to scan archived file: %w", err)
			}
			if record.ModTime, err = time.Parse(time.RFC3339Nano, modTimeStr); err != nil {
				return nil, fmt.Errorf("failed to parse mod_time: %w", err)
			}
		default:
			if err := rows.Scan(&record.RunID, &record.RelPath, &record.SizeBytes, &record.ModTime); err != nil {
				return nil, fmt.Errorf("failed to scan archived file: %w", err)
			}
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating archived files: %w", err)
	}
	return results, nil
}

// formatTime converts a time.Time to the appropriate format for the backend.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	switch backend {
	case schema.SQLiteBackend:
		return t.UTC().Format(sqliteTimeFormat)
	default:
		return t
	}
}

// scanTime reads a single timestamp column written by formatTime.
func scanTime(row *sql.Row, backend schema.DatabaseBackend) (time.Time, error) {
	if backend != schema.SQLiteBackend {
		var t time.Time
		err := row.Scan(&t)
		return t, err
	}
	var s string
	if err := row.Scan(&s); err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339Nano, s)
}
