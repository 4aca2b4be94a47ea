package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// DatabaseFile is the name of the report database inside the store directory.
const DatabaseFile = "reports.db"

// SQLiteStore implements ReportStore on a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

var _ ReportStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (creating if needed) the report database in dir.
func NewSQLiteStore(dir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	dbPath := filepath.Join(dir, DatabaseFile)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStore{db: db, dbPath: dbPath}, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.dbPath }

// SaveReport inserts or replaces r.
func (s *SQLiteStore) SaveReport(ctx context.Context, r *Report) (string, error) {
	if err := prepare(r); err != nil {
		return "", err
	}
	var params any
	if r.Params != nil {
		params = string(r.Params)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO reports
			(id, network, fingerprint, analysis, params, result, created_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Network, r.Fingerprint, r.Analysis, params, string(r.Result),
		r.CreatedAt.UTC().Format(time.RFC3339Nano), int64(r.Duration))
	if err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	return r.ID, nil
}

const selectReport = `
	SELECT id, network, fingerprint, analysis, params, result, created_at, duration_ns
	FROM reports`

// GetReport loads the report with the given ID.
func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*Report, error) {
	row := s.db.QueryRowContext(ctx, selectReport+` WHERE id = ?`, id)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report %s: %w", id, err)
	}
	return r, nil
}

// ListReports returns matching reports, oldest first.
func (s *SQLiteStore) ListReports(ctx context.Context, network string) ([]Report, error) {
	query := selectReport
	var args []any
	if network != "" {
		query += ` WHERE network = ?`
		args = append(args, network)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Sorted in Go: RFC 3339 text with trimmed fractions does not sort lexically.
	sortReports(out)
	return out, nil
}

// DeleteReport removes a report.
func (s *SQLiteStore) DeleteReport(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(sc scanner) (*Report, error) {
	var (
		r          Report
		params     sql.NullString
		result     string
		createdAt  string
		durationNS int64
	)
	if err := sc.Scan(&r.ID, &r.Network, &r.Fingerprint, &r.Analysis, &params, &result, &createdAt, &durationNS); err != nil {
		return nil, err
	}
	if params.Valid {
		r.Params = []byte(params.String)
	}
	r.Result = []byte(result)
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	r.CreatedAt = t
	r.Duration = time.Duration(durationNS)
	return &r, nil
}
