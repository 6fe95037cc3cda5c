package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded drop-box outcome.
type Entry struct {
	ID            int64
	CorrelationID string
	Environment   string
	Step          string
	Alias         string
	Status        string
	Accession     string
	Pattern       string
	Released      bool
	ErrorKind     string
	Detail        string
	CreatedAt     time.Time
}

// ListOptions filters List results.
type ListOptions struct {
	CorrelationID string
	Alias         string
	Limit         int
}

// Store persists entries in SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open creates or connects to the journal database at path and applies
// migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path, now: time.Now}
	if err := store.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends e and returns it with ID and CreatedAt assigned.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if s == nil || s.db == nil {
		return Entry{}, errors.New("journal unavailable")
	}
	if strings.TrimSpace(e.CorrelationID) == "" || strings.TrimSpace(e.Step) == "" || strings.TrimSpace(e.Status) == "" {
		return Entry{}, errors.New("journal entry requires correlation id, step, and status")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO entries (
            correlation_id, environment, step, alias, status, accession,
            pattern, released, error_kind, detail, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CorrelationID,
		e.Environment,
		e.Step,
		nullableString(e.Alias),
		e.Status,
		nullableString(e.Accession),
		nullableString(e.Pattern),
		boolToInt(e.Released),
		nullableString(e.ErrorKind),
		nullableString(e.Detail),
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id
	return e, nil
}

const entryColumns = "id, correlation_id, environment, step, alias, status, accession, pattern, released, error_kind, detail, created_at"

// List returns entries newest first.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("journal unavailable")
	}
	var (
		where []string
		args  []any
	)
	if v := strings.TrimSpace(opts.CorrelationID); v != "" {
		where = append(where, "correlation_id = ?")
		args = append(args, v)
	}
	if v := strings.TrimSpace(opts.Alias); v != "" {
		where = append(where, "alias = ?")
		args = append(args, v)
	}
	query := "SELECT " + entryColumns + " FROM entries"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		e          Entry
		alias      sql.NullString
		accession  sql.NullString
		pattern    sql.NullString
		released   sql.NullInt64
		errorKind  sql.NullString
		detail     sql.NullString
		createdRaw string
	)
	if err := scanner.Scan(
		&e.ID,
		&e.CorrelationID,
		&e.Environment,
		&e.Step,
		&alias,
		&e.Status,
		&accession,
		&pattern,
		&released,
		&errorKind,
		&detail,
		&createdRaw,
	); err != nil {
		return Entry{}, err
	}
	e.Alias = alias.String
	e.Accession = accession.String
	e.Pattern = pattern.String
	e.Released = released.Valid && released.Int64 != 0
	e.ErrorKind = errorKind.String
	e.Detail = detail.String
	if created, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		e.CreatedAt = created
	}
	return e, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
