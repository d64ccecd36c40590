package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docrelay/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docrelay/internal/core/domain"
	"github.com/custodia-labs/docrelay/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.RunStore = (*Store)(nil)

// Store records pipeline runs in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the database at dbPath and applies
// pending migrations.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("database path is required")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, errors.Wrap(err, "creating data directory")
	}

	// WAL mode lets the MCP server and a CLI invocation share the file.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "running migrations")
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return errors.Wrap(err, "creating schema_migrations table")
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return errors.Wrap(err, "getting current version")
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return errors.Wrap(err, "reading migrations directory")
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_runs.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return errors.Wrapf(err, "reading migration %s", name)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return errors.Wrapf(err, "executing migration %s", name)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return errors.Wrapf(err, "recording migration %s", name)
		}
	}

	return nil
}

// Record stores or replaces a run report.
func (s *Store) Record(ctx context.Context, report domain.SubmissionReport) error {
	if report.RunID == "" {
		return errors.Wrap(domain.ErrInvalidInput, "run ID is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_id, success, message, document_id, document_url, email_message_id,
			recipient, failed_stage, failure_kind, retry_count, archive_uri, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO UPDATE SET
			success = excluded.success,
			message = excluded.message,
			document_id = excluded.document_id,
			document_url = excluded.document_url,
			email_message_id = excluded.email_message_id,
			recipient = excluded.recipient,
			failed_stage = excluded.failed_stage,
			failure_kind = excluded.failure_kind,
			retry_count = excluded.retry_count,
			archive_uri = excluded.archive_uri,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at
	`, report.RunID, boolToInt(report.Success), report.Message,
		nullString(report.DocumentID), nullString(report.DocumentURL), nullString(report.EmailMessageID),
		nullString(report.Recipient), nullString(string(report.FailedStage)), nullString(string(report.FailureKind)),
		report.RetryCount, nullString(report.ArchiveURI),
		toNanos(report.StartedAt), toNanos(report.FinishedAt))
	if err != nil {
		return errors.Wrapf(err, "recording run %s", report.RunID)
	}
	return nil
}

const selectRun = `
	SELECT run_id, success, message, document_id, document_url, email_message_id,
		recipient, failed_stage, failure_kind, retry_count, archive_uri, started_at, finished_at
	FROM runs`

// Get retrieves a run by ID.
func (s *Store) Get(ctx context.Context, runID string) (*domain.SubmissionReport, error) {
	row := s.db.QueryRowContext(ctx, selectRun+" WHERE run_id = ?", runID)
	report, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(domain.ErrNotFound, "run %s", runID)
		}
		return nil, errors.Wrapf(err, "getting run %s", runID)
	}
	return report, nil
}

// List returns up to limit runs, newest first. A non-positive limit returns all.
func (s *Store) List(ctx context.Context, limit int) ([]domain.SubmissionReport, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, selectRun+" ORDER BY started_at DESC, run_id DESC LIMIT ?", limit)
	if err != nil {
		return nil, errors.Wrap(err, "listing runs")
	}
	defer rows.Close()

	var reports []domain.SubmissionReport
	for rows.Next() {
		report, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scanning run")
		}
		reports = append(reports, *report)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterating runs")
	}
	return reports, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.SubmissionReport, error) {
	var (
		r           domain.SubmissionReport
		success     int
		docID       sql.NullString
		docURL      sql.NullString
		msgID       sql.NullString
		recipient   sql.NullString
		failedStage sql.NullString
		failureKind sql.NullString
		archiveURI  sql.NullString
		startedAt   int64
		finishedAt  int64
	)
	err := row.Scan(&r.RunID, &success, &r.Message, &docID, &docURL, &msgID,
		&recipient, &failedStage, &failureKind, &r.RetryCount, &archiveURI, &startedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	r.Success = success != 0
	r.DocumentID = docID.String
	r.DocumentURL = docURL.String
	r.EmailMessageID = msgID.String
	r.Recipient = recipient.String
	r.FailedStage = domain.State(failedStage.String)
	r.FailureKind = domain.ErrorKind(failureKind.String)
	r.ArchiveURI = archiveURI.String
	r.StartedAt = fromNanos(startedAt)
	r.FinishedAt = fromNanos(finishedAt)
	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
