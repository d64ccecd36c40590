package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docrelay/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testReport(id string, started time.Time) domain.SubmissionReport {
	return domain.SubmissionReport{
		RunID:          id,
		Success:        true,
		Message:        "Submission processed successfully!",
		DocumentID:     "doc-" + id,
		DocumentURL:    "https://docs.google.com/document/d/doc-" + id,
		EmailMessageID: "msg-" + id,
		Recipient:      "admin@co.com",
		RetryCount:     0,
		StartedAt:      started,
		FinishedAt:     started.Add(1500 * time.Millisecond),
	}
}

// ==================== Store Creation Tests ====================

func TestNewStore_CreatesFileAndDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")

	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, path, store.Path())
	assert.FileExists(t, path)
}

func TestNewStore_EmptyPath(t *testing.T) {
	store, err := NewStore("")
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	ctx := context.Background()

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, testReport("run-1", time.Now())))
	require.NoError(t, store.Close())

	// Migrations must not re-run against an existing schema.
	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.RunID)

	var versions int
	require.NoError(t, reopened.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}

// ==================== Run Store Tests ====================

func TestStore_RecordAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 9, 30, 0, 123456789, time.UTC)

	report := testReport("run-1", started)
	report.ArchiveURI = "gs://bucket/submissions/run-1/x.docx"
	require.NoError(t, store.Record(ctx, report))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, report, *got)
	assert.Equal(t, 1500*time.Millisecond, got.Duration())
}

func TestStore_RecordFailure(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	report := domain.SubmissionReport{
		RunID:       "run-fail",
		Success:     false,
		Message:     "Workflow failed: Email sending failed: quota",
		DocumentID:  "doc-1",
		FailedStage: domain.StateSendingEmail,
		FailureKind: domain.KindStage,
		RetryCount:  1,
		StartedAt:   time.Unix(1700000000, 0).UTC(),
		FinishedAt:  time.Unix(1700000002, 0).UTC(),
	}
	require.NoError(t, store.Record(ctx, report))

	got, err := store.Get(ctx, "run-fail")
	require.NoError(t, err)
	assert.False(t, got.Success)
	assert.Equal(t, domain.StateSendingEmail, got.FailedStage)
	assert.Equal(t, domain.KindStage, got.FailureKind)
	assert.Equal(t, 1, got.RetryCount)
	assert.Empty(t, got.EmailMessageID)
	assert.Empty(t, got.ArchiveURI)
}

func TestStore_RecordReplaces(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	report := testReport("run-1", time.Now().UTC())
	require.NoError(t, store.Record(ctx, report))

	report.Success = false
	report.Message = "replaced"
	require.NoError(t, store.Record(ctx, report))

	got, err := store.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.False(t, got.Success)
	assert.Equal(t, "replaced", got.Message)

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_RecordRequiresRunID(t *testing.T) {
	store := setupTestStore(t)

	err := store.Record(context.Background(), domain.SubmissionReport{Message: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_GetNotFound(t *testing.T) {
	store := setupTestStore(t)

	got, err := store.Get(context.Background(), "missing")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := range 5 {
		id := fmt.Sprintf("run-%d", i)
		require.NoError(t, store.Record(ctx, testReport(id, base.Add(time.Duration(i)*time.Minute))))
	}

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "run-4", all[0].RunID)
	assert.Equal(t, "run-0", all[4].RunID)

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "run-4", limited[0].RunID)
	assert.Equal(t, "run-3", limited[1].RunID)
}

func TestStore_ListEmpty(t *testing.T) {
	store := setupTestStore(t)

	all, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStore_ConcurrentRecords(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, store.Record(ctx, testReport(fmt.Sprintf("run-%d", i), time.Now())))
		}(i)
	}
	wg.Wait()

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}
