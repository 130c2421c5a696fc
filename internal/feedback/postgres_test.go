package feedback

import (
	"bytes"
	"context"
	"errors"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lionsmanic/gyn-cancer-staging/internal/database"
	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

var recordColumns = []string{
	"id", "protocol", "findings_digest", "tnm", "suggested_stage",
	"clinician_stage", "agreed", "notes", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	store, err := NewPostgresStore(context.Background(), db)
	require.NoError(t, err)
	t.Cleanup(func() {
		mock.ExpectClose()
		_ = store.Close()
	})
	return store, mock
}

func TestNewPostgresStore_NilDB(t *testing.T) {
	_, err := NewPostgresStore(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewPostgresStore_PingFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	_, err = NewPostgresStore(context.Background(), db)
	assert.ErrorContains(t, err, "failed to ping database")
}

func TestPostgresStore_Save_Mock(t *testing.T) {
	store, mock := newMockStore(t)
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO feedback")).
		WithArgs("ovarian", "digest-1", "T1a N0 M0", "Stage IA", "Stage IB", false, "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(7), created))

	rec := testRecord(domain.ProtocolOvarian, "digest-1", "Stage IA", "Stage IB")
	require.NoError(t, store.Save(context.Background(), rec))

	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, created, rec.CreatedAt)
	assert.False(t, rec.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Save_InvalidSkipsQuery(t *testing.T) {
	store, mock := newMockStore(t)

	err := store.Save(context.Background(), &Record{})
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Save_DatabaseError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO feedback")).
		WillReturnError(errors.New("deadlock detected"))

	err := store.Save(context.Background(), testRecord(domain.ProtocolVulvar, "v", "Stage IA", "Stage IA"))
	assert.ErrorContains(t, err, "failed to save feedback")
}

func TestPostgresStore_Get_Mock(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("FROM feedback WHERE protocol = $1 AND findings_digest = $2")).
		WithArgs("cervical", "digest-2").
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(int64(3), "cervical", "digest-2", "T4 N0 M1", "Stage IVB", "Stage IVB", true, "", now, now))

	got, err := store.Get(context.Background(), domain.ProtocolCervical, "digest-2")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, domain.ProtocolCervical, got.Protocol)
	assert.Equal(t, "Stage IVB", got.SuggestedStage)
	assert.True(t, got.Agreed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Get_NotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM feedback WHERE protocol")).
		WillReturnRows(sqlmock.NewRows(recordColumns))

	got, err := store.Get(context.Background(), domain.ProtocolCervical, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPostgresStore_ListCountDelete_Mock(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2")).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(int64(2), "gtn", "g2", "T1 M0", "Stage I", "Stage I", true, "", now, now).
			AddRow(int64(1), "gtn", "g1", "T2 M0", "Stage II", "Stage III", false, "imaging", now, now))

	list, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "g2", list[0].FindingsDigest)
	assert.Equal(t, "imaging", list[1].Notes)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM feedback")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM feedback WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Delete(ctx, 1))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// openTestDatabase connects to TEST_DATABASE_URL and applies the embedded
// migrations. Tests are skipped when it is unset.
func openTestDatabase(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL tests")
	}

	ctx := context.Background()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	runner, err := database.NewMigrationRunner(url, logger)
	require.NoError(t, err)
	require.NoError(t, runner.Up())
	require.NoError(t, runner.Close())

	db, err := database.Open(ctx, domain.FeedbackConfig{Driver: "postgres", URL: url}, logger)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.SQL().ExecContext(ctx, "DELETE FROM feedback")
	require.NoError(t, err)

	store, err := NewPostgresStore(ctx, db.SQL())
	require.NoError(t, err)
	return store
}

func TestPostgresStore_Integration(t *testing.T) {
	store := openTestDatabase(t)
	ctx := context.Background()

	rec := testRecord(domain.ProtocolEndometrial, "e1", "Stage IA1", "Stage IA1")
	require.NoError(t, store.Save(ctx, rec))
	firstID := rec.ID

	update := testRecord(domain.ProtocolEndometrial, "e1", "Stage IA1", "Stage IA2")
	require.NoError(t, store.Save(ctx, update))
	assert.Equal(t, firstID, update.ID)

	got, err := store.Get(ctx, domain.ProtocolEndometrial, "e1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Stage IA2", got.ClinicianStage)
	assert.False(t, got.Agreed)

	var buf bytes.Buffer
	require.NoError(t, store.ExportJSON(ctx, &buf))
	imported, skipped, err := store.ImportJSON(ctx, &buf)
	require.NoError(t, err)
	assert.Zero(t, imported)
	assert.Equal(t, 1, skipped)
}
