package audit

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"restaurant-floor-backend/internal/model"
	"restaurant-floor-backend/internal/store"
)

func newTestRecorder(t *testing.T) (*Recorder, sqlmock.Sqlmock, *observer.ObservedLogs) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	return NewRecorder(store.NewGormStore(gormDB), zap.New(core)), mock, logs
}

func TestRecord_InsertsEntry(t *testing.T) {
	rec, mock, logs := newTestRecorder(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "audit_entries"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	rec.Record(context.Background(), Entry{
		Action:  model.AuditItemVoided,
		UserID:  "srv-1",
		OrderID: Ptr(10),
		ItemID:  Ptr(31),
		Details: map[string]any{"reason": "WRONG_ITEM"},
	})
	rec.Wait()

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, logs.FilterMessage("audit entry recorded").Len())
}

func TestRecord_SwallowsStoreFailure(t *testing.T) {
	rec, mock, logs := newTestRecorder(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "audit_entries"`)).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NotPanics(t, func() {
		rec.Record(ctx, Entry{Action: model.AuditOrderCancelled, UserID: "srv-1", OrderID: Ptr(10)})
	})
	rec.Wait()

	assert.NoError(t, mock.ExpectationsWereMet())
	failures := logs.FilterMessage("failed to record audit entry").All()
	require.Len(t, failures, 1)
	assert.Equal(t, zapcore.WarnLevel, failures[0].Level)
}

func TestRecord_DoesNotWaitForSlowStore(t *testing.T) {
	rec, mock, logs := newTestRecorder(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "audit_entries"`)).
		WillDelayFor(300 * time.Millisecond).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	start := time.Now()
	rec.Record(context.Background(), Entry{Action: model.AuditPaymentSettled, UserID: "srv-1", OrderID: Ptr(10)})
	assert.Less(t, time.Since(start), 100*time.Millisecond, "Record must not block on the insert")

	rec.Wait()
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, logs.FilterMessage("audit entry recorded").Len())
}

func TestRecord_RejectsUnknownAction(t *testing.T) {
	rec, mock, logs := newTestRecorder(t)

	rec.Record(context.Background(), Entry{Action: "ITEM_EATEN", UserID: "srv-1"})

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, 1, logs.FilterMessage("refusing to record unknown audit action").Len())
}

func TestList_NormalizesPaging(t *testing.T) {
	rec, mock, _ := newTestRecorder(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "audit_entries"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "audit_entries"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	page, err := rec.List(context.Background(), store.AuditFilter{Page: -3, PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 100, page.PageSize)
	assert.NotNil(t, page.Entries)
	assert.Zero(t, page.Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
