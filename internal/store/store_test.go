package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"restaurant-floor-backend/internal/apperr"
	"restaurant-floor-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

var orderColumns = []string{"id", "table_id", "server_id", "status", "created_at", "updated_at"}

func TestGormStore_GuardedMutations(t *testing.T) {
	now := time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC)

	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		run              func(s Store) error
		expectedKind     error
	}{
		{
			name: "Unknown table is not found",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tables" WHERE "tables"."id" = $1`)).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			run: func(s Store) error {
				_, err := s.GetTable(context.Background(), 7)
				return err
			},
			expectedKind: apperr.ErrNotFound,
		},
		{
			name: "Cancelling a closed order is a conflict and rolls back",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE "orders"."id" = $1`)).
					WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(5, 3, "srv-1", "CLOSED", now, now))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tables" WHERE "tables"."id" = $1`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "number", "seats", "status"}).AddRow(3, 12, 4, "AVAILABLE"))
				mock.ExpectRollback()
			},
			run: func(s Store) error {
				_, _, err := s.CancelOrder(context.Background(), 5, now)
				return err
			},
			expectedKind: apperr.ErrConflict,
		},
		{
			name: "Removing a discount from a cancelled order is a conflict",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE "orders"."id" = $1`)).
					WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(9, 1, "srv-2", "CANCELLED", now, now))
				mock.ExpectRollback()
			},
			run: func(s Store) error {
				_, err := s.RemoveDiscountApplication(context.Background(), 9, 1)
				return err
			},
			expectedKind: apperr.ErrConflict,
		},
		{
			name: "Closing an already closed day is a conflict",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "daily_closes" WHERE business_date = $1`)).
					WithArgs("2024-03-01").
					WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
				mock.ExpectRollback()
			},
			run: func(s Store) error {
				_, err := s.CreateDailyClose(context.Background(), "2024-03-01", now, now.Add(24*time.Hour),
					func([]model.Payment) model.DailyClose { return model.DailyClose{} })
				return err
			},
			expectedKind: apperr.ErrConflict,
		},
		{
			name: "Settling an already closed order is a conflict",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE "orders"."id" = $1`)).
					WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(4, 2, "srv-1", "CLOSED", now, now))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "discount_applications"`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "order_items"`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tables"`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "number"}).AddRow(2, 2))
				mock.ExpectRollback()
			},
			run: func(s Store) error {
				_, err := s.SettleOrder(context.Background(), 4, now, func(model.Order) (model.Payment, error) {
					return model.Payment{}, errors.New("settle must not run for a closed order")
				})
				return err
			},
			expectedKind: apperr.ErrConflict,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			mock.MatchExpectationsInOrder(false)
			s := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			err := tc.run(s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.expectedKind), "unexpected error: %v", err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_OpenOrder_ReturnsExistingActiveOrder(t *testing.T) {
	now := time.Now().UTC()
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "tables" WHERE "tables"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "seats", "status"}).AddRow(3, 12, 4, "OCCUPIED"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE table_id = $1 AND status IN ($2,$3,$4)`)).
		WithArgs(3, "OPEN", "SUBMITTED", "COMPLETED", Any{}).
		WillReturnRows(sqlmock.NewRows(orderColumns).AddRow(41, 3, "srv-1", "SUBMITTED", now, now))
	mock.ExpectCommit()

	order, created, err := s.OpenOrder(context.Background(), 3, "srv-2", now)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, int64(41), order.ID)
	assert.Equal(t, "srv-1", order.ServerID)
	assert.Equal(t, model.OrderSubmitted, order.Status)
	require.NotNil(t, order.Table)
	assert.Equal(t, 12, order.Table.Number)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_ListAuditEntries_CapsPageSize(t *testing.T) {
	gormDB, mock := newTestDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "audit_entries" WHERE action = $1`)).
		WithArgs("ITEM_VOIDED").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(250))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "audit_entries" WHERE action = $1 ORDER BY created_at DESC, id DESC LIMIT`)).
		WithArgs("ITEM_VOIDED", 100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "action", "user_id"}).
			AddRow(3, "ITEM_VOIDED", "srv-1").
			AddRow(2, "ITEM_VOIDED", "srv-2"))

	entries, total, err := s.ListAuditEntries(context.Background(), AuditFilter{
		Action:   model.AuditItemVoided,
		PageSize: 5000,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(250), total)
	assert.Len(t, entries, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Any is a helper for sqlmock to match any argument.
type Any struct{}

// Match satisfies the sqlmock.Argument interface
func (a Any) Match(v driver.Value) bool {
	return true
}
