package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"restaurant-floor-backend/internal/apperr"
	"restaurant-floor-backend/internal/audit"
	"restaurant-floor-backend/internal/db"
	"restaurant-floor-backend/internal/model"
	"restaurant-floor-backend/internal/store"
)

func newSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	require.NoError(t, err)

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func payment(orderID int64, method model.PaymentMethod, total, tip string, at time.Time) model.Payment {
	return model.Payment{
		OrderID:   orderID,
		Method:    method,
		Subtotal:  money(total),
		Discount:  decimal.Zero,
		Tax:       decimal.Zero,
		Tip:       money(tip),
		Total:     money(total),
		TaxRate:   money("0.16"),
		CreatedBy: "srv-1",
		CreatedAt: at.UTC(),
	}
}

func newTestService(t *testing.T, loc *time.Location, payments ...model.Payment) (*Service, *gorm.DB) {
	gormDB := newSQLiteDB(t)
	if len(payments) > 0 {
		require.NoError(t, gormDB.Create(&payments).Error)
	}
	st := store.NewGormStore(gormDB)
	rec := audit.NewRecorder(st, zap.NewNop())
	t.Cleanup(rec.Wait)
	return NewService(st, rec, loc, zap.NewNop()), gormDB
}

func TestAggregate(t *testing.T) {
	day := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	totals := Aggregate([]model.Payment{
		payment(1, model.PaymentCash, "200.00", "30.00", day),
		payment(2, model.PaymentCard, "100.00", "10.00", day),
	})

	assert.Equal(t, "230.00", totals.ExpectedCash.StringFixed(2))
	assert.Equal(t, "110.00", totals.CardTotal.StringFixed(2))
	assert.Equal(t, "300.00", totals.TotalRevenue.StringFixed(2))
	assert.Equal(t, "40.00", totals.TotalTips.StringFixed(2))
	assert.Equal(t, 2, totals.OrderCount)

	empty := Aggregate(nil)
	assert.True(t, empty.ExpectedCash.IsZero())
	assert.Zero(t, empty.OrderCount)
}

func TestCloseDay(t *testing.T) {
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, gormDB := newTestService(t, time.UTC,
		payment(1, model.PaymentCash, "200.00", "30.00", day.Add(13*time.Hour)),
		payment(2, model.PaymentCard, "100.00", "10.00", day.Add(20*time.Hour)),
		payment(3, model.PaymentCash, "999.00", "0.00", day.Add(-time.Second)),
		payment(4, model.PaymentCash, "888.00", "0.00", day.Add(24*time.Hour)),
	)
	ctx := context.Background()

	dc, err := svc.CloseDay(ctx, CloseRequest{Date: "2024-01-01", ActualCash: money("225.00"), Notes: "short in drawer"}, "mgr-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", dc.BusinessDate)
	assert.Equal(t, "230.00", dc.ExpectedCash.StringFixed(2))
	assert.Equal(t, "110.00", dc.CardTotal.StringFixed(2))
	assert.Equal(t, "300.00", dc.TotalRevenue.StringFixed(2))
	assert.Equal(t, "-5.00", dc.Variance.StringFixed(2))
	assert.Equal(t, 2, dc.OrderCount)
	assert.Equal(t, "mgr-1", dc.ClosedBy)

	_, err = svc.CloseDay(ctx, CloseRequest{Date: "2024-01-01", ActualCash: money("230.00")}, "mgr-2")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	stored, err := svc.GetDailyClose(ctx, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "-5.00", stored.Variance.StringFixed(2))
	assert.Equal(t, "mgr-1", stored.ClosedBy)

	svc.audit.Wait()
	var audits int64
	require.NoError(t, gormDB.Model(&model.AuditEntry{}).Where("action = ?", model.AuditDayClosed).Count(&audits).Error)
	assert.Equal(t, int64(1), audits)
}

func TestCloseDay_UsesBusinessTimezone(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*60*60)
	svc, _ := newTestService(t, loc,
		// 21:00 local on Jan 1st
		payment(1, model.PaymentCash, "50.00", "5.00", time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC)),
		// 23:00 local on Dec 31st
		payment(2, model.PaymentCash, "70.00", "0.00", time.Date(2024, 1, 1, 5, 0, 0, 0, time.UTC)),
	)

	preview, err := svc.PreviewDay(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.False(t, preview.Closed)
	assert.Equal(t, 1, preview.OrderCount)
	assert.Equal(t, "55.00", preview.ExpectedCash.StringFixed(2))
}

func TestCloseDay_Validation(t *testing.T) {
	svc, _ := newTestService(t, time.UTC)
	ctx := context.Background()

	testCases := []struct {
		name string
		req  CloseRequest
		kind error
	}{
		{"bad date", CloseRequest{Date: "01/02/2024", ActualCash: money("1")}, apperr.ErrValidation},
		{"negative cash", CloseRequest{Date: "2024-01-01", ActualCash: money("-1")}, apperr.ErrValidation},
		{"notes too long", CloseRequest{Date: "2024-01-01", Notes: strings.Repeat("n", 1025)}, apperr.ErrValidation},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CloseDay(ctx, tc.req, "mgr-1")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.kind))
		})
	}

	_, err := svc.GetDailyClose(ctx, "2024-02-02")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	dc, err := svc.CloseDay(ctx, CloseRequest{Date: "2024-02-02", ActualCash: money("0")}, "mgr-1")
	require.NoError(t, err)
	assert.True(t, dc.ExpectedCash.IsZero())
	assert.Zero(t, dc.OrderCount)

	preview, err := svc.PreviewDay(ctx, "2024-02-02")
	require.NoError(t, err)
	assert.True(t, preview.Closed)
}
