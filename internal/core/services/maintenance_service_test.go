package services

import (
	"context"
	"testing"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/config"
	"quest-alumni/internal/core/domain"
	"quest-alumni/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceService_ScanOverdue(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMaintenanceService(db, config.CronConfig{})
	svc.now = fixedClock(time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC))

	rows := []models.LoanRepayment{
		{LoanApplicationID: 1, RepaymentMonth: 1, DueDate: time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), PaymentStatus: domain.PaymentStatusPaid},
		{LoanApplicationID: 1, RepaymentMonth: 2, DueDate: time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC), PaymentStatus: domain.PaymentStatusPartial},
		{LoanApplicationID: 1, RepaymentMonth: 3, DueDate: time.Date(2025, time.May, 9, 0, 0, 0, 0, time.UTC), PaymentStatus: domain.PaymentStatusPending},
		{LoanApplicationID: 1, RepaymentMonth: 4, DueDate: time.Date(2025, time.June, 10, 0, 0, 0, 0, time.UTC), PaymentStatus: domain.PaymentStatusPending},
	}
	for i := range rows {
		rows[i].DueAmount = decimal.NewFromInt(100)
		rows[i].PaidAmount = decimal.Zero
	}
	require.NoError(t, db.Create(&rows).Error)

	require.NoError(t, svc.ScanOverdue(context.Background()))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.OverdueRepayments))
}

func TestMaintenanceService_PurgeExpiredTokens(t *testing.T) {
	db := setupTestDB(t)
	svc := NewMaintenanceService(db, config.CronConfig{RevokedTokenDays: 7})
	now := time.Now()
	svc.now = fixedClock(now)
	member := seedMember(t, db, "member")

	longRevoked := now.AddDate(0, 0, -10)
	recentlyRevoked := now.AddDate(0, 0, -1)
	tokens := []models.RefreshToken{
		{UserID: member.ID, TokenHash: "expired-1", ExpiresAt: now.Add(-time.Hour)},
		{UserID: member.ID, TokenHash: "expired-2", ExpiresAt: now.Add(-48 * time.Hour)},
		{UserID: member.ID, TokenHash: "revoked-old", ExpiresAt: now.Add(time.Hour), RevokedAt: &longRevoked},
		{UserID: member.ID, TokenHash: "revoked-recent", ExpiresAt: now.Add(time.Hour), RevokedAt: &recentlyRevoked},
		{UserID: member.ID, TokenHash: "live", ExpiresAt: now.Add(time.Hour)},
	}
	require.NoError(t, db.Create(&tokens).Error)

	before := testutil.ToFloat64(metrics.ExpiredTokensPurgedTotal)
	require.NoError(t, svc.PurgeExpiredTokens(context.Background()))
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.ExpiredTokensPurgedTotal)-before)

	var remaining []string
	require.NoError(t, db.Model(&models.RefreshToken{}).Order("token_hash").Pluck("token_hash", &remaining).Error)
	assert.Equal(t, []string{"live", "revoked-recent"}, remaining)
}

func TestMaintenanceService_StartDisabled(t *testing.T) {
	svc := NewMaintenanceService(setupTestDB(t), config.CronConfig{Enabled: false})
	require.NoError(t, svc.Start())
	svc.Stop()
}

func TestMaintenanceService_StartRejectsBadSpec(t *testing.T) {
	svc := NewMaintenanceService(setupTestDB(t), config.CronConfig{
		Enabled:         true,
		OverdueScanSpec: "not a cron spec",
		TokenPurgeSpec:  "30 3 * * *",
	})
	assert.Error(t, svc.Start())
}
