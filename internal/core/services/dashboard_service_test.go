package services

import (
	"context"
	"testing"
	"time"

	"quest-alumni/internal/adapters/persistence/models"
	"quest-alumni/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var dashboardClock = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC)

func seedApplication(t *testing.T, db *gorm.DB, applicant, g1, g2 *models.User, category *models.LoanCategory, status domain.LoanStatus, assignee *models.User) *models.LoanApplication {
	t.Helper()

	app := &models.LoanApplication{
		ApplicantID:     applicant.ID,
		LoanCategoryID:  category.ID,
		LoanAmount:      decimal.NewFromInt(12000),
		MonthlyInterest: decimal.NewFromInt(120),
		TotalPayable:    decimal.NewFromInt(13440),
		EMIAmount:       decimal.NewFromInt(1120),
		RepaymentMonths: 12,
		Guarantor1ID:    g1.ID,
		Guarantor2ID:    g2.ID,
		Status:          status,
		SubmittedAt:     dashboardClock.AddDate(0, 0, -3),
	}
	if assignee != nil {
		app.AssignedToID = &assignee.ID
	}
	require.NoError(t, db.Create(app).Error)
	return app
}

func TestDashboardService(t *testing.T) {
	db := setupTestDB(t)
	svc := NewDashboardService(db)
	svc.now = fixedClock(dashboardClock)
	ctx := context.Background()

	admin := seedAdmin(t, db)
	manager := seedManager(t, db, "manager")
	asha := seedMember(t, db, "asha")
	ravi := seedMember(t, db, "ravi")
	meera := seedMember(t, db, "meera")
	seedUser(t, db, userSeed{name: "pending", status: domain.UserStatusPending})
	category := seedCategory(t, db, 3)

	seedApplication(t, db, asha, ravi, meera, category, domain.LoanStatusSubmitted, nil)
	active := seedApplication(t, db, asha, ravi, meera, category, domain.LoanStatusActiveLoan, manager)
	seedApplication(t, db, ravi, asha, meera, category, domain.LoanStatusUnderReview, manager)

	repayments := []models.LoanRepayment{
		{LoanApplicationID: active.ID, RepaymentMonth: 1, DueAmount: decimal.NewFromInt(1120), PaidAmount: decimal.NewFromInt(1120), DueDate: dashboardClock.AddDate(0, -1, 0), PaymentStatus: domain.PaymentStatusPaid},
		{LoanApplicationID: active.ID, RepaymentMonth: 2, DueAmount: decimal.NewFromInt(1120), PaidAmount: decimal.NewFromInt(120), DueDate: dashboardClock.AddDate(0, 0, -1), PaymentStatus: domain.PaymentStatusPartial},
		{LoanApplicationID: active.ID, RepaymentMonth: 3, DueAmount: decimal.NewFromInt(1120), PaidAmount: decimal.Zero, DueDate: dashboardClock.AddDate(0, 1, 0), PaymentStatus: domain.PaymentStatusPending},
	}
	require.NoError(t, db.Create(&repayments).Error)

	event := &models.Event{Name: "Reunion", StartDate: dashboardClock.AddDate(0, 0, 7), EndDate: dashboardClock.AddDate(0, 0, 8)}
	require.NoError(t, db.Create(event).Error)
	require.NoError(t, db.Create(&models.EventParticipant{EventID: event.ID, UserID: asha.ID}).Error)

	t.Run("admin", func(t *testing.T) {
		data, err := svc.GetAdminDashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(6), data.TotalUsers)
		assert.Equal(t, int64(1), data.PendingApprovals)
		assert.Equal(t, int64(1), data.LoansByStatus[domain.LoanStatusSubmitted])
		assert.Equal(t, int64(1), data.UnassignedLoans)
		assert.Equal(t, "12000", data.TotalDisbursed.String())
		assert.Equal(t, "2120", data.OutstandingBalance.String())
		assert.Equal(t, int64(1), data.OverdueRepayments)
		assert.Equal(t, int64(3), data.SubmittedThisMonth)
		assert.Equal(t, int64(1), data.UpcomingEvents)
		assert.Len(t, data.RecentApplications, 3)
		require.Len(t, data.ManagerWorkload, 1)
		assert.Equal(t, manager.ID, data.ManagerWorkload[0].ManagerID)
		assert.Equal(t, int64(1), data.ManagerWorkload[0].InReview)
		assert.Equal(t, int64(1), data.ManagerWorkload[0].Approved)
		assert.Equal(t, int64(2), data.ManagerWorkload[0].Total)
	})

	t.Run("manager", func(t *testing.T) {
		data, err := svc.GetManagerDashboard(ctx, manager.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), data.AssignedByStatus[domain.LoanStatusActiveLoan])
		assert.Equal(t, int64(1), data.AssignedByStatus[domain.LoanStatusUnderReview])
		assert.Equal(t, int64(1), data.UnassignedQueue)
		assert.Equal(t, int64(1), data.OverdueRepayments)
		assert.Len(t, data.RecentAssigned, 2)
	})

	t.Run("member", func(t *testing.T) {
		data, err := svc.GetMemberDashboard(ctx, asha.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), data.Applications[domain.LoanStatusActiveLoan])
		assert.Equal(t, int64(0), data.ActiveGuarantees)
		require.NotNil(t, data.NextInstallment)
		assert.Equal(t, 2, data.NextInstallment.RepaymentMonth)
		assert.Equal(t, "1000", data.NextInstallment.AmountDue.String())
		assert.Equal(t, int64(1), data.UpcomingEvents)

		guarantor, err := svc.GetMemberDashboard(ctx, ravi.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), guarantor.ActiveGuarantees)
		assert.Nil(t, guarantor.NextInstallment)
	})

	t.Run("by role", func(t *testing.T) {
		data, err := svc.GetMyDashboard(ctx, admin.Actor())
		require.NoError(t, err)
		assert.IsType(t, &AdminDashboardData{}, data)

		data, err = svc.GetMyDashboard(ctx, manager.Actor())
		require.NoError(t, err)
		assert.IsType(t, &ManagerDashboardData{}, data)

		data, err = svc.GetMyDashboard(ctx, meera.Actor())
		require.NoError(t, err)
		assert.IsType(t, &MemberDashboardData{}, data)
	})
}
