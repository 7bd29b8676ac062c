package services

import (
	"context"
	"time"

	"quest-alumni/internal/adapters/persistence/repositories"
	"quest-alumni/internal/config"
	"quest-alumni/internal/pkg/logger"
	"quest-alumni/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maintenanceJobTimeout = 2 * time.Minute

// MaintenanceService runs scheduled housekeeping jobs
type MaintenanceService struct {
	db   *gorm.DB
	cfg  config.CronConfig
	cron *cron.Cron
	log  *zap.Logger
	now  func() time.Time
}

// NewMaintenanceService creates a new maintenance service
func NewMaintenanceService(db *gorm.DB, cfg config.CronConfig) *MaintenanceService {
	return &MaintenanceService{
		db:   db,
		cfg:  cfg,
		cron: cron.New(),
		log:  logger.WithComponent(zap.L(), "maintenance"),
		now:  time.Now,
	}
}

// Start registers the jobs and starts the scheduler
func (s *MaintenanceService) Start() error {
	if !s.cfg.Enabled {
		s.log.Info("⏸️ Maintenance jobs disabled")
		return nil
	}

	if _, err := s.cron.AddFunc(s.cfg.OverdueScanSpec, s.runJob("overdue_scan", s.ScanOverdue)); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.TokenPurgeSpec, s.runJob("token_purge", s.PurgeExpiredTokens)); err != nil {
		return err
	}

	s.cron.Start()
	s.log.Info("🚀 Maintenance jobs started",
		zap.String("overdue_scan", s.cfg.OverdueScanSpec),
		zap.String("token_purge", s.cfg.TokenPurgeSpec),
	)
	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *MaintenanceService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("🛑 Maintenance jobs stopped")
}

func (s *MaintenanceService) runJob(name string, job func(context.Context) error) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), maintenanceJobTimeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			s.log.Error("❌ Maintenance job failed", zap.String("job", name), zap.Error(err))
			return
		}
		s.log.Debug("Maintenance job finished", zap.String("job", name), zap.Duration("took", time.Since(start)))
	}
}

// ScanOverdue counts unpaid repayments past their due date and
// publishes the count as a gauge
func (s *MaintenanceService) ScanOverdue(ctx context.Context) error {
	rows, err := repositories.NewLoanRepaymentRepository(s.db).ListOverdue(ctx, s.now())
	if err != nil {
		return err
	}

	metrics.OverdueRepayments.Set(float64(len(rows)))
	if len(rows) > 0 {
		s.log.Info("⏰ Overdue repayments found", zap.Int("count", len(rows)))
	}
	return nil
}

// PurgeExpiredTokens deletes refresh tokens past their expiry and revoked
// tokens older than the retention window
func (s *MaintenanceService) PurgeExpiredTokens(ctx context.Context) error {
	now := s.now()
	revokedBefore := now.AddDate(0, 0, -s.cfg.RevokedTokenDays)
	deleted, err := repositories.NewRefreshTokenRepository(s.db).PurgeStale(ctx, now, revokedBefore)
	if err != nil {
		return err
	}

	metrics.ExpiredTokensPurgedTotal.Add(float64(deleted))
	if deleted > 0 {
		s.log.Info("🗑️ Expired refresh tokens purged", zap.Int64("count", deleted))
	}
	return nil
}
