package services

import (
	"context"
	"log"
	"time"

	"tanda-xntrust/internal/adapters/persistence/repositories"
	"tanda-xntrust/internal/config"

	"github.com/robfig/cron/v3"
)

// SweepService runs scheduled maintenance: expiring lapsed vouches and
// purging expired refresh tokens. Scoring reads never depend on the sweep
// because vouch expiry is also evaluated lazily at read time; the sweep just
// keeps the stored status column honest.
type SweepService struct {
	vouchRepo        repositories.VouchRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	schedule         string
	cron             *cron.Cron
}

// NewSweepService creates a new sweep service
func NewSweepService(
	vouchRepo repositories.VouchRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *SweepService {
	return &SweepService{
		vouchRepo:        vouchRepo,
		refreshTokenRepo: refreshTokenRepo,
		schedule:         cfg.Scoring.SweepSchedule,
		cron:             cron.New(cron.WithSeconds()),
	}
}

// Start schedules the sweep and begins running it
func (s *SweepService) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runOnce); err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("🚀 Sweep scheduled: %s", s.schedule)
	return nil
}

// Stop halts the scheduler, waiting for a running sweep to finish
func (s *SweepService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 Sweep stopped")
}

// RunNow triggers one sweep immediately (admin endpoint)
func (s *SweepService) RunNow(ctx context.Context) (int64, error) {
	expired, err := s.vouchRepo.ExpireLapsed(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("⚠️ Refresh token cleanup failed: %v", err)
	}

	return expired, nil
}

func (s *SweepService) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	expired, err := s.RunNow(ctx)
	if err != nil {
		log.Printf("⚠️ Vouch sweep failed: %v", err)
		return
	}

	if expired > 0 {
		log.Printf("🧹 Vouch sweep: %d vouches expired", expired)
	}
}
