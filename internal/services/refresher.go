package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RefresherService re-runs tracked analyses on a schedule so a scout
// watching an in-progress event sees new matches without hammering refresh.
type RefresherService struct {
	analysis        *AnalysisService
	logger          *logrus.Logger
	cron            *cron.Cron
	refreshInterval time.Duration

	mu        sync.Mutex
	isRunning bool
}

func NewRefresherService(analysis *AnalysisService, logger *logrus.Logger, refreshInterval time.Duration) *RefresherService {
	return &RefresherService{
		analysis:        analysis,
		logger:          logger,
		cron:            cron.New(),
		refreshInterval: refreshInterval,
	}
}

// Start begins the scheduled refresh loop.
func (s *RefresherService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("refresher is already running")
	}

	schedule := fmt.Sprintf("@every %s", s.refreshInterval.String())
	if _, err := s.cron.AddFunc(schedule, s.refreshTracked); err != nil {
		return fmt.Errorf("failed to schedule refresher: %w", err)
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("interval", s.refreshInterval.String()).Info("Refresher service started")
	return nil
}

// Stop halts the refresh loop, waiting for an in-flight run to finish.
func (s *RefresherService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.Info("Refresher service stopped")
}

func (s *RefresherService) refreshTracked() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	events, err := s.analysis.TrackedEvents(ctx)
	if err != nil || len(events) == 0 {
		return
	}

	s.logger.WithField("events", len(events)).Info("Refreshing tracked analyses")
	for _, e := range events {
		if _, err := s.analysis.Refresh(ctx, e.SKU, e.MyTeam); err != nil {
			s.logger.WithFields(logrus.Fields{
				"event": e.SKU,
				"error": err.Error(),
			}).Warn("Scheduled refresh failed")
		}
	}
}

// Status reports whether the loop is running and when it fires next.
func (s *RefresherService) Status() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	nextRuns := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		nextRuns = append(nextRuns, entry.Next)
	}
	return map[string]interface{}{
		"is_running":       s.isRunning,
		"refresh_interval": s.refreshInterval.String(),
		"next_runs":        nextRuns,
	}
}
