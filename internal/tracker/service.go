package tracker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/focustime/internal/config"
)

// Service drives Tracker.Update on a fixed cadence
type Service struct {
	config   *config.Config
	tracker  *Tracker
	logger   *zap.Logger
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool
}

func NewService(cfg *config.Config, tr *Tracker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		config:   cfg,
		tracker:  tr,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start polls until ctx is cancelled or Stop is called. It blocks.
func (s *Service) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("tracker is already running")
	}
	defer s.running.Store(false)

	interval := s.config.Tracker.PollInterval
	s.logger.Info("starting tracker",
		zap.Duration("poll_interval", interval),
		zap.String("probe", s.tracker.ProbeName()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.trackOnce()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("tracker stopped by context")
			return ctx.Err()

		case <-s.stopChan:
			s.logger.Info("tracker stopped")
			return nil

		case <-ticker.C:
			s.trackOnce()
		}
	}
}

// Stop ends a running Start. Safe to call more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *Service) IsRunning() bool {
	return s.running.Load()
}

func (s *Service) trackOnce() {
	if err := s.tracker.Update(); err != nil {
		// The reporter surfaces the condition and re-initializes the tracker.
		s.logger.Debug("poll skipped", zap.Error(err))
	}
}
