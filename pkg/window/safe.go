package window

import (
	"go.uber.org/zap"
)

// safeProbe converts a panic raised by platform code into "nothing observed".
type safeProbe struct {
	probe  Probe
	logger *zap.Logger
}

// Safe wraps p so that ActiveTitle never panics. A nil logger is allowed.
func Safe(p Probe, logger *zap.Logger) Probe {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sp, ok := p.(*safeProbe); ok {
		return sp
	}
	return &safeProbe{probe: p, logger: logger}
}

func (s *safeProbe) ActiveTitle() (title string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("probe panicked, skipping poll",
				zap.String("probe", s.probe.Name()),
				zap.Any("panic", r))
			title, ok = "", false
		}
	}()

	title, ok = s.probe.ActiveTitle()
	if title == "" {
		return "", false
	}
	return title, ok
}

func (s *safeProbe) IsAvailable() bool {
	return s.probe.IsAvailable()
}

func (s *safeProbe) Name() string {
	return s.probe.Name()
}

func (s *safeProbe) Close() error {
	return s.probe.Close()
}

// None is a probe that never observes a window. It backs unsupported platforms.
type None struct{}

func (None) ActiveTitle() (string, bool) { return "", false }
func (None) IsAvailable() bool           { return false }
func (None) Name() string                { return "none" }
func (None) Close() error                { return nil }
