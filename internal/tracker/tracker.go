package tracker

import (
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/focustime/internal/models"
	"github.com/actionsum/focustime/pkg/window"
)

// ErrUnavailable is returned once the tracker state can no longer be trusted.
// Init clears the condition.
var ErrUnavailable = errors.New("tracker unavailable")

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

// Option configures a Tracker
type Option func(*Tracker)

// WithClock replaces time.Now
func WithClock(clock Clock) Option {
	return func(t *Tracker) {
		t.now = clock
	}
}

// WithLogger sets the logger used for faults and skipped polls
func WithLogger(logger *zap.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// Tracker accumulates focus seconds per window title.
//
// Each observed title is credited with the time elapsed since the previous
// transition, i.e. the interval ending at the poll where the title was seen.
// At a window switch the interval since the last poll therefore goes to the
// newly focused window. Polls that observe nothing leave the state untouched,
// so the skipped time folds into the next observed title.
//
// A single mutex guards all state. The probe runs outside of it.
type Tracker struct {
	probe  window.Probe
	now    Clock
	logger *zap.Logger

	mu             sync.Mutex
	records        map[string]float64
	order          []string
	lastTransition time.Time
	fault          error
}

// New creates a tracker reading from probe and initializes it.
func New(probe window.Probe, opts ...Option) *Tracker {
	if probe == nil {
		probe = window.None{}
	}

	t := &Tracker{
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.probe = window.Safe(probe, t.logger)
	t.Init()
	return t
}

// Init discards all accumulated time, starts a new interval at the current
// time, and clears ErrUnavailable.
func (t *Tracker) Init() {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = make(map[string]float64)
	t.order = nil
	t.lastTransition = now
	t.fault = nil
}

// Update probes the focused window once and credits the elapsed interval to it.
// Only ErrUnavailable is ever returned; probe failures are a silent no-op.
func (t *Tracker) Update() error {
	if err := t.Err(); err != nil {
		return err
	}

	now := t.now()
	title, ok := t.probe.ActiveTitle()
	if !ok {
		return nil
	}

	return t.withState("update", func() {
		t.observe(title, now)
	})
}

// observe must be called with mu held.
func (t *Tracker) observe(title string, now time.Time) {
	var elapsed time.Duration
	if !now.IsZero() {
		elapsed = now.Sub(t.lastTransition)
	}
	if elapsed < 0 {
		elapsed = 0
	}

	if _, seen := t.records[title]; !seen {
		t.order = append(t.order, title)
	}
	t.records[title] += elapsed.Seconds()

	if now.After(t.lastTransition) {
		t.lastTransition = now
	}
}

// WindowCount returns the number of distinct titles recorded
func (t *Tracker) WindowCount() (int, error) {
	var n int
	err := t.withState("window count", func() {
		n = len(t.order)
	})
	return n, err
}

// WindowAt returns the record at index in first-seen order.
// ok is false when index is out of range.
func (t *Tracker) WindowAt(index int) (models.WindowRecord, bool, error) {
	var (
		rec models.WindowRecord
		ok  bool
	)
	err := t.withState("window at", func() {
		if index < 0 || index >= len(t.order) {
			return
		}
		title := t.order[index]
		rec = models.WindowRecord{Title: title, Seconds: t.records[title]}
		ok = true
	})
	return rec, ok, err
}

// AllWindows returns a copy of every record in first-seen order
func (t *Tracker) AllWindows() ([]models.WindowRecord, error) {
	var out []models.WindowRecord
	err := t.withState("all windows", func() {
		out = make([]models.WindowRecord, 0, len(t.order))
		for _, title := range t.order {
			out = append(out, models.WindowRecord{Title: title, Seconds: t.records[title]})
		}
	})
	return out, err
}

// Cleanup discards accumulated time but keeps the current interval running,
// so the next observation is still measured from the last transition.
func (t *Tracker) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.records = make(map[string]float64)
	t.order = nil
}

// LastTransition returns the end of the most recently attributed interval
func (t *Tracker) LastTransition() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastTransition
}

// Err returns ErrUnavailable (wrapped with its cause) after a fault, nil otherwise
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fault
}

// ProbeName names the probe backing this tracker
func (t *Tracker) ProbeName() string {
	return t.probe.Name()
}

// withState runs fn holding the lock. A panic inside fn leaves the state
// half-written, so it marks the tracker unavailable instead of propagating.
func (t *Tracker) withState(op string, fn func()) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.fault != nil {
		return t.fault
	}

	defer func() {
		if r := recover(); r != nil {
			t.fault = errors.Wrapf(ErrUnavailable, "%s panicked: %v", op, r)
			t.logger.Error("tracker state corrupted", zap.String("op", op), zap.Any("panic", r))
			err = t.fault
		}
	}()

	fn()
	return nil
}
