package hybrid

import (
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/actionsum/focustime/pkg/integrations/common"
	"github.com/actionsum/focustime/pkg/window"
)

// Detector tries each probe in order and returns the first observation
type Detector struct {
	probes []window.Probe
	logger *zap.Logger

	mu                   sync.Mutex
	lastSuccessfulMethod string
}

// NewDetector chains probes in priority order. Unavailable probes are dropped.
func NewDetector(logger *zap.Logger, probes ...window.Probe) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &Detector{logger: logger}
	for _, p := range probes {
		if p == nil {
			continue
		}
		if !p.IsAvailable() {
			logger.Debug("probe unavailable, skipping", zap.String("probe", p.Name()))
			_ = p.Close()
			continue
		}
		d.probes = append(d.probes, p)
	}
	return d
}

// ActiveTitle returns the first title any probe observes
func (d *Detector) ActiveTitle() (string, bool) {
	for _, p := range d.probes {
		if title, ok := p.ActiveTitle(); ok {
			d.setLastMethod(p.Name())
			return title, true
		}
	}
	return "", false
}

func (d *Detector) setLastMethod(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.lastSuccessfulMethod != name {
		d.logger.Debug("active window source changed",
			zap.String("from", d.lastSuccessfulMethod),
			zap.String("to", name))
		d.lastSuccessfulMethod = name
	}
}

// LastSuccessfulMethod names the probe behind the most recent observation
func (d *Detector) LastSuccessfulMethod() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastSuccessfulMethod
}

// IsAvailable reports whether any chained probe can run
func (d *Detector) IsAvailable() bool {
	return len(d.probes) > 0
}

// Name returns "hybrid(a,b)" listing the chained probes
func (d *Detector) Name() string {
	names := make([]string, 0, len(d.probes))
	for _, p := range d.probes {
		names = append(names, p.Name())
	}
	return common.BackendHybrid + "(" + strings.Join(names, ",") + ")"
}

// Close closes every chained probe
func (d *Detector) Close() error {
	var err error
	for _, p := range d.probes {
		err = multierr.Append(err, p.Close())
	}
	return err
}
