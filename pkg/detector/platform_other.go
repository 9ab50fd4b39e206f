//go:build !linux && !freebsd && !openbsd && !netbsd && !dragonfly && !windows && !darwin

package detector

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/focustime/pkg/window"
)

// Backends lists the values accepted by New on this platform
var Backends = []string{BackendAuto}

func newPlatformProbe(backend string, _ *zap.Logger) (window.Probe, error) {
	if backend != BackendAuto {
		return nil, errors.Errorf("unknown probe backend %q (valid: %v)", backend, Backends)
	}
	return window.None{}, nil
}
