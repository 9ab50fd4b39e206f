//go:build windows

package detector

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/focustime/pkg/integrations/win32"
	"github.com/actionsum/focustime/pkg/window"
)

// Backends lists the values accepted by New on this platform
var Backends = []string{BackendAuto, "win32"}

func newPlatformProbe(backend string, logger *zap.Logger) (window.Probe, error) {
	switch backend {
	case BackendAuto, "win32":
		return win32.NewDetector(logger.Named("probe")), nil
	default:
		return nil, errors.Errorf("unknown probe backend %q (valid: %v)", backend, Backends)
	}
}
