//go:build darwin

package detector

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/focustime/pkg/integrations/macos"
	"github.com/actionsum/focustime/pkg/window"
)

// Backends lists the values accepted by New on this platform
var Backends = []string{BackendAuto, "macos"}

func newPlatformProbe(backend string, logger *zap.Logger) (window.Probe, error) {
	switch backend {
	case BackendAuto, "macos":
		return macos.NewDetector(logger.Named("probe")), nil
	default:
		return nil, errors.Errorf("unknown probe backend %q (valid: %v)", backend, Backends)
	}
}
