//go:build linux || freebsd || openbsd || netbsd || dragonfly

package detector

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/focustime/pkg/integrations/hybrid"
	"github.com/actionsum/focustime/pkg/integrations/wayland"
	"github.com/actionsum/focustime/pkg/integrations/x11"
	"github.com/actionsum/focustime/pkg/integrations/xdotool"
	"github.com/actionsum/focustime/pkg/window"
)

// Backends lists the values accepted by New on this platform
var Backends = []string{BackendAuto, "wayland", "x11", "xdotool"}

func newPlatformProbe(backend string, logger *zap.Logger) (window.Probe, error) {
	logger = logger.Named("probe")

	switch backend {
	case BackendAuto:
		return hybrid.NewDetector(logger, autoChain(DetectDisplayServer(), logger)...), nil
	case "wayland":
		return wayland.NewDetector(logger), nil
	case "x11":
		return x11.NewDetector(logger), nil
	case "xdotool":
		return xdotool.NewDetector(logger), nil
	default:
		return nil, errors.Errorf("unknown probe backend %q (valid: %v)", backend, Backends)
	}
}

// autoChain orders probes for the display server. XWayland only exposes
// focus among X clients, so under Wayland the compositor is asked first.
func autoChain(displayServer string, logger *zap.Logger) []window.Probe {
	chain := []window.Probe{
		x11.NewDetector(logger),
		xdotool.NewDetector(logger),
	}
	if displayServer == "wayland" {
		chain = append([]window.Probe{wayland.NewDetector(logger)}, chain...)
	}
	return chain
}
