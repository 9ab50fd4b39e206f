package detector

import (
	"os"

	"go.uber.org/zap"

	"github.com/actionsum/focustime/pkg/window"
)

// BackendAuto selects the best probe for the running platform
const BackendAuto = "auto"

// New returns the active-window probe for this platform, wrapped so that
// platform failures surface as "nothing observed".
func New(backend string, logger *zap.Logger) (window.Probe, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if backend == "" {
		backend = BackendAuto
	}

	probe, err := newPlatformProbe(backend, logger)
	if err != nil {
		return nil, err
	}

	if !probe.IsAvailable() {
		logger.Warn("active window probe reports it cannot run here; every poll will be skipped",
			zap.String("probe", probe.Name()),
			zap.String("display_server", DetectDisplayServer()))
	}

	return window.Safe(probe, logger), nil
}

func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
