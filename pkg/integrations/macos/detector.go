package macos

import (
	"os/exec"

	"go.uber.org/zap"

	"github.com/actionsum/focustime/pkg/integrations/common"
)

// frontmostScript prints the owner name of the frontmost application window.
const frontmostScript = `tell application "System Events" to get name of first application process whose frontmost is true`

// Detector implements window.Probe for macOS through osascript
type Detector struct {
	hasOsascript bool
	run          func(name string, args ...string) ([]byte, error)
	logger       *zap.Logger
}

// NewDetector creates a new macOS detector
func NewDetector(logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	_, err := exec.LookPath("osascript")
	return &Detector{
		hasOsascript: err == nil,
		run: func(name string, args ...string) ([]byte, error) {
			return exec.Command(name, args...).Output()
		},
		logger: logger,
	}
}

// IsAvailable checks if osascript is installed
func (d *Detector) IsAvailable() bool {
	return d.hasOsascript
}

// Name returns "macos"
func (d *Detector) Name() string {
	return common.BackendMacOS
}

// ActiveTitle returns the owner name of the frontmost window. Window titles
// need the screen-recording permission, owner names do not.
func (d *Detector) ActiveTitle() (string, bool) {
	if !d.hasOsascript {
		return "", false
	}

	out, err := d.run("osascript", "-e", frontmostScript)
	if err != nil {
		d.logger.Debug("osascript failed", zap.Error(err))
		return "", false
	}

	return common.CleanTitle(common.DecodeUTF8(out))
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}
