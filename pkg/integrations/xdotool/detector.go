package xdotool

import (
	"os/exec"

	"go.uber.org/zap"

	"github.com/actionsum/focustime/pkg/integrations/common"
)

// Detector implements window.Probe by shelling out to xdotool
type Detector struct {
	hasXdotool bool
	run        func(name string, args ...string) ([]byte, error)
	logger     *zap.Logger
}

// NewDetector creates a new xdotool detector
func NewDetector(logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Detector{
		run:    output,
		logger: logger,
	}
	d.hasXdotool = d.commandExists("xdotool")
	return d
}

func output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

// commandExists checks if a command is available in PATH
func (d *Detector) commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}

// IsAvailable checks if xdotool is installed
func (d *Detector) IsAvailable() bool {
	return d.hasXdotool
}

// Name returns "xdotool"
func (d *Detector) Name() string {
	return common.BackendXdotool
}

// ActiveTitle asks xdotool for the name of the active window
func (d *Detector) ActiveTitle() (string, bool) {
	if !d.hasXdotool {
		return "", false
	}

	out, err := d.run("xdotool", "getactivewindow", "getwindowname")
	if err != nil {
		d.logger.Debug("xdotool failed", zap.Error(err))
		return "", false
	}

	return common.CleanTitle(common.DecodeUTF8(out))
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}
