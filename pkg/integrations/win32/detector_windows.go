//go:build windows

package win32

import (
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/actionsum/focustime/pkg/integrations/common"
)

// titleBufferLength is the GetWindowTextW buffer size in UTF-16 code units.
const titleBufferLength = 512

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procGetWindowTextW      = user32.NewProc("GetWindowTextW")
)

// Detector implements window.Probe for Windows
type Detector struct {
	logger *zap.Logger
}

// NewDetector creates a new Windows detector
func NewDetector(logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{logger: logger}
}

// IsAvailable checks if user32.dll exports the calls we need
func (d *Detector) IsAvailable() bool {
	return procGetForegroundWindow.Find() == nil && procGetWindowTextW.Find() == nil
}

// Name returns "win32"
func (d *Detector) Name() string {
	return common.BackendWin32
}

// ActiveTitle returns the title of the foreground window
func (d *Detector) ActiveTitle() (string, bool) {
	if !d.IsAvailable() {
		return "", false
	}

	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return "", false
	}

	var buf [titleBufferLength]uint16
	n, _, err := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if n == 0 {
		d.logger.Debug("GetWindowTextW returned no text", zap.Error(err))
		return "", false
	}
	if int(n) > len(buf) {
		n = uintptr(len(buf))
	}

	return common.CleanTitle(common.DecodeUTF16(buf[:n]))
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}
