package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
)

// ErrAlreadyRunning is returned by Acquire when another tracker holds the PID file
var ErrAlreadyRunning = errors.New("focustime is already running")

// ErrInvalidPID is returned by ReadPID when the file does not hold a positive PID
var ErrInvalidPID = errors.New("invalid PID in file")

// Daemon guards against two trackers printing to the same session
type Daemon struct {
	pidFile string
}

func New(pidFile string) *Daemon {
	return &Daemon{pidFile: pidFile}
}

// PIDFile returns the guarded path
func (d *Daemon) PIDFile() string {
	return d.pidFile
}

func (d *Daemon) WritePID() error {
	pid := os.Getpid()
	if err := os.WriteFile(d.pidFile, fmt.Appendf([]byte{}, "%d", pid), 0644); err != nil {
		return errors.Wrap(err, "failed to write PID file")
	}
	return nil
}

func (d *Daemon) ReadPID() (int, error) {
	data, err := os.ReadFile(d.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to read PID file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidPID, "%s: %v", d.pidFile, err)
	}
	if pid <= 0 {
		return 0, errors.Wrapf(ErrInvalidPID, "%s: %d", d.pidFile, pid)
	}

	return pid, nil
}

func (d *Daemon) RemovePID() error {
	if err := os.Remove(d.pidFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove PID file")
	}
	return nil
}

// IsRunning reports whether the PID in the file belongs to a live process.
// A stale or unreadable PID is removed.
func (d *Daemon) IsRunning() (bool, int, error) {
	pid, err := d.ReadPID()
	if errors.Is(err, ErrInvalidPID) {
		return false, 0, d.RemovePID()
	}
	if err != nil {
		return false, 0, err
	}

	if pid == 0 {
		return false, 0, nil
	}

	if pid == os.Getpid() {
		return true, pid, nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, 0, nil
	}

	if err := process.Signal(syscall.Signal(0)); err != nil {
		_ = d.RemovePID()
		return false, 0, nil
	}

	return true, pid, nil
}

// Acquire claims the PID file for this process
func (d *Daemon) Acquire() error {
	running, pid, err := d.IsRunning()
	if err != nil {
		return err
	}
	if running && pid != os.Getpid() {
		return errors.Wrapf(ErrAlreadyRunning, "PID %d holds %s", pid, d.pidFile)
	}
	return d.WritePID()
}

// Release removes the PID file if this process owns it
func (d *Daemon) Release() error {
	pid, err := d.ReadPID()
	if errors.Is(err, ErrInvalidPID) {
		return nil
	}
	if err != nil {
		return err
	}
	if pid != os.Getpid() {
		return nil
	}
	return d.RemovePID()
}
