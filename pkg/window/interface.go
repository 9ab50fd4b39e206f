package window

// Probe is the interface that all active-window backends must satisfy
type Probe interface {
	// ActiveTitle returns the title of the currently focused top-level window.
	// ok is false when nothing could be observed: no focused window, a failed
	// OS call, or a title that is empty after decoding.
	ActiveTitle() (title string, ok bool)

	// IsAvailable checks if this probe can run on the current system
	IsAvailable() bool

	// Name returns the backend identifier ("x11", "xdotool", "win32", "macos", "none")
	Name() string

	// Close cleans up any resources used by the probe
	Close() error
}
