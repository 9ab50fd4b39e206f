package wayland

import (
	"encoding/json"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/focustime/pkg/integrations/common"
)

// Compositors with a focused-window query
const (
	CompositorSway     = "sway"
	CompositorHyprland = "hyprland"
	CompositorGnome    = "gnome"
	CompositorUnknown  = "unknown"
)

// Detector implements window.Probe by asking the Wayland compositor for the
// focused toplevel. X clients running under XWayland are reported too.
type Detector struct {
	compositor string
	hasTool    bool
	run        func(name string, args ...string) ([]byte, error)
	logger     *zap.Logger
}

// NewDetector detects the running compositor and its query tool
func NewDetector(logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Detector{
		run:    output,
		logger: logger,
	}
	d.compositor = d.detectCompositor(os.Getenv)
	d.hasTool = commandExists(queryTool(d.compositor))
	return d
}

func output(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).Output()
}

func commandExists(cmd string) bool {
	if cmd == "" {
		return false
	}
	_, err := exec.LookPath(cmd)
	return err == nil
}

func queryTool(compositor string) string {
	switch compositor {
	case CompositorSway:
		return "swaymsg"
	case CompositorHyprland:
		return "hyprctl"
	case CompositorGnome:
		return "gdbus"
	default:
		return ""
	}
}

// detectCompositor prefers the sockets compositors export to their clients
// and falls back to looking for the compositor process.
func (d *Detector) detectCompositor(getenv func(string) string) string {
	switch {
	case getenv("SWAYSOCK") != "":
		return CompositorSway
	case getenv("HYPRLAND_INSTANCE_SIGNATURE") != "":
		return CompositorHyprland
	case strings.Contains(strings.ToUpper(getenv("XDG_CURRENT_DESKTOP")), "GNOME"):
		return CompositorGnome
	}

	processes := []struct{ process, name string }{
		{"sway", CompositorSway},
		{"Hyprland", CompositorHyprland},
		{"gnome-shell", CompositorGnome},
	}
	for _, p := range processes {
		if _, err := d.run("pgrep", "-x", p.process); err == nil {
			return p.name
		}
	}

	return CompositorUnknown
}

// Compositor returns the detected compositor name
func (d *Detector) Compositor() string {
	return d.compositor
}

// IsAvailable reports whether the compositor's query tool is installed
func (d *Detector) IsAvailable() bool {
	return d.hasTool
}

// Name returns "wayland(<compositor>)"
func (d *Detector) Name() string {
	return common.BackendWayland + "(" + d.compositor + ")"
}

// ActiveTitle returns the title of the focused toplevel
func (d *Detector) ActiveTitle() (string, bool) {
	if !d.hasTool {
		return "", false
	}

	title, err := d.focusedTitle()
	if err != nil {
		d.logger.Debug("compositor query failed",
			zap.String("compositor", d.compositor),
			zap.Error(err))
		return "", false
	}

	return common.CleanTitle(title)
}

func (d *Detector) focusedTitle() (string, error) {
	switch d.compositor {
	case CompositorSway:
		out, err := d.run("swaymsg", "-t", "get_tree", "-r")
		if err != nil {
			return "", errors.Wrap(err, "failed to execute swaymsg")
		}
		return parseSwayTree(out)

	case CompositorHyprland:
		out, err := d.run("hyprctl", "activewindow", "-j")
		if err != nil {
			return "", errors.Wrap(err, "failed to execute hyprctl")
		}
		return parseHyprlandWindow(out)

	case CompositorGnome:
		out, err := d.run("gdbus", "call", "--session",
			"--dest", "org.gnome.Shell",
			"--object-path", "/org/gnome/Shell",
			"--method", "org.gnome.Shell.Eval",
			gnomeFocusScript)
		if err != nil {
			return "", errors.Wrap(err, "failed to execute gdbus")
		}
		return parseGnomeEval(out)

	default:
		return "", errors.Errorf("unsupported wayland compositor: %s", d.compositor)
	}
}

type swayNode struct {
	Type          string     `json:"type"`
	Name          string     `json:"name"`
	Focused       bool       `json:"focused"`
	Nodes         []swayNode `json:"nodes"`
	FloatingNodes []swayNode `json:"floating_nodes"`
}

// parseSwayTree finds the focused container in `swaymsg -t get_tree` output.
// A focused workspace or output means no window has focus.
func parseSwayTree(data []byte) (string, error) {
	var root swayNode
	if err := json.Unmarshal(data, &root); err != nil {
		return "", errors.Wrap(err, "failed to parse sway tree")
	}

	node := findFocused(&root)
	if node == nil {
		return "", errors.New("no focused node in sway tree")
	}
	if node.Type != "con" && node.Type != "floating_con" {
		return "", errors.Errorf("focused sway node is a %s", node.Type)
	}
	return node.Name, nil
}

func findFocused(n *swayNode) *swayNode {
	if n.Focused {
		return n
	}
	for _, children := range [][]swayNode{n.Nodes, n.FloatingNodes} {
		for i := range children {
			if f := findFocused(&children[i]); f != nil {
				return f
			}
		}
	}
	return nil
}

// parseHyprlandWindow reads the title from `hyprctl activewindow -j`.
// Hyprland prints {} when nothing has focus.
func parseHyprlandWindow(data []byte) (string, error) {
	var win struct {
		Class string `json:"class"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &win); err != nil {
		return "", errors.Wrap(err, "failed to parse hyprctl output")
	}
	return win.Title, nil
}

const gnomeFocusScript = `global.display.focus_window ? global.display.focus_window.get_title() : ''`

var gvariantUnescaper = strings.NewReplacer(`\\`, `\`, `\'`, `'`, `\"`, `"`)

// parseGnomeEval decodes the (success, json) tuple printed by gdbus for
// org.gnome.Shell.Eval, e.g. (true, '"Inbox - Mail"').
func parseGnomeEval(data []byte) (string, error) {
	s := strings.TrimSpace(string(data))

	if !strings.HasPrefix(s, "(true, ") {
		return "", errors.New("Shell.Eval refused (unsafe mode disabled)")
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "(true, "), ")")
	if len(s) < 2 || (s[0] != '\'' && s[0] != '"') || s[len(s)-1] != s[0] {
		return "", errors.Errorf("unexpected gdbus output: %s", s)
	}
	s = gvariantUnescaper.Replace(s[1 : len(s)-1])

	var title string
	if err := json.Unmarshal([]byte(s), &title); err != nil {
		return s, nil
	}
	return title, nil
}

// Close cleans up resources
func (d *Detector) Close() error {
	return nil
}
