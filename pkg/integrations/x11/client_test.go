package x11

import (
	"encoding/binary"
	"os"
	"testing"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// newDisplayClient connects to the test display, skipping when there is none.
func newDisplayClient(t *testing.T) *client {
	t.Helper()
	if os.Getenv("DISPLAY") == "" {
		t.Skip("X11 display not available on this system")
	}

	conn, err := xgb.NewConn()
	if err != nil {
		t.Skipf("cannot open X display: %v", err)
	}

	c, err := newClient(conn)
	if err != nil {
		conn.Close()
		t.Fatalf("newClient() error: %v", err)
	}
	t.Cleanup(c.close)
	return c
}

func (c *client) createTestWindow(t *testing.T, parent xproto.Window) xproto.Window {
	t.Helper()

	wid, err := xproto.NewWindowId(c.conn)
	if err != nil {
		t.Fatalf("NewWindowId() error: %v", err)
	}
	err = xproto.CreateWindowChecked(c.conn, 0, wid, parent,
		0, 0, 1, 1, 0, xproto.WindowClassInputOutput, 0, 0, nil).Check()
	if err != nil {
		t.Fatalf("CreateWindow error: %v", err)
	}
	t.Cleanup(func() { xproto.DestroyWindow(c.conn, wid) })
	return wid
}

func (c *client) setProperty(t *testing.T, w xproto.Window, atom, atomType xproto.Atom, format byte, data []byte) {
	t.Helper()

	length := uint32(len(data)) / uint32(format/8)
	err := xproto.ChangePropertyChecked(c.conn, xproto.PropModeReplace, w, atom, atomType, format, length, data).Check()
	if err != nil {
		t.Fatalf("ChangeProperty error: %v", err)
	}
}

func TestWindowName(t *testing.T) {
	c := newDisplayClient(t)

	both := c.createTestWindow(t, c.root)
	c.setProperty(t, both, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"], 8, []byte("Café — Editor"))
	c.setProperty(t, both, c.atoms["WM_NAME"], xproto.AtomString, 8, []byte("legacy name"))

	legacy := c.createTestWindow(t, c.root)
	c.setProperty(t, legacy, c.atoms["WM_NAME"], xproto.AtomString, 8, []byte("Caf\xe9 (Latin-1)"))

	unnamed := c.createTestWindow(t, c.root)

	tests := []struct {
		name   string
		window xproto.Window
		want   string
	}{
		{"_NET_WM_NAME wins over WM_NAME", both, "Café — Editor"},
		{"WM_NAME decoded as Latin-1", legacy, "Café (Latin-1)"},
		{"No name", unnamed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.windowName(tt.window); got != tt.want {
				t.Errorf("windowName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNamedAncestor(t *testing.T) {
	c := newDisplayClient(t)

	frame := c.createTestWindow(t, c.root)
	c.setProperty(t, frame, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"], 8, []byte("Terminal"))
	child := c.createTestWindow(t, frame)
	grandchild := c.createTestWindow(t, child)

	orphan := c.createTestWindow(t, c.root)

	tests := []struct {
		name   string
		window xproto.Window
		want   string
	}{
		{"Named window itself", frame, "Terminal"},
		{"Unnamed child", child, "Terminal"},
		{"Unnamed grandchild", grandchild, "Terminal"},
		{"No named ancestor", orphan, ""},
		{"Root", c.root, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.namedAncestor(tt.window)
			if err != nil {
				t.Fatalf("namedAncestor() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("namedAncestor() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActiveTitleFromNetActiveWindow(t *testing.T) {
	c := newDisplayClient(t)

	frame := c.createTestWindow(t, c.root)
	c.setProperty(t, frame, c.atoms["WM_NAME"], xproto.AtomString, 8, []byte("Focused frame"))
	child := c.createTestWindow(t, frame)

	atom := c.atoms["_NET_ACTIVE_WINDOW"]
	saved, err := c.getProperty(c.root, atom, xproto.AtomWindow, 1)
	if err != nil {
		t.Fatalf("reading _NET_ACTIVE_WINDOW: %v", err)
	}
	t.Cleanup(func() {
		if len(saved) == 4 {
			xproto.ChangeProperty(c.conn, xproto.PropModeReplace, c.root, atom, xproto.AtomWindow, 32, 1, saved)
		} else {
			xproto.DeleteProperty(c.conn, c.root, atom)
		}
	})

	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, uint32(child))
	c.setProperty(t, c.root, atom, xproto.AtomWindow, 32, data)

	title, err := c.activeTitle()
	if err != nil {
		t.Fatalf("activeTitle() error: %v", err)
	}
	if title != "Focused frame" {
		if c.activeFromProperty() != child {
			t.Skip("window manager replaced _NET_ACTIVE_WINDOW during the test")
		}
		t.Errorf("activeTitle() = %q, want %q", title, "Focused frame")
	}
}
