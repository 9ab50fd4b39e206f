package x11

import (
	"encoding/binary"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/actionsum/focustime/pkg/integrations/common"
)

// maxTitleLength is the GetProperty length in 32-bit units (1 KiB of title).
const maxTitleLength = 256

// maxAncestors bounds the walk from the focus window up to its top-level frame.
const maxAncestors = 16

var atomNames = []string{
	"_NET_ACTIVE_WINDOW",
	"_NET_WM_NAME",
	"WM_NAME",
	"UTF8_STRING",
}

// Detector implements window.Probe over the X11 wire protocol
type Detector struct {
	mu     sync.Mutex
	client *client
	dial   func() (*xgb.Conn, error)
	logger *zap.Logger
}

// NewDetector creates a new X11 detector. The display connection is opened on first use.
func NewDetector(logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{
		dial:   xgb.NewConn,
		logger: logger,
	}
}

// IsAvailable checks if an X display is configured
func (d *Detector) IsAvailable() bool {
	return os.Getenv("DISPLAY") != ""
}

// Name returns "x11"
func (d *Detector) Name() string {
	return common.BackendX11
}

// ActiveTitle returns the title of the window holding input focus.
func (d *Detector) ActiveTitle() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		c, err := d.connect()
		if err != nil {
			d.logger.Debug("x11 connect failed", zap.Error(err))
			return "", false
		}
		d.client = c
	}

	title, err := d.client.activeTitle()
	if err != nil {
		// A protocol error (BadWindow from a window closed mid-query) leaves
		// the connection usable; anything else means the display went away.
		if _, protocol := errors.Cause(err).(xgb.Error); protocol {
			d.logger.Debug("x11 query failed", zap.Error(err))
			return "", false
		}
		d.logger.Debug("x11 connection lost", zap.Error(err))
		d.client.close()
		d.client = nil
		return "", false
	}

	return common.CleanTitle(title)
}

// Close closes the display connection if one is open
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client != nil {
		d.client.close()
		d.client = nil
	}
	return nil
}

func (d *Detector) connect() (*client, error) {
	conn, err := d.dial()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open X display")
	}

	c, err := newClient(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

type client struct {
	conn  *xgb.Conn
	root  xproto.Window
	atoms map[string]xproto.Atom
}

func newClient(conn *xgb.Conn) (*client, error) {
	setup := xproto.Setup(conn)
	if setup == nil {
		return nil, errors.New("X server returned no setup information")
	}

	c := &client{
		conn:  conn,
		root:  setup.DefaultScreen(conn).Root,
		atoms: make(map[string]xproto.Atom, len(atomNames)),
	}

	for _, name := range atomNames {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to intern atom %s", name)
		}
		c.atoms[name] = reply.Atom
	}

	return c, nil
}

func (c *client) close() {
	c.conn.Close()
}

func (c *client) getProperty(w xproto.Window, atom, atomType xproto.Atom, length uint32) ([]byte, error) {
	reply, err := xproto.GetProperty(c.conn, false, w, atom, atomType, 0, length).Reply()
	if err != nil {
		return nil, err
	}
	return reply.Value, nil
}

// activeTitle resolves the focused window and reads its name. An empty
// title with a nil error means nothing is focused.
func (c *client) activeTitle() (string, error) {
	if w := c.activeFromProperty(); w != 0 {
		if title, err := c.namedAncestor(w); err != nil || title != "" {
			return title, err
		}
	}

	focus, err := c.inputFocus()
	if err != nil {
		return "", err
	}
	if focus == 0 {
		return "", nil
	}
	return c.namedAncestor(focus)
}

// activeFromProperty reads the EWMH _NET_ACTIVE_WINDOW hint from the root window.
func (c *client) activeFromProperty() xproto.Window {
	data, err := c.getProperty(c.root, c.atoms["_NET_ACTIVE_WINDOW"], xproto.AtomWindow, 1)
	if err != nil {
		return 0
	}
	return windowFromBytes(data)
}

func (c *client) inputFocus() (xproto.Window, error) {
	reply, err := xproto.GetInputFocus(c.conn).Reply()
	if err != nil {
		return 0, errors.Wrap(err, "GetInputFocus failed")
	}
	// None and PointerRoot are not windows.
	if reply.Focus <= xproto.InputFocusPointerRoot || reply.Focus == c.root {
		return 0, nil
	}
	return reply.Focus, nil
}

// namedAncestor walks from w towards the root and returns the first name found.
// Focus often lands on a child of the client window that carries no name.
func (c *client) namedAncestor(w xproto.Window) (string, error) {
	for i := 0; i < maxAncestors && w != 0 && w != c.root; i++ {
		if title := c.windowName(w); title != "" {
			return title, nil
		}

		reply, err := xproto.QueryTree(c.conn, w).Reply()
		if err != nil {
			return "", errors.Wrap(err, "QueryTree failed")
		}
		w = reply.Parent
	}
	return "", nil
}

func (c *client) windowName(w xproto.Window) string {
	data, err := c.getProperty(w, c.atoms["_NET_WM_NAME"], c.atoms["UTF8_STRING"], maxTitleLength)
	if err == nil && len(data) > 0 {
		return common.DecodeUTF8(data)
	}

	data, err = c.getProperty(w, c.atoms["WM_NAME"], xproto.AtomString, maxTitleLength)
	if err == nil && len(data) > 0 {
		return common.DecodeLatin1(data)
	}

	return ""
}

func windowFromBytes(data []byte) xproto.Window {
	if len(data) < 4 {
		return 0
	}
	return xproto.Window(binary.LittleEndian.Uint32(data))
}
