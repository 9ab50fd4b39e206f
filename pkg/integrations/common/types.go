package common

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Backend identifiers reported by Probe.Name
const (
	BackendX11     = "x11"
	BackendXdotool = "xdotool"
	BackendWayland = "wayland"
	BackendWin32   = "win32"
	BackendMacOS   = "macos"
	BackendHybrid  = "hybrid"
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// DecodeUTF8 returns b as a string with every invalid sequence replaced by U+FFFD.
func DecodeUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return decode(unicode.UTF8.NewDecoder(), b)
}

// DecodeLatin1 decodes an ICCCM STRING property (ISO 8859-1).
func DecodeLatin1(b []byte) string {
	return decode(charmap.ISO8859_1.NewDecoder(), b)
}

// DecodeUTF16 decodes little-endian UTF-16 code units. Lone surrogates become U+FFFD.
func DecodeUTF16(units []uint16) string {
	b := make([]byte, 0, len(units)*2)
	for _, u := range units {
		b = append(b, byte(u), byte(u>>8))
	}
	return decode(utf16LE.NewDecoder(), b)
}

func decode(dec *encoding.Decoder, b []byte) string {
	out, err := dec.Bytes(b)
	if err != nil {
		// Decoders replace malformed input; an error here means a transformer
		// failure, so fall back to a byte-level scrub.
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}

// CleanTitle trims NUL padding and surrounding whitespace from a raw title.
// The second result is false when nothing is left.
func CleanTitle(s string) (string, bool) {
	s = strings.TrimRight(s, "\x00")
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}
