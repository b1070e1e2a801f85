package proto

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// charsets lists the legacy encodings a producer may announce with a
// Content-charset header. UTF-8 needs no decoder.
var charsets = map[string]encoding.Encoding{
	"macintosh":    charmap.Macintosh,
	"macroman":     charmap.Macintosh,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"iso-8859-15":  charmap.ISO8859_15,
	"windows-1252": charmap.Windows1252,
}

// Charset looks up an encoding by name. UTF-8 reports a nil encoding and true.
func Charset(name string) (encoding.Encoding, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "utf-8", "utf8":
		return nil, true
	}
	enc, ok := charsets[name]
	return enc, ok
}

func decodeLine(dec *encoding.Decoder, line string) string {
	if dec == nil {
		return line
	}
	s, err := dec.String(line)
	if err != nil {
		return line
	}
	return s
}
