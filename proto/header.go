package proto

import (
	"errors"
	"strings"
	"unicode"
)

// ErrUnbound is reported for data records that arrive on a connection whose
// content type was missing or not recognized. Such records are dropped.
var ErrUnbound = errors.New("no interpreter bound")

// ProtocolError is fatal for the connection it occurred on.
type ProtocolError struct {
	Line   string
	Reason string
}

func (e *ProtocolError) Error() string {
	if e.Reason == "" {
		return "invalid header: " + e.Line
	}
	return e.Reason
}

// SplitHeader splits a header line at its first colon. Leading whitespace is
// trimmed from the value; colons inside the value are kept.
func SplitHeader(line string) (key, value string, err error) {
	i := strings.IndexByte(line, ':')
	if i < 0 {
		return "", "", &ProtocolError{Line: line}
	}
	return line[:i], strings.TrimLeftFunc(line[i+1:], unicode.IsSpace), nil
}
