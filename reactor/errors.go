package reactor

import "fmt"

// ErrorKind says how far an error reaches: setup errors stop the process,
// accept errors are retried, the rest only affect one connection.
type ErrorKind uint8

const (
	KindSetup ErrorKind = iota
	KindAccept
	KindRead
	KindProtocol
	KindUnbound
)

func (k ErrorKind) String() string {
	switch k {
	case KindSetup:
		return "setup"
	case KindAccept:
		return "accept"
	case KindRead:
		return "read"
	case KindProtocol:
		return "protocol"
	case KindUnbound:
		return "unbound"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Fatal reports whether the kind ends the loop rather than one connection.
func (k ErrorKind) Fatal() bool { return k == KindSetup }

type Error struct {
	Kind ErrorKind
	Conn ID
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Conn != 0 {
		return fmt.Sprintf("%s: conn %d: %v", e.Kind, e.Conn, e.Err)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
