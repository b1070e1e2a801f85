package reactor

import (
	"errors"
	"net"
)

// Listener owns the listening socket producers connect to.
type Listener struct {
	ln net.Listener
}

// Bind listens on addr, e.g. ":9050". A port that is taken or privileged
// yields a KindSetup error.
func Bind(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, &Error{Kind: KindSetup, Op: "bind " + addr, Err: err}
	}
	return &Listener{ln: ln}, nil
}

// Accept waits for the next producer. Failures are KindAccept errors and
// may be retried, except net.ErrClosed which is returned as is once the
// listener has been closed.
func (l *Listener) Accept() (net.Conn, error) {
	c, err := l.ln.Accept()
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, net.ErrClosed
		}
		return nil, &Error{Kind: KindAccept, Op: "accept", Err: err}
	}
	return c, nil
}

func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

func (l *Listener) Close() error { return l.ln.Close() }
