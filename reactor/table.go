package reactor

import (
	"net"
	"time"

	"poserspace/proto"
)

// ID identifies a connection for the lifetime of the process. Unlike file
// descriptors, IDs are never reused, so an event for a released connection
// can not reach a newer one.
type ID uint64

// Conn is the loop's record of one producer connection.
type Conn struct {
	ID      ID
	Remote  string
	Opened  time.Time
	Bytes   uint64
	Parser  proto.Parser
	nc      net.Conn
	counted int
	dropped int
}

// Table maps connection IDs to their state. Only the loop goroutine uses it.
type Table struct {
	last  ID
	conns map[ID]*Conn
}

func NewTable() *Table {
	return &Table{conns: make(map[ID]*Conn)}
}

// Add registers nc under a fresh ID.
func (t *Table) Add(nc net.Conn, now time.Time) *Conn {
	t.last++
	c := &Conn{ID: t.last, Opened: now, nc: nc}
	if addr := nc.RemoteAddr(); addr != nil {
		c.Remote = addr.String()
	}
	t.conns[c.ID] = c
	return c
}

// Get returns nil for IDs that were released or never added.
func (t *Table) Get(id ID) *Conn {
	return t.conns[id]
}

// Release removes the connection and closes its socket. It returns nil if
// the ID is stale, so every socket is closed exactly once.
func (t *Table) Release(id ID) *Conn {
	c, ok := t.conns[id]
	if !ok {
		return nil
	}
	delete(t.conns, id)
	c.nc.Close()
	return c
}

func (t *Table) Len() int { return len(t.conns) }

// CloseAll releases every connection.
func (t *Table) CloseAll() {
	for id := range t.conns {
		t.Release(id)
	}
}
