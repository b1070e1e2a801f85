package reactor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"golang.org/x/time/rate"

	"poserspace/anim"
	"poserspace/proto"
)

const (
	DefaultInterval = 25 * time.Millisecond
	// DefaultMaxLine bounds an unterminated line before the connection is
	// dropped.
	DefaultMaxLine = 1 << 20

	readBufferSize = 4096
	eventQueue     = 256
)

// ErrStopped is returned by Do and Snapshot once Run has returned.
var ErrStopped = errors.New("reactor: loop stopped")

// Consumer gets a frame after every tick. It runs on the loop goroutine and
// must not block; anything slow belongs on another goroutine. Render must
// not call Do or Snapshot: the loop can not serve them while it is inside
// Render, so they wait until their ctx is done.
type Consumer interface {
	Render(f anim.Frame, st Stats)
}

type ConsumerFunc func(f anim.Frame, st Stats)

func (fn ConsumerFunc) Render(f anim.Frame, st Stats) { fn(f, st) }

type Config struct {
	Interval time.Duration
	Consumer Consumer
	MaxLine  int
	// Logf receives connection events and errors. Nil means log.Printf.
	Logf func(format string, v ...any)
	// Debugf receives header traffic. Nil discards it.
	Debugf func(format string, v ...any)
}

type eventKind uint8

const (
	evAccepted eventKind = iota
	evData
	evClosed
	evAcceptError
	evListenerClosed
)

type event struct {
	kind eventKind
	id   ID
	nc   net.Conn
	data []byte
	err  error
}

// Loop multiplexes the listener and every producer connection onto one
// goroutine, which alone touches the connection table and the world. Socket
// reads happen on helper goroutines that only forward bytes.
type Loop struct {
	ln     *Listener
	world  *anim.World
	cfg    Config
	table  *Table
	events chan event
	calls  chan func()
	done   chan struct{}
	stats  Stats
	warn   *rate.Limiter
}

func New(ln *Listener, world *anim.World, cfg Config) *Loop {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxLine == 0 {
		cfg.MaxLine = DefaultMaxLine
	}
	if cfg.Logf == nil {
		cfg.Logf = log.Printf
	}
	return &Loop{
		ln:     ln,
		world:  world,
		cfg:    cfg,
		table:  NewTable(),
		events: make(chan event, eventQueue),
		calls:  make(chan func()),
		done:   make(chan struct{}),
		warn:   rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

// Run serves connections and ticks the world until ctx is done or the
// listener fails. It closes the listener and every connection on return and
// may only be called once.
func (l *Loop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer close(l.done)
	defer l.table.CloseAll()
	defer l.ln.Close()

	go l.acceptLoop(ctx)

	next := time.Now().Add(l.cfg.Interval)
	timer := time.NewTimer(l.cfg.Interval)
	defer timer.Stop()
	for {
		timer.Reset(max(0, time.Until(next)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-l.events:
			if err := l.handle(ctx, ev); err != nil {
				return err
			}
			if err := l.drain(ctx); err != nil {
				return err
			}
		case fn := <-l.calls:
			fn()
		case <-timer.C:
		}

		// Ticks run after all queued input so they see the latest records.
		// A late tick fires once; missed ticks are not replayed.
		if now := time.Now(); !now.Before(next) {
			l.tick(now)
			next = now.Add(l.cfg.Interval)
		}
	}
}

// drain handles whatever is already queued without waiting.
func (l *Loop) drain(ctx context.Context) error {
	for i := 0; i < eventQueue; i++ {
		select {
		case ev := <-l.events:
			if err := l.handle(ctx, ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
	return nil
}

func (l *Loop) handle(ctx context.Context, ev event) error {
	switch ev.kind {
	case evAccepted:
		l.register(ctx, ev.nc)
	case evData:
		l.input(ev.id, ev.data)
	case evClosed:
		l.closed(ev.id, ev.err)
	case evAcceptError:
		l.stats.AcceptErrors++
		if l.warn.Allow() {
			l.cfg.Logf("reactor: %v", ev.err)
		}
	case evListenerClosed:
		return &Error{Kind: KindSetup, Op: "accept", Err: net.ErrClosed}
	}
	return nil
}

func (l *Loop) register(ctx context.Context, nc net.Conn) {
	c := l.table.Add(nc, time.Now())
	c.Parser.MaxLine = l.cfg.MaxLine
	if l.cfg.Debugf != nil {
		id := c.ID
		c.Parser.OnHeader = func(key, value string, used bool) {
			if used {
				l.cfg.Debugf("reactor: conn %d header %s => %s", id, key, value)
			} else {
				l.cfg.Debugf("reactor: conn %d ignored header %s => %s", id, key, value)
			}
		}
	}
	l.stats.Accepted++
	l.cfg.Logf("reactor: conn %d from %s (%d open)", c.ID, c.Remote, l.table.Len())
	go l.readLoop(ctx, c.ID, nc)
}

func (l *Loop) input(id ID, data []byte) {
	c := l.table.Get(id)
	if c == nil {
		return
	}
	c.Bytes += uint64(len(data))
	l.stats.Bytes += uint64(len(data))
	err := c.Parser.Feed(data, l.world)
	l.count(c)
	if err != nil {
		l.stats.ProtocolErrors++
		l.cfg.Logf("reactor: %v", &Error{Kind: KindProtocol, Conn: id, Err: err})
		l.release(id, "dropped")
	}
}

// count folds the parser's record counters into the loop stats.
func (l *Loop) count(c *Conn) {
	if n := c.Parser.Records() - c.counted; n > 0 {
		l.stats.addRecords(c.Parser.Kind(), n)
		c.counted += n
	}
	if n := c.Parser.Dropped() - c.dropped; n > 0 {
		l.stats.Dropped += uint64(n)
		c.dropped += n
		if l.warn.Allow() {
			l.cfg.Logf("reactor: %v", &Error{Kind: KindUnbound, Conn: c.ID, Err: fmt.Errorf("%w: %s record(s) dropped", proto.ErrUnbound, humanize.Comma(int64(n)))})
		}
	}
}

func (l *Loop) closed(id ID, err error) {
	if l.table.Get(id) == nil {
		return
	}
	if err != nil && !errors.Is(err, io.EOF) {
		l.stats.ReadErrors++
		l.cfg.Logf("reactor: %v", &Error{Kind: KindRead, Conn: id, Err: err})
		l.release(id, "failed")
		return
	}
	l.release(id, "closed")
}

func (l *Loop) release(id ID, how string) {
	c := l.table.Release(id)
	if c == nil {
		return
	}
	l.stats.Closed++
	age := durafmt.Parse(time.Since(c.Opened).Round(time.Millisecond)).LimitFirstN(2)
	l.cfg.Logf("reactor: conn %d %s %s after %s, %s read, %d %s records",
		c.ID, c.Remote, how, age, humanize.Bytes(c.Bytes), c.Parser.Records(), c.Parser.Kind())
}

func (l *Loop) tick(now time.Time) {
	f := l.world.Tick(now)
	l.stats.Ticks++
	l.stats.Open = l.table.Len()
	l.stats.Rejected = uint64(l.world.Rejected())
	if l.cfg.Consumer != nil {
		l.cfg.Consumer.Render(f, l.stats)
	}
}

func (l *Loop) send(ctx context.Context, ev event) bool {
	select {
	case l.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (l *Loop) acceptLoop(ctx context.Context) {
	var delay time.Duration
	for {
		nc, err := l.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				if ctx.Err() == nil {
					l.send(ctx, event{kind: evListenerClosed})
				}
				return
			}
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay = min(2*delay, time.Second)
			}
			if !l.send(ctx, event{kind: evAcceptError, err: err}) {
				return
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
			continue
		}
		delay = 0
		if !l.send(ctx, event{kind: evAccepted, nc: nc}) {
			nc.Close()
			return
		}
	}
}

// readLoop forwards whatever each read returns, in order. It exits after
// reporting the first read error, including the one caused by the loop
// closing the socket.
func (l *Loop) readLoop(ctx context.Context, id ID, nc net.Conn) {
	buf := make([]byte, readBufferSize)
	for {
		n, err := nc.Read(buf)
		if n > 0 {
			data := append([]byte(nil), buf[:n]...)
			if !l.send(ctx, event{kind: evData, id: id, data: data}) {
				return
			}
		}
		if err != nil {
			l.send(ctx, event{kind: evClosed, id: id, err: err})
			return
		}
	}
}

// Do runs fn on the loop goroutine, between ticks, and waits for it. It
// must not be called from Consumer.Render.
func (l *Loop) Do(ctx context.Context, fn func(w *anim.World)) error {
	ran := make(chan struct{})
	call := func() {
		fn(l.world)
		close(ran)
	}
	select {
	case l.calls <- call:
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-ran
	return nil
}

// Snapshot returns the current counters.
func (l *Loop) Snapshot(ctx context.Context) (Stats, error) {
	var st Stats
	err := l.Do(ctx, func(*anim.World) {
		st = l.stats
		st.Open = l.table.Len()
		st.Rejected = uint64(l.world.Rejected())
	})
	return st, err
}

func (l *Loop) Addr() net.Addr { return l.ln.Addr() }
