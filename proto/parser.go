package proto

import (
	"strings"

	"golang.org/x/text/encoding"
)

const (
	headerContentType    = "Content-type"
	headerContentCharset = "Content-charset"
)

// State is the position of a connection in the protocol.
type State uint8

const (
	Action State = iota
	Header
	Data
)

func (s State) String() string {
	switch s {
	case Action:
		return "action"
	case Header:
		return "header"
	default:
		return "data"
	}
}

// Sink receives the tab-split fields of every data record on a bound
// connection.
type Sink interface {
	Consume(kind Kind, fields []string)
}

// Parser is the per-connection protocol state machine. The first line is
// discarded, header lines follow until an empty line, and every later line
// is a data record.
type Parser struct {
	// MaxLine caps the size of an unterminated line. Zero means no limit.
	MaxLine int
	// OnHeader, if set, sees every header. used is false for headers that
	// changed nothing.
	OnHeader func(key, value string, used bool)

	framer  Framer
	state   State
	kind    Kind
	dec     *encoding.Decoder
	err     error
	records int
	dropped int
}

// State returns the current protocol state.
func (p *Parser) State() State { return p.state }

// Kind returns the bound interpreter, Unbound if none.
func (p *Parser) Kind() Kind { return p.kind }

// Records counts data records forwarded to a sink.
func (p *Parser) Records() int { return p.records }

// Dropped counts data records discarded because nothing was bound.
func (p *Parser) Dropped() int { return p.dropped }

// Err returns the fatal error that stopped the parser, if any.
func (p *Parser) Err() error { return p.err }

// Feed appends raw input and processes every complete line. A non-nil error
// is a *ProtocolError; the parser then refuses further input.
func (p *Parser) Feed(b []byte, sink Sink) error {
	if p.err != nil {
		return p.err
	}
	p.framer.Write(b)
	for {
		line, ok := p.framer.Next()
		if !ok {
			break
		}
		if err := p.handleLine(line, sink); err != nil {
			p.err = err
			return err
		}
	}
	if p.MaxLine > 0 && p.framer.Buffered() > p.MaxLine {
		p.err = &ProtocolError{Reason: "line exceeds limit"}
		return p.err
	}
	return nil
}

func (p *Parser) handleLine(line string, sink Sink) error {
	switch p.state {
	case Action:
		p.state = Header
	case Header:
		if line == "" {
			p.state = Data
			return nil
		}
		key, value, err := SplitHeader(line)
		if err != nil {
			return err
		}
		used := p.handleHeader(key, value)
		if p.OnHeader != nil {
			p.OnHeader(key, value, used)
		}
	case Data:
		if p.kind == Unbound {
			p.dropped++
			return nil
		}
		fields := strings.Split(decodeLine(p.dec, line), "\t")
		p.records++
		if sink != nil {
			sink.Consume(p.kind, fields)
		}
	}
	return nil
}

func (p *Parser) handleHeader(key, value string) bool {
	switch {
	case strings.EqualFold(key, headerContentType):
		if p.kind != Unbound {
			return false
		}
		k, ok := LookupKind(value)
		if !ok {
			return false
		}
		p.kind = k
		return true
	case strings.EqualFold(key, headerContentCharset):
		enc, ok := Charset(value)
		if !ok {
			return false
		}
		p.dec = nil
		if enc != nil {
			p.dec = enc.NewDecoder()
		}
		return true
	}
	return false
}
