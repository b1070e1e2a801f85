package proto

import (
	"errors"
	"reflect"
	"testing"
)

type record struct {
	kind   Kind
	fields []string
}

type recordSink struct {
	records []record
}

func (s *recordSink) Consume(kind Kind, fields []string) {
	s.records = append(s.records, record{kind, fields})
}

func TestSplitHeader(t *testing.T) {
	cases := []struct {
		line, key, value string
	}{
		{"Content-type: x-poserspace/geo", "Content-type", "x-poserspace/geo"},
		{"Key:value", "Key", "value"},
		{"Key: \t spaced trailing ", "Key", "spaced trailing "},
		{"Url: http://host:9050/x", "Url", "http://host:9050/x"},
		{": empty key", "", "empty key"},
		{"Empty:", "Empty", ""},
	}
	for _, tt := range cases {
		key, value, err := SplitHeader(tt.line)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tt.line, err)
		}
		if key != tt.key || value != tt.value {
			t.Errorf("%q: got %q => %q", tt.line, key, value)
		}
	}
}

func TestSplitHeaderNoColon(t *testing.T) {
	_, _, err := SplitHeader("garbage")
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if pe.Line != "garbage" || pe.Error() != "invalid header: garbage" {
		t.Fatalf("unexpected error %#v", pe)
	}
}

func TestParserGeoScenario(t *testing.T) {
	var p Parser
	var sink recordSink
	if err := p.Feed([]byte("X\r\nContent-type: x-poserspace/geo\r\n\r\n-10.0\t20.0\n"), &sink); err != nil {
		t.Fatalf("feed: %v", err)
	}
	if p.State() != Data || p.Kind() != Geo {
		t.Fatalf("state=%v kind=%v", p.State(), p.Kind())
	}
	want := []record{{Geo, []string{"-10.0", "20.0"}}}
	if !reflect.DeepEqual(sink.records, want) {
		t.Fatalf("got records %#v", sink.records)
	}
}

func TestParserStatesAdvance(t *testing.T) {
	var p Parser
	var sink recordSink
	steps := []struct {
		input string
		state State
	}{
		{"", Action},
		{"ACTION", Action},
		{"\n", Header},
		{"Content-type: x-poserspace/text\n", Header},
		{"\n", Data},
		{"hello\n", Data},
		{"\n", Data},
	}
	for _, s := range steps {
		if err := p.Feed([]byte(s.input), &sink); err != nil {
			t.Fatalf("feed %q: %v", s.input, err)
		}
		if p.State() != s.state {
			t.Fatalf("after %q: state %v want %v", s.input, p.State(), s.state)
		}
	}
	if len(sink.records) != 2 || sink.records[1].fields[0] != "" {
		t.Fatalf("got records %#v", sink.records)
	}
}

func TestParserUnboundDropsRecords(t *testing.T) {
	var p Parser
	var sink recordSink
	if err := p.Feed([]byte("X\n\nhello\tworld\n"), &sink); err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("unbound records forwarded: %#v", sink.records)
	}
	if p.Dropped() != 1 || p.Records() != 0 {
		t.Fatalf("dropped=%d records=%d", p.Dropped(), p.Records())
	}
}

func TestParserUnknownContentType(t *testing.T) {
	var p Parser
	var seen []string
	p.OnHeader = func(key, value string, used bool) {
		if !used {
			seen = append(seen, key+"="+value)
		}
	}
	var sink recordSink
	in := "X\nContent-type: x-poserspace/video\nX-Producer: feed\n\na\tb\n"
	if err := p.Feed([]byte(in), &sink); err != nil {
		t.Fatalf("feed: %v", err)
	}
	if p.Kind() != Unbound || len(sink.records) != 0 || p.Dropped() != 1 {
		t.Fatalf("kind=%v records=%d dropped=%d", p.Kind(), len(sink.records), p.Dropped())
	}
	want := []string{"Content-type=x-poserspace/video", "X-Producer=feed"}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("ignored headers %#v", seen)
	}
}

func TestParserBindsOnce(t *testing.T) {
	var p Parser
	in := "X\nContent-type: x-poserspace/geo\nContent-type: x-poserspace/text\n\n1\t2\n"
	var sink recordSink
	if err := p.Feed([]byte(in), &sink); err != nil {
		t.Fatalf("feed: %v", err)
	}
	if p.Kind() != Geo {
		t.Fatalf("rebinding changed kind to %v", p.Kind())
	}
}

func TestParserHeaderWithoutColonIsFatal(t *testing.T) {
	var p Parser
	var sink recordSink
	err := p.Feed([]byte("X\nContent-type x-poserspace/geo\n\n1\t2\n"), &sink)
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("records after fatal error: %#v", sink.records)
	}
	if err2 := p.Feed([]byte("3\t4\n"), &sink); err2 != err {
		t.Fatalf("parser accepted input after fatal error: %v", err2)
	}
	if p.Err() != err {
		t.Fatalf("Err() = %v", p.Err())
	}
}

func TestParserIsolation(t *testing.T) {
	var good, bad Parser
	var sink recordSink
	if err := good.Feed([]byte("X\nContent-type: x-poserspace/geo\n"), &sink); err != nil {
		t.Fatalf("feed good: %v", err)
	}
	if err := bad.Feed([]byte("X\nbroken\n"), &sink); err == nil {
		t.Fatalf("expected error")
	}
	if err := good.Feed([]byte("\n5\t6\n"), &sink); err != nil {
		t.Fatalf("good parser affected: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("got records %#v", sink.records)
	}
}

func TestParserByteByByte(t *testing.T) {
	in := []byte("X\r\nContent-type: x-poserspace/text\r\n\r\nalpha\tbeta\r\ngamma\n")
	var whole, split Parser
	var a, b recordSink
	if err := whole.Feed(in, &a); err != nil {
		t.Fatalf("feed: %v", err)
	}
	for i := range in {
		if err := split.Feed(in[i:i+1], &b); err != nil {
			t.Fatalf("feed byte %d: %v", i, err)
		}
	}
	if !reflect.DeepEqual(a.records, b.records) {
		t.Fatalf("whole %#v split %#v", a.records, b.records)
	}
}

func TestParserCharset(t *testing.T) {
	var p Parser
	var sink recordSink
	in := append([]byte("X\nContent-type: x-poserspace/text\nContent-charset: macintosh\n\nK"), 0x8a, 't', '\n')
	if err := p.Feed(in, &sink); err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(sink.records) != 1 || sink.records[0].fields[0] != "Kät" {
		t.Fatalf("got records %#v", sink.records)
	}

	var q Parser
	sink.records = nil
	in = append([]byte("X\nContent-type: x-poserspace/text\nContent-charset: latin1\n\ncaf"), 0xe9, '\t', 'x', '\n')
	if err := q.Feed(in, &sink); err != nil {
		t.Fatalf("feed: %v", err)
	}
	if len(sink.records) != 1 || sink.records[0].fields[0] != "café" {
		t.Fatalf("got records %#v", sink.records)
	}
}

func TestParserUnknownCharsetIgnored(t *testing.T) {
	var p Parser
	used := true
	p.OnHeader = func(key, value string, u bool) {
		if key == "Content-charset" {
			used = u
		}
	}
	var sink recordSink
	if err := p.Feed([]byte("X\nContent-charset: ebcdic\nContent-type: x-poserspace/text\n\nhi\n"), &sink); err != nil {
		t.Fatalf("feed: %v", err)
	}
	if used {
		t.Fatalf("unknown charset reported as used")
	}
	if len(sink.records) != 1 || sink.records[0].fields[0] != "hi" {
		t.Fatalf("got records %#v", sink.records)
	}
}

func TestParserMaxLine(t *testing.T) {
	p := Parser{MaxLine: 8}
	var sink recordSink
	if err := p.Feed([]byte("X\n0123456"), &sink); err != nil {
		t.Fatalf("feed: %v", err)
	}
	err := p.Feed([]byte("789"), &sink)
	var pe *ProtocolError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ProtocolError, got %v", err)
	}
}

func TestContentTypeRoundTrip(t *testing.T) {
	for _, k := range []Kind{Geo, Text} {
		got, ok := LookupKind(ContentType(k))
		if !ok || got != k {
			t.Errorf("%v: got %v %v", k, got, ok)
		}
	}
	if ContentType(Unbound) != "" {
		t.Errorf("unbound has a content type")
	}
}
