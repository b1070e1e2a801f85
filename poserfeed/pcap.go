package main

import (
	"context"
	"io"
	"log"
	"net"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/google/gopacket/tcpassembly"
)

// maxReplayGap caps how long a replay sleeps between two captured packets.
const maxReplayGap = time.Second

// replayPCAP forwards every captured client stream sent to port over a new
// connection to addr. Streams to other ports are ignored.
func replayPCAP(ctx context.Context, path string, port int, addr string, realtime bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var source *gopacket.PacketSource
	if ng, err := pcapgo.NewNgReader(f, pcapgo.NgReaderOptions{}); err == nil {
		source = gopacket.NewPacketSource(ng, ng.LinkType())
	} else {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return err
		}
		r, err := pcapgo.NewReader(f)
		if err != nil {
			return err
		}
		source = gopacket.NewPacketSource(r, r.LinkType())
	}

	factory := &forwardFactory{
		ctx:  ctx,
		addr: addr,
		port: layers.NewTCPPortEndpoint(layers.TCPPort(port)),
	}
	pool := tcpassembly.NewStreamPool(factory)
	assembler := tcpassembly.NewAssembler(pool)
	defer assembler.FlushAll()

	var prevTS time.Time
	for {
		pkt, err := source.NextPacket()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		ts := pkt.Metadata().CaptureInfo.Timestamp
		if realtime && !prevTS.IsZero() {
			if d := min(ts.Sub(prevTS), maxReplayGap); d > 0 {
				select {
				case <-time.After(d):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
		prevTS = ts

		nl := pkt.NetworkLayer()
		if nl == nil {
			continue
		}
		if tcp, ok := pkt.TransportLayer().(*layers.TCP); ok {
			assembler.AssembleWithTimestamp(nl.NetworkFlow(), tcp, ts)
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	log.Printf("poserfeed: %s: replayed %d streams", path, factory.streams)
	return nil
}

type forwardFactory struct {
	ctx     context.Context
	addr    string
	port    gopacket.Endpoint
	streams int
}

func (f *forwardFactory) New(netFlow, tcpFlow gopacket.Flow) tcpassembly.Stream {
	if tcpFlow.Dst() != f.port {
		return discardStream{}
	}
	var d net.Dialer
	conn, err := d.DialContext(f.ctx, "tcp", f.addr)
	if err != nil {
		log.Printf("poserfeed: %v %v: %v", netFlow, tcpFlow, err)
		return discardStream{}
	}
	f.streams++
	return &forwardStream{name: netFlow.String() + " " + tcpFlow.String(), conn: conn}
}

// forwardStream writes the reassembled bytes of one captured client stream
// to its own display connection.
type forwardStream struct {
	name   string
	conn   net.Conn
	bytes  uint64
	failed bool
}

func (s *forwardStream) Reassembled(rs []tcpassembly.Reassembly) {
	for _, r := range rs {
		if s.failed {
			return
		}
		if r.Skip != 0 {
			log.Printf("poserfeed: %s: capture gap of %d bytes", s.name, r.Skip)
		}
		if len(r.Bytes) == 0 {
			continue
		}
		n, err := s.conn.Write(r.Bytes)
		s.bytes += uint64(n)
		if err != nil {
			log.Printf("poserfeed: %s: %v", s.name, err)
			s.failed = true
		}
	}
}

func (s *forwardStream) ReassemblyComplete() {
	s.conn.Close()
	log.Printf("poserfeed: %s: forwarded %s", s.name, humanize.Bytes(s.bytes))
}

type discardStream struct{}

func (discardStream) Reassembled([]tcpassembly.Reassembly) {}
func (discardStream) ReassemblyComplete()                  {}
