package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"poserspace/proto"
)

// capture writes one TCP segment per payload from src to dstPort, after a
// SYN, into a pcap file.
func capture(t *testing.T, path string, dstPort uint16, payloads ...string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		t.Fatal(err)
	}

	seq := uint32(1000)
	ts := time.Unix(1700000000, 0)
	write := func(tcp *layers.TCP, payload []byte) {
		eth := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
			DstMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 6},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ip := &layers.IPv4{
			Version:  4,
			TTL:      64,
			Protocol: layers.IPProtocolTCP,
			SrcIP:    net.IP{10, 0, 0, 1},
			DstIP:    net.IP{10, 0, 0, 2},
		}
		tcp.SrcPort = 40000
		tcp.DstPort = layers.TCPPort(dstPort)
		tcp.Window = 65535
		if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
			t.Fatal(err)
		}
		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
		if err := gopacket.SerializeLayers(buf, opts, eth, ip, tcp, gopacket.Payload(payload)); err != nil {
			t.Fatal(err)
		}
		data := buf.Bytes()
		ci := gopacket.CaptureInfo{Timestamp: ts, CaptureLength: len(data), Length: len(data)}
		if err := w.WritePacket(ci, data); err != nil {
			t.Fatal(err)
		}
	}

	write(&layers.TCP{Seq: seq, SYN: true}, nil)
	seq++
	for _, p := range payloads {
		write(&layers.TCP{Seq: seq, ACK: true, PSH: true}, []byte(p))
		seq += uint32(len(p))
	}
}

func TestReplayPCAP(t *testing.T) {
	addr, out := display(t, 1)
	path := filepath.Join(t.TempDir(), "feed.pcap")
	capture(t, path, 9050, "X\r\nContent-type: x-poserspace/geo\r\n", "\r\n-10.0\t20", ".0\n")

	if err := replayPCAP(context.Background(), path, 9050, addr, false); err != nil {
		t.Fatalf("replay: %v", err)
	}
	got := receive(t, out)
	if len(got.records) != 1 || got.records[0].kind != proto.Geo {
		t.Fatalf("records %+v", got.records)
	}
	if f := got.records[0].fields; f[0] != "-10.0" || f[1] != "20.0" {
		t.Fatalf("fields %v", f)
	}
}

func TestReplayPCAPOtherPortIgnored(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	path := filepath.Join(t.TempDir(), "other.pcap")
	capture(t, path, 80, "GET / HTTP/1.0\r\n\r\n")

	if err := replayPCAP(context.Background(), path, 9050, ln.Addr().String(), false); err != nil {
		t.Fatalf("replay: %v", err)
	}
	ln.(*net.TCPListener).SetDeadline(time.Now().Add(100 * time.Millisecond))
	if c, err := ln.Accept(); err == nil {
		c.Close()
		t.Fatalf("stream to another port was forwarded")
	}
}
