// Command poserfeed streams records to a poserspace display.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"poserspace/proto"
)

func main() {
	addr := flag.String("addr", "localhost:9050", "display address")
	kind := flag.String("type", "text", "record type: geo or text")
	charset := flag.String("charset", "", "encode records in this charset and announce it")
	conns := flag.Int("conns", 4, "inputs streamed at once, one connection each")
	perSec := flag.Float64("rate", 0, "records per second per connection (0 = unlimited)")
	pcapPath := flag.String("pcap", "", "replay producer streams from a .pcap/.pcapng file")
	pcapPort := flag.Int("pcap-port", 9050, "display port the captured streams were sent to")
	realtime := flag.Bool("realtime", true, "keep the captured packet timing when replaying")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: poserfeed [flags] [file ...]\n\nWith no files, records are read from stdin.\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if *pcapPath != "" {
		if err := replayPCAP(ctx, *pcapPath, *pcapPort, *addr, *realtime); err != nil {
			log.Fatalf("poserfeed: %v", err)
		}
		return
	}

	k, err := parseKind(*kind)
	if err != nil {
		log.Fatalf("poserfeed: %v", err)
	}
	cfg := feedConfig{addr: *addr, kind: k, charset: *charset, rate: *perSec}
	if _, err := encoderFor(cfg.charset); err != nil {
		log.Fatalf("poserfeed: %v", err)
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}
	if err := feedAll(ctx, cfg, inputs, *conns); err != nil {
		log.Fatalf("poserfeed: %v", err)
	}
}

func parseKind(s string) (proto.Kind, error) {
	k, ok := proto.LookupKind("x-poserspace/" + s)
	if !ok {
		return proto.Unbound, fmt.Errorf("unknown record type %q", s)
	}
	return k, nil
}
