package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/remeh/sizedwaitgroup"
	"golang.org/x/text/encoding"
	"golang.org/x/time/rate"

	"poserspace/proto"
)

const maxRecord = 1 << 20

type feedConfig struct {
	addr    string
	kind    proto.Kind
	charset string
	// rate is records per second per connection; 0 sends as fast as the
	// display reads.
	rate float64
}

// writeHeader sends the action line, the content headers, and the blank
// line that starts the data section.
func writeHeader(w io.Writer, kind proto.Kind, charset string) error {
	var b strings.Builder
	b.WriteString("FEED poserfeed\r\n")
	fmt.Fprintf(&b, "Content-type: %s\r\n", proto.ContentType(kind))
	if charset != "" {
		fmt.Fprintf(&b, "Content-charset: %s\r\n", charset)
	}
	b.WriteString("\r\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func encoderFor(charset string) (*encoding.Encoder, error) {
	if charset == "" {
		return nil, nil
	}
	enc, ok := proto.Charset(charset)
	if !ok {
		return nil, fmt.Errorf("unknown charset %q", charset)
	}
	if enc == nil {
		return nil, nil
	}
	return encoding.ReplaceUnsupported(enc.NewEncoder()), nil
}

type feedResult struct {
	records int
	bytes   uint64
}

// feed opens one connection to the display and streams every line of r as
// a record.
func feed(ctx context.Context, cfg feedConfig, r io.Reader) (feedResult, error) {
	var res feedResult
	enc, err := encoderFor(cfg.charset)
	if err != nil {
		return res, err
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", cfg.addr)
	if err != nil {
		return res, err
	}
	defer conn.Close()

	w := bufio.NewWriter(conn)
	if err := writeHeader(w, cfg.kind, cfg.charset); err != nil {
		return res, err
	}

	lim := rate.NewLimiter(rate.Inf, 1)
	if cfg.rate > 0 {
		lim = rate.NewLimiter(rate.Limit(cfg.rate), 1)
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxRecord)
	for sc.Scan() {
		line := sc.Text()
		if enc != nil {
			if line, err = enc.String(line); err != nil {
				return res, fmt.Errorf("encode record %d: %w", res.records+1, err)
			}
		}
		if err := lim.Wait(ctx); err != nil {
			return res, err
		}
		n, err := w.WriteString(line + "\n")
		res.bytes += uint64(n)
		if err != nil {
			return res, err
		}
		res.records++
		// Paced feeds flush each record so the display sees it on time.
		if cfg.rate > 0 {
			if err := w.Flush(); err != nil {
				return res, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return res, err
	}
	return res, w.Flush()
}

func feedFile(ctx context.Context, cfg feedConfig, name string) (feedResult, error) {
	if name == "-" {
		return feed(ctx, cfg, os.Stdin)
	}
	f, err := os.Open(name)
	if err != nil {
		return feedResult{}, err
	}
	defer f.Close()
	return feed(ctx, cfg, f)
}

// feedAll streams each input over its own connection, at most conns at a
// time, and returns the first error.
func feedAll(ctx context.Context, cfg feedConfig, inputs []string, conns int) error {
	swg := sizedwaitgroup.New(max(conns, 1))
	var (
		mu       sync.Mutex
		firstErr error
	)
	for _, in := range inputs {
		if err := swg.AddWithContext(ctx); err != nil {
			break
		}
		go func(in string) {
			defer swg.Done()
			start := time.Now()
			res, err := feedFile(ctx, cfg, in)
			took := durafmt.Parse(time.Since(start).Round(time.Millisecond)).LimitFirstN(2)
			if err != nil {
				log.Printf("poserfeed: %s: %v after %s records", in, err, humanize.Comma(int64(res.records)))
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", in, err)
				}
				mu.Unlock()
				return
			}
			log.Printf("poserfeed: %s: sent %s %s records (%s) in %s",
				in, humanize.Comma(int64(res.records)), cfg.kind, humanize.Bytes(res.bytes), took)
		}(in)
	}
	swg.Wait()
	if firstErr == nil {
		firstErr = ctx.Err()
	}
	return firstErr
}
