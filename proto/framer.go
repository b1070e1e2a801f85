package proto

import "bytes"

// Framer accumulates raw input and splits it on line feeds. A carriage
// return directly before the line feed is dropped. Bytes after the last line
// feed stay buffered until more input arrives, so the output does not depend
// on how the stream was chunked.
type Framer struct {
	buf []byte
	off int
}

// Write appends p to the pending input.
func (f *Framer) Write(p []byte) {
	if f.off > 0 {
		n := copy(f.buf, f.buf[f.off:])
		f.buf = f.buf[:n]
		f.off = 0
	}
	f.buf = append(f.buf, p...)
}

// Next returns the next complete line, or false if only a partial line
// (or nothing) is buffered.
func (f *Framer) Next() (string, bool) {
	pending := f.buf[f.off:]
	i := bytes.IndexByte(pending, '\n')
	if i < 0 {
		return "", false
	}
	end := i
	if end > 0 && pending[end-1] == '\r' {
		end--
	}
	line := string(pending[:end])
	f.off += i + 1
	if f.off == len(f.buf) {
		f.buf = f.buf[:0]
		f.off = 0
	}
	return line, true
}

// Buffered reports how many bytes of an incomplete line are held.
func (f *Framer) Buffered() int {
	return len(f.buf) - f.off
}
