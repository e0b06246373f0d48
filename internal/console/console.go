// Package console implements the byte-level console service the original
// kernel's uart_putc/uart_getc/uart_puts calls go through. It has no line
// discipline: PUTC/PUTS write raw bytes, GETC blocks for exactly one. A
// Console fans output out to every attached sink (the local terminal plus
// any remote websocket viewers) and serves input from a single shared
// queue, so at most one reader ever claims a given typed byte regardless
// of which attached terminal it arrived on.
package console

import (
	"io"
	"sync"
)

// Console is the kernel-wide UART stand-in.
type Console struct {
	outMu sync.Mutex
	sinks map[io.Writer]struct{}

	in chan byte
}

// New returns a Console whose output is written to local (typically
// os.Stdout) in addition to any sink later attached with AddSink.
func New(local io.Writer) *Console {
	c := &Console{
		sinks: make(map[io.Writer]struct{}),
		in:    make(chan byte, 256),
	}
	if local != nil {
		c.sinks[local] = struct{}{}
	}
	return c
}

// AddSink attaches w as an additional output destination; every future
// Putc/Puts writes to it too.
func (c *Console) AddSink(w io.Writer) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	c.sinks[w] = struct{}{}
}

// RemoveSink detaches a previously attached sink.
func (c *Console) RemoveSink(w io.Writer) {
	c.outMu.Lock()
	defer c.outMu.Unlock()
	delete(c.sinks, w)
}

// Putc writes a single byte to every attached sink.
func (c *Console) Putc(b byte) error {
	return c.write([]byte{b})
}

// Puts writes s verbatim to every attached sink, with no added newline
// (matching uart_puts, which never appends one on its own).
func (c *Console) Puts(s string) error {
	return c.write([]byte(s))
}

func (c *Console) write(p []byte) error {
	c.outMu.Lock()
	defer c.outMu.Unlock()

	var firstErr error
	for w := range c.sinks {
		if _, err := w.Write(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Feed pushes one byte of input into the shared queue Getc drains,
// called by whatever is relaying keystrokes in: a local stdin reader, or
// Listener on behalf of a remote client.
func (c *Console) Feed(b byte) {
	c.in <- b
}

// Getc blocks for exactly one byte from the shared input queue.
func (c *Console) Getc() (byte, error) {
	return <-c.in, nil
}
