package console

import (
	"bytes"
	"testing"
)

func TestPutcPutsWriteToSink(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf)

	if err := c.Putc('h'); err != nil {
		t.Fatal(err)
	}
	if err := c.Puts("ello"); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hello" {
		t.Fatalf("got %q, want %q", buf.String(), "hello")
	}
}

func TestGetcReadsFedByte(t *testing.T) {
	c := New(nil)
	c.Feed('x')

	b, err := c.Getc()
	if err != nil {
		t.Fatal(err)
	}
	if b != 'x' {
		t.Fatalf("got %q, want 'x'", b)
	}
}

func TestOutputBroadcastToMultipleSinks(t *testing.T) {
	var a, b bytes.Buffer
	c := New(&a)
	c.AddSink(&b)

	c.Puts("hi")

	if a.String() != "hi" || b.String() != "hi" {
		t.Fatalf("sinks = %q, %q, want both \"hi\"", a.String(), b.String())
	}
}

func TestRemoveSinkStopsReceivingOutput(t *testing.T) {
	var a, b bytes.Buffer
	c := New(&a)
	c.AddSink(&b)
	c.RemoveSink(&b)

	c.Puts("hi")

	if b.Len() != 0 {
		t.Fatalf("removed sink received output: %q", b.String())
	}
}
