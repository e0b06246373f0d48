package console

import (
	"io"

	"github.com/goranb131/chthon/pkg/klog"
	"golang.org/x/net/websocket"
)

// Listener exposes a Console over websocket, following the raw byte-relay
// shape of the teacher's websocket playground backend (one handler per
// accepted connection, goroutines torn down together when the peer
// disconnects) but carrying no JSON framing: a remote client just becomes
// another attached sink plus a source feeding the shared input queue.
type Listener struct {
	Console *Console
}

// NewListener returns a websocket handler relaying to c.
func NewListener(c *Console) *Listener {
	return &Listener{Console: c}
}

// Handler returns a websocket.Server ready to be mounted on an
// http.Handler, e.g. http.Handle("/console", l.Handler()).
func (l *Listener) Handler() websocket.Server {
	return websocket.Server{Handler: websocket.Handler(l.serve)}
}

func (l *Listener) serve(ws *websocket.Conn) {
	l.Console.AddSink(ws)
	defer l.Console.RemoveSink(ws)

	buf := make([]byte, 1)
	for {
		if _, err := ws.Read(buf); err != nil {
			if err != io.EOF {
				klog.Debug("console: listener: %v", err)
			}
			return
		}
		l.Console.Feed(buf[0])
	}
}
