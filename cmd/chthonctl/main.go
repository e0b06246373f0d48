// Command chthonctl is a terminal client for a running chthon kernel's
// console: it attaches over websocket (internal/console.Listener's raw
// byte-relay protocol), relays keystrokes and kernel output between the
// local terminal and the remote Console, and uses pkg/minicli purely for
// local command-name completion and help text — the kernel console itself
// has no line discipline, so every resolved line is forwarded byte for
// byte, the same way miniclient.Conn.Attach drives minimega's CLI loop but
// over minimega's JSON command socket instead of a raw byte stream.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/peterh/liner"
	"golang.org/x/net/websocket"

	"github.com/goranb131/chthon/pkg/klog"
	"github.com/goranb131/chthon/pkg/minicli"
	"github.com/goranb131/chthon/pkg/minipager"
)

var (
	f_addr  = flag.String("addr", "ws://127.0.0.1:9001/console", "websocket address of the chthon console")
	f_level = flag.String("level", "info", "log level: debug, info, warn, error, fatal")
)

// registerSyntax populates minicli purely for Suggest/Help — chthonctl
// never compiles or calls these locally, it only uses the registered
// patterns to drive tab completion and the `help` meta-command.
func registerSyntax() {
	patterns := []struct {
		pattern string
		short   string
	}{
		{"open <path>", "open a file, returning a descriptor"},
		{"read <fd> <size>", "read up to size bytes from a descriptor"},
		{"write <fd> <data>", "write data to a descriptor"},
		{"close <fd>", "close a descriptor"},
		{"stat <path>", "report size and type of a path"},
		{"create <path>", "create an empty file"},
		{"mkdir <path>", "create a directory"},
		{"readdir <path>", "list a directory's entries"},
		{"remove <path>", "remove a file or empty directory"},
		{"copy <src> <dst>", "copy a file, verifying the result by hash"},
		{"move <src> <dst>", "move (rename) a file"},
		{"getcwd", "print the current directory"},
		{"chdir <path>", "change the current directory"},
		{"bind <target> <source>", "bind source onto target in the namespace"},
		{"unbind <target>", "remove a namespace binding"},
		{"mount <path> <fsname>", "attach a registered filesystem at path"},
		{"fork", "create a child process"},
		{"exec <path>", "replace the running program with path"},
		{"wait", "block until a child exits, then reap it"},
		{"help [pattern]", "show help for a command"},
		{"quit", "disconnect from the console"},
	}

	for _, p := range patterns {
		h := &minicli.Handler{
			Patterns:  []string{p.pattern},
			HelpShort: p.short,
			Call:      func(*minicli.Command, chan<- minicli.Responses) {},
		}
		if err := minicli.Register(h); err != nil {
			klog.Warn("chthonctl: registering %q: %v", p.pattern, err)
		}
	}
}

func main() {
	flag.Parse()

	level, err := klog.ParseLevel(*f_level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	klog.AddLogger("stderr", os.Stderr, level, true)

	registerSyntax()

	ws, err := websocket.Dial(*f_addr, "", "http://localhost/")
	if err != nil {
		fmt.Fprintf(os.Stderr, "chthonctl: dial %s: %v\n", *f_addr, err)
		os.Exit(1)
	}
	defer ws.Close()

	done := make(chan struct{})
	go relayOutput(ws, done)

	runREPL(ws, done)
}

// relayOutput copies console bytes from the kernel straight to stdout
// until the socket closes.
func relayOutput(ws io.Reader, done chan struct{}) {
	defer close(done)

	buf := make([]byte, 1)
	for {
		if _, err := ws.Read(buf); err != nil {
			if err != io.EOF {
				klog.Error("chthonctl: console read: %v", err)
			}
			return
		}
		os.Stdout.Write(buf)
	}
}

func runREPL(ws io.Writer, done chan struct{}) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetTabCompletionStyle(liner.TabPrints)
	line.SetCompleter(func(in string) []string {
		return minicli.Suggest(in)
	})

	for {
		select {
		case <-done:
			return
		default:
		}

		input, err := line.Prompt("chthon> ")
		if err == liner.ErrPromptAborted {
			continue
		} else if err == io.EOF {
			return
		} else if err != nil {
			klog.Error("chthonctl: prompt: %v", err)
			return
		}

		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		line.AppendHistory(input)

		switch trimmed {
		case "quit":
			return
		case "help":
			minipager.DefaultPager.Page(minicli.Help(""))
			continue
		}
		if strings.HasPrefix(trimmed, "help ") {
			minipager.DefaultPager.Page(minicli.Help(strings.TrimPrefix(trimmed, "help ")))
			continue
		}

		if _, err := io.WriteString(ws, input+"\n"); err != nil {
			klog.Error("chthonctl: console write: %v", err)
			return
		}
	}
}
