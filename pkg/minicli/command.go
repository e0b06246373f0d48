// Copyright 2018-2021 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package minicli

// Output modes
const (
	defaultMode = iota
	jsonMode
	csvMode
)

const CommentLeader = "#"

// Flags controls how a Command's Responses render. Set on defaultFlags at
// startup and copied onto each compiled Command/Response.
type Flags struct {
	Annotate   bool
	Compress   bool
	Headers    bool
	Sort       bool
	Preprocess bool
	Mode       int
	Record     bool
}

var defaultFlags = Flags{
	Annotate:   true,
	Compress:   true,
	Headers:    true,
	Sort:       true,
	Preprocess: true,
	Mode:       defaultMode,
	Record:     true,
}

// Command is the result of compiling an Input against the registered
// Handlers: the matched pattern's variable bindings, plus the Handler's Call
// ready to invoke.
type Command struct {
	Pattern  string
	Original string

	StringArgs map[string]string
	BoolArgs   map[string]bool
	ListArgs   map[string][]string

	Subcommand *Command

	Call CLIFunc `json:"-"`

	Record     bool
	Preprocess bool

	// noOp marks a Command built from a comment-only line; ProcessCommand
	// skips Call but still records it in history.
	noOp bool

	// exact tracks whether every literal in the matched pattern was typed
	// in full, used to disambiguate apropos matches during compile.
	exact bool

	// Source lets callers tag where a Command originated (console input,
	// a script, a remote client); unused internally.
	Source string
}

func newCommand(call CLIFunc) *Command {
	return &Command{
		StringArgs: make(map[string]string),
		BoolArgs:   make(map[string]bool),
		ListArgs:   make(map[string][]string),
		Call:       call,
		exact:      true,
	}
}

func (c Command) String() string {
	return c.Original
}

type CLIFunc func(*Command, chan<- Responses)
type SuggestFunc func(string, string, string) []string

// Responses is the output of a single Command, one entry per responding
// host (always one entry here: chthon has no mesh of hosts to fan out to).
type Responses []*Response

// Response is a single handler's output.
type Response struct {
	Host     string
	Response string
	Header   []string
	Tabular  [][]string
	Error    string
	Data     interface{} `json:"-"`

	*Flags `json:"-"`
}
