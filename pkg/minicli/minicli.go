// Copyright 2018-2021 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package minicli

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	log "github.com/goranb131/chthon/pkg/klog"
)

var flagsLock sync.Mutex

var trie = &patternTrie{Children: make(map[patternTrieKey]*patternTrie)}

var handlerList []*Handler
var history []string

// HistoryLen bounds how many commands History keeps; 0 or less means
// unbounded.
var HistoryLen = 10000

var firstHistoryTruncate = true

// Preprocessor runs immediately before a Command's Call, when c.Preprocess
// is set. Unset by default.
var Preprocessor func(*Command) error

// Reset clears every registered Handler and the command history.
func Reset() {
	trie = &patternTrie{Children: make(map[patternTrieKey]*patternTrie)}
	handlerList = nil
	history = nil
	firstHistoryTruncate = true
}

// MustRegister calls Register and panics on error.
func MustRegister(h *Handler) {
	if err := Register(h); err != nil {
		panic(err)
	}
}

// Register adds a Handler's patterns to the command trie.
func Register(h *Handler) error {
	if err := h.parsePatterns(); err != nil {
		return err
	}

	h.HelpShort = strings.TrimSpace(h.HelpShort)
	h.HelpLong = strings.TrimSpace(h.HelpLong)
	h.SharedPrefix = h.findPrefix()

	if err := trie.Add(h); err != nil {
		return err
	}

	handlerList = append(handlerList, h)
	return nil
}

// ProcessString compiles and runs a raw input line.
func ProcessString(input string, record bool) (<-chan Responses, error) {
	c, err := Compile(input)
	if err != nil {
		return nil, err
	}

	if c == nil {
		out := make(chan Responses)
		close(out)
		return out, nil
	}

	c.Record = record
	return ProcessCommand(c), nil
}

// ProcessCommand runs an already-compiled Command, streaming Responses back
// on the returned channel and recording it in history once Call returns.
func ProcessCommand(c *Command) <-chan Responses {
	if !c.noOp && c.Call == nil {
		log.Fatal("command %v has no callback", c)
	}

	respChan := make(chan Responses)

	go func() {
		defer close(respChan)

		if Preprocessor != nil && c.Preprocess {
			if err := Preprocessor(c); err != nil {
				respChan <- Responses{{Error: err.Error()}}
				return
			}
		}

		if !c.noOp {
			c.Call(c, respChan)
		}

		if c.Record {
			history = append(history, c.Original)

			if len(history) > HistoryLen && HistoryLen > 0 {
				if firstHistoryTruncate {
					log.Warn("history length exceeds limit, truncating to %v entries", HistoryLen)
					firstHistoryTruncate = false
				}

				history = history[len(history)-HistoryLen:]
			}
		}
	}()

	return respChan
}

// MustCompile compiles input, calling log.Fatal if it is not a valid
// command. Meant for known-good commands baked in at startup, not user
// input.
func MustCompile(input string) *Command {
	c, err := Compile(input)
	if err != nil {
		log.Fatal("%v", err)
	}

	return c
}

// MustCompilef wraps fmt.Sprintf and MustCompile.
func MustCompilef(format string, args ...interface{}) *Command {
	return MustCompile(fmt.Sprintf(format, args...))
}

// Compile parses input against the registered patterns, returning the
// matched Command or an error if no pattern (or more than one, ambiguously)
// matches.
func Compile(input string) (*Command, error) {
	input = strings.TrimSpace(input)
	if len(input) == 0 {
		return nil, nil
	}

	if strings.HasPrefix(input, CommentLeader) {
		return &Command{Original: input, noOp: true}, nil
	}

	in, err := lexInput(input)
	if err != nil {
		return nil, err
	}

	cmd := trie.compile(in.items)
	if cmd == nil {
		return nil, fmt.Errorf("invalid command: `%s`", input)
	}
	cmd.Original = input

	return cmd, nil
}

// Compilef wraps fmt.Sprintf and Compile.
func Compilef(format string, args ...interface{}) (*Command, error) {
	return Compile(fmt.Sprintf(format, args...))
}

// suggest aggregates every Handler's completion candidates for input.
func suggest(raw string, input *Input) []string {
	vals := map[string]bool{}
	for _, h := range handlerList {
		for _, v := range h.suggest(raw, input) {
			vals[v] = true
		}
	}

	res := make([]string, 0, len(vals))
	for k := range vals {
		res = append(res, k)
	}
	return res
}

// Suggest returns tab-completion candidates for a partial input line.
func Suggest(input string) []string {
	in, err := lexInput(input)
	if err != nil {
		return nil
	}

	return suggest(input, in)
}

// Help returns help text for a command prefix, or a listing of every
// registered command if input is empty. Otherwise it lists the commands
// whose prefix starts with input, or reports that there is no help entry
// when none does.
func Help(input string) string {
	groups := make(map[string][]*Handler)
	for _, h := range handlerList {
		groups[h.SharedPrefix] = append(groups[h.SharedPrefix], h)
	}

	if group, ok := groups[input]; input != "" && ok {
		if len(group) == 1 {
			return group[0].helpLong()
		}

		count := 0
		for _, v := range group {
			if len(v.HelpLong) > 0 {
				count++
			}
		}
		if count == 1 {
			merged := &Handler{}
			for _, v := range group {
				merged.Patterns = append(merged.Patterns, v.Patterns...)
				if len(v.HelpLong) > 0 {
					merged.HelpLong = v.HelpLong
				}
			}
			merged.parsePatterns()
			return merged.helpLong()
		}

		short := map[string]string{}
		for _, h := range group {
			for _, pattern := range h.Patterns {
				short[pattern] = h.helpShort()
			}
		}
		return printHelpShort(short)
	}

	var matches []string
	for prefix := range groups {
		if strings.HasPrefix(prefix, input) {
			matches = append(matches, prefix)
		}
	}

	if len(matches) == 0 {
		return fmt.Sprintf("no help entry for `%s`", input)
	} else if len(matches) == 1 && len(groups[matches[0]]) == 1 {
		return groups[matches[0]][0].helpLong()
	}

	short := map[string]string{}
	for _, prefix := range matches {
		group := groups[prefix]
		if len(group) == 1 {
			short[prefix] = group[0].helpShort()
		} else {
			for _, h := range group {
				for _, pattern := range h.Patterns {
					short[pattern] = h.helpShort()
				}
			}
		}
	}

	return printHelpShort(short)
}

// History returns every recorded command, newline-separated.
func History() string {
	return strings.Join(history, "\n")
}

// ClearHistory discards recorded command history.
func ClearHistory() {
	history = make([]string, 0)
}

// Doc renders every registered Handler as JSON.
func Doc() (string, error) {
	b, err := json.Marshal(handlerList)
	return string(b), err
}
