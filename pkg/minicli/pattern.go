// Copyright 2018-2021 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package minicli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	log "github.com/goranb131/chthon/pkg/klog"
)

type itemType int

const (
	optionalItem itemType = 1 << iota
	literalItem
	commandItem
	stringItem
	choiceItem
	listItem
)

var terminalsToTypes = map[string]itemType{
	">": stringItem,
	"]": stringItem | optionalItem,
	")": commandItem,
}

var requireEOLItems = listItem | commandItem | optionalItem

// PatternItem is one parsed token of a Handler pattern: a literal, a
// required or optional string, a multiple choice, or a trailing list or
// nested subcommand.
type PatternItem struct {
	Type    itemType `json:"type"`
	Key     string   `json:"key,omitempty"`
	Text    string   `json:"text,omitempty"`
	Options []string `json:"options,omitempty"`
}

type PatternItems []PatternItem

func (p PatternItem) IsOptional() bool { return p.Type&optionalItem != 0 }
func (p PatternItem) IsLiteral() bool  { return p.Type&literalItem != 0 }
func (p PatternItem) IsCommand() bool  { return p.Type&commandItem != 0 }
func (p PatternItem) IsString() bool   { return p.Type&stringItem != 0 }
func (p PatternItem) IsChoice() bool   { return p.Type&choiceItem != 0 }
func (p PatternItem) IsList() bool     { return p.Type&listItem != 0 }

func (items PatternItems) String() string {
	parts := make([]string, len(items))

	for i, v := range items {
		var prefix, text, suffix string
		text = v.Text

		switch v.Type {
		case literalItem:
		case stringItem, choiceItem:
			if len(v.Options) == 1 {
				text = v.Options[0]
			} else {
				prefix, suffix = "<", ">"
			}
		case stringItem | optionalItem, choiceItem | optionalItem:
			prefix, suffix = "[", "]"
		case listItem:
			prefix, suffix = "<", ">..."
		case listItem | optionalItem:
			prefix, suffix = "[", "]..."
		case commandItem:
			prefix, suffix = "(", ")"
		}

		parts[i] = prefix + text + suffix
	}

	return strings.Join(parts, " ")
}

type stateFn func() (stateFn, error)

type patternLexer struct {
	s        *bufio.Scanner
	items    []PatternItem
	newItem  PatternItem
	terminal string
}

// lexPattern parses one Handler pattern string (e.g. "open <path>") into
// the sequence of PatternItems the trie indexes on.
func lexPattern(pattern string) ([]PatternItem, error) {
	s := bufio.NewScanner(strings.NewReader(pattern))
	s.Split(bufio.ScanRunes)
	l := patternLexer{s: s, items: make([]PatternItem, 0)}

	if err := l.Run(); err != nil {
		return nil, err
	}

	return l.items, nil
}

func (l *patternLexer) Run() (err error) {
	for state := l.lexOutside; state != nil && err == nil; {
		state, err = state()
	}

	return err
}

func (l *patternLexer) lexOutside() (fn stateFn, err error) {
	var content string

	defer func() {
		if err == nil && len(content) > 0 {
			item := PatternItem{Type: literalItem, Text: content}
			l.items = append(l.items, item)
		}
	}()

	for l.s.Scan() {
		token := l.s.Text()
		switch token {
		case "<":
			l.terminal = ">"
			return l.lexVariable, nil
		case "[":
			l.terminal = "]"
			return l.lexVariable, nil
		case "(":
			l.terminal = ")"
			return l.lexVariable, nil
		case `"`, `'`:
			return nil, errors.New("single and double quotes are not allowed")
		default:
			r, _ := utf8.DecodeRuneInString(token)
			if unicode.IsSpace(r) {
				return l.lexOutside, nil
			}

			content += token
		}
	}

	return nil, nil
}

func (l *patternLexer) lexVariable() (stateFn, error) {
	var content string

	l.newItem = PatternItem{Type: terminalsToTypes[l.terminal]}

	for l.s.Scan() {
		token := l.s.Text()
		switch token {
		case ",":
			l.newItem.Options = []string{content}
			content += token
			l.newItem.Text = content
			return l.lexMulti, nil
		case "<", "[", "(":
			return nil, errors.New("cannot nest items")
		case `"`, `'`:
			return nil, errors.New("single and double quotes are not allowed")
		case l.terminal:
			l.newItem.Key = content
			l.newItem.Text = content

			if l.terminal == ">" || l.terminal == "]" {
				if list, err := l.checkList(); err != nil {
					return nil, err
				} else if list {
					l.newItem.Type = listItem
					if l.terminal == "]" {
						l.newItem.Type |= optionalItem
					}
				}
			}

			if err := l.enforceEOF(); err != nil {
				return nil, err
			}

			l.items = append(l.items, l.newItem)
			return l.lexOutside, nil
		default:
			r, _ := utf8.DecodeRuneInString(token)
			if unicode.IsSpace(r) {
				l.newItem.Key = content
				content += token
				l.newItem.Text = content
				return l.lexComment, nil
			}

			content += token
		}
	}

	return nil, fmt.Errorf("missing terminal %s", l.terminal)
}

func (l *patternLexer) lexMulti() (stateFn, error) {
	var content string

	for l.s.Scan() {
		token := l.s.Text()
		switch token {
		case ",":
			l.newItem.Options = append(l.newItem.Options, content)
			content += token
			l.newItem.Text += content
			return l.lexMulti, nil
		case "<", "[", "(":
			return nil, errors.New("cannot nest items")
		case `"`, `'`:
			return nil, errors.New("single and double quotes are not allowed")
		case l.terminal:
			if len(content) > 0 {
				l.newItem.Options = append(l.newItem.Options, content)
				l.newItem.Text += content
			}

			l.newItem.Type = choiceItem
			if l.terminal == "]" {
				l.newItem.Type |= optionalItem
			}

			if err := l.enforceEOF(); err != nil {
				return nil, err
			}

			l.items = append(l.items, l.newItem)
			return l.lexOutside, nil
		default:
			r, _ := utf8.DecodeRuneInString(token)
			if unicode.IsSpace(r) {
				return nil, errors.New("spaces not allowed in multiple choice")
			}

			content += token
		}
	}

	return nil, fmt.Errorf("missing terminal %s", l.terminal)
}

func (l *patternLexer) lexComment() (stateFn, error) {
	var content string

	for l.s.Scan() {
		token := l.s.Text()
		switch token {
		case "[", "<", "(":
			return nil, errors.New("cannot nest items")
		case `"`, `'`:
			return nil, errors.New("single and double quotes are not allowed")
		case l.terminal:
			l.newItem.Text += content

			if list, err := l.checkList(); err != nil {
				return nil, err
			} else if list {
				l.newItem.Type = listItem
				if l.terminal == "]" {
					l.newItem.Type |= optionalItem
				}

				if err := l.enforceEOF(); err != nil {
					return nil, err
				}
			}

			l.items = append(l.items, l.newItem)
			return l.lexOutside, nil
		default:
			content += token
		}
	}

	return nil, fmt.Errorf("missing terminal %s", l.terminal)
}

func (l *patternLexer) enforceEOF() error {
	if l.newItem.Type == 0 {
		log.Fatal("cannot enforce EOF when item type not specified")
	}

	if l.newItem.Type&requireEOLItems != 0 {
		if l.s.Scan() {
			return errors.New("trailing characters when EOF expected")
		}
	}

	return nil
}

func (l *patternLexer) checkList() (bool, error) {
	var count int

	err := fmt.Errorf("invalid trailing characters after %s", l.terminal)

	for l.s.Scan() {
		token := l.s.Text()
		r, _ := utf8.DecodeRuneInString(token)
		if unicode.IsSpace(r) {
			break
		} else if token != "." {
			return false, err
		}

		count += 1
	}

	if count != 0 && count != 3 {
		return false, err
	}

	return count == 3, nil
}
