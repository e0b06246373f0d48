// Copyright 2018-2021 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package minicli

import "fmt"

// Validate checks every registered pattern for ambiguity against every
// other registered pattern.
func Validate() error {
	patterns := map[string][]PatternItem{}

	for _, h := range handlerList {
		for i, pattern := range h.Patterns {
			if _, ok := patterns[pattern]; ok {
				return fmt.Errorf("duplicate pattern: `%v`", pattern)
			}

			patterns[pattern] = h.PatternItems[i]
		}
	}

	slice := make([]string, 0, len(patterns))
	for pattern := range patterns {
		slice = append(slice, pattern)
	}

	for i, pattern := range slice {
		for _, other := range slice[i+1:] {
			if ambiguous(patterns[pattern], patterns[other]) {
				return fmt.Errorf("ambiguous patterns: `%v` and `%v`", pattern, other)
			}
		}
	}

	return nil
}

func ambiguous(p0, p1 []PatternItem) bool {
	if len(p0) == 0 && len(p1) == 0 {
		return true
	} else if len(p0) == 0 && len(p1) > 0 {
		return p1[0].IsOptional()
	} else if len(p0) > 0 && len(p1) == 0 {
		return p0[0].IsOptional()
	}

	item0, item1 := p0[0], p1[0]

	if item0.IsOptional() && item1.IsOptional() {
		return true
	}

	if item0.IsList() || item1.IsList() {
		return true
	}

	allowed0, allowed1 := allowedValues(item0), allowedValues(item1)

	var match bool
	for _, val0 := range allowed0 {
		for _, val1 := range allowed1 {
			match = match || val0 == val1 || val0 == "*" || val1 == "*"
		}
	}

	if !match {
		return false
	}

	return ambiguous(p0[1:], p1[1:])
}

func allowedValues(item PatternItem) []string {
	var vals []string

	switch item.Type {
	case literalItem:
		vals = append(vals, item.Text)
	case choiceItem, choiceItem | optionalItem:
		vals = append(vals, item.Options...)
	case stringItem, stringItem | optionalItem, listItem, listItem | optionalItem:
		vals = append(vals, "*")
	case commandItem:
		vals = append(vals, "*")
	}

	if item.IsOptional() {
		vals = append(vals, "")
	}

	return vals
}
