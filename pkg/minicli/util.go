// Copyright 2018-2021 National Technology & Engineering Solutions of Sandia, LLC (NTESS).
// Under the terms of Contract DE-NA0003525 with NTESS, the U.S. Government retains certain
// rights in this software.

package minicli

import (
	"bytes"
	"fmt"
	"sort"
	"text/tabwriter"
)

// printHelpShort renders a pattern -> one-line-help table, sorted by
// pattern, for Help's fallback listing.
func printHelpShort(short map[string]string) string {
	keys := make([]string, 0, len(short))
	for k := range short {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	res := "Display help on a command. Here is a list of commands:\n"
	buf := bytes.NewBufferString(res)
	w := new(tabwriter.Writer)
	w.Init(buf, 0, 8, 0, '\t', 0)
	for _, k := range keys {
		fmt.Fprintln(w, k, "\t", ":\t", short[k], "\t")
	}
	w.Flush()

	return buf.String()
}
