// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package shell

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"text/tabwriter"
)

// CmdFn represents a command handler.
type CmdFn func(iface *Interface, arg []string) (res string, err error)

// Cmd represents a shell command.
type Cmd struct {
	// Name is the command name, matched verbatim when Pattern is nil
	Name string
	// Args is the number of Pattern submatches passed to Fn
	Args int
	// Pattern matches the command line
	Pattern *regexp.Regexp
	// Syntax describes the command arguments
	Syntax string
	// Help describes the command
	Help string
	// Fn is the command handler
	Fn CmdFn
}

var cmds = make(map[string]*Cmd)

// Add registers a shell command, replacing any command with the same name.
func Add(cmd Cmd) {
	cmds[cmd.Name] = &cmd
}

// Help returns the formatted list of registered commands.
func Help() string {
	var names []string
	var buf bytes.Buffer

	for name := range cmds {
		names = append(names, name)
	}

	sort.Strings(names)

	t := tabwriter.NewWriter(&buf, 16, 8, 0, '\t', tabwriter.TabIndent)

	for _, name := range names {
		fmt.Fprintf(t, "%s\t%s\t # %s\n", cmds[name].Name, cmds[name].Syntax, cmds[name].Help)
	}

	t.Flush()

	return buf.String()
}
