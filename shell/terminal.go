// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package shell implements a terminal console handler for user defined
// commands.
package shell

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

// Interface represents a terminal interface.
type Interface struct {
	// Banner represents the welcome message
	Banner string

	// ReadWriter represents the terminal connection
	ReadWriter io.ReadWriter

	// VT100 enables terminal escape sequences
	VT100 bool
}

// Exec runs the registered command matching the argument line.
func (iface *Interface) Exec(line string) (res string, err error) {
	var match *Cmd
	var arg []string

	for _, cmd := range cmds {
		if cmd.Pattern == nil {
			if cmd.Name == line {
				match = cmd
				break
			}
		} else if m := cmd.Pattern.FindStringSubmatch(line); len(m) > 0 && (len(m)-1 == cmd.Args) {
			match = cmd
			arg = m[1:]
			break
		}
	}

	if match == nil {
		return "", errors.New("unknown command, type `help`")
	}

	return match.Fn(iface, arg)
}

func (iface *Interface) handleLine(line string, w io.Writer) (err error) {
	var res string

	if len(line) == 0 {
		return
	}

	if res, err = iface.Exec(line); err != nil {
		return
	}

	if len(res) > 0 {
		fmt.Fprintln(w, res)
	}

	return
}

func (iface *Interface) readLine(t *term.Terminal, w io.Writer) error {
	s, err := t.ReadLine()

	if err == io.EOF {
		return err
	}

	if err != nil {
		log.Warn().Err(err).Msg("readline error")
		return nil
	}

	if err = iface.handleLine(s, w); err != nil {
		if err == io.EOF {
			return err
		}

		fmt.Fprintf(w, "command error, %v\n", err)
		return nil
	}

	return nil
}

// Start handles registered commands over the interface ReadWriter until a
// command returns io.EOF.
func (iface *Interface) Start() {
	var w io.Writer

	t := term.NewTerminal(iface.ReadWriter, "> ")
	w = iface.ReadWriter

	if iface.VT100 {
		t.SetPrompt(string(t.Escape.Red) + "> " + string(t.Escape.Reset))
		w = t
	}

	fmt.Fprintf(t, "\n%s\n\n", iface.Banner)
	fmt.Fprintf(t, "%s\n", Help())

	for {
		if err := iface.readLine(t, w); err != nil {
			return
		}
	}
}
