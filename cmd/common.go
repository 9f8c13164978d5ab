// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"runtime/debug"
	"time"

	"github.com/hako/durafmt"

	"github.com/usbarmory/go-boot-services/shell"
)

var started = time.Now()

func init() {
	shell.Add(shell.Cmd{
		Name: "help",
		Help: "this help",
		Fn:   helpCmd,
	})

	shell.Add(shell.Cmd{
		Name: "build",
		Help: "build information",
		Fn:   buildInfoCmd,
	})

	shell.Add(shell.Cmd{
		Name: "uptime",
		Help: "show how long the system has been running",
		Fn:   uptimeCmd,
	})
}

func helpCmd(_ *shell.Interface, _ []string) (string, error) {
	return shell.Help(), nil
}

func buildInfoCmd(_ *shell.Interface, _ []string) (string, error) {
	if bi, ok := debug.ReadBuildInfo(); ok {
		return bi.String(), nil
	}

	return "", nil
}

func uptimeCmd(_ *shell.Interface, _ []string) (string, error) {
	return durafmt.Parse(time.Since(started)).LimitFirstN(2).String(), nil
}
