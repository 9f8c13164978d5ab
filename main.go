// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package main

import (
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/usbarmory/go-boot-services/cmd"
	"github.com/usbarmory/go-boot-services/config"
	"github.com/usbarmory/go-boot-services/efi"
	"github.com/usbarmory/go-boot-services/shell"
	"github.com/usbarmory/go-boot-services/uefi/x64"
)

// Settings holds an optional TOML document, set at link time with
// `-ldflags "-X 'main.Settings=...'"`, overriding the default configuration.
var Settings string

func initLogger(c *config.Config) {
	output := zerolog.ConsoleWriter{
		Out:        x64.UART0,
		NoColor:    !c.Console.VT100,
		TimeFormat: time.RFC3339,
	}

	log.Logger = zerolog.New(output).Level(c.Log.Level).With().Timestamp().Logger()
}

func main() {
	c, err := config.Load([]byte(Settings))

	if err != nil {
		c = config.Default()
		initLogger(c)
		log.Error().Err(err).Msg("invalid settings, using defaults")
	} else {
		initLogger(c)
	}

	cmd.UEFI = x64.UEFI
	cmd.ImageHandle = x64.ImageHandle

	if x64.SystemTable != nil {
		cmd.ConfigurationTables = x64.SystemTable.ConfigurationTables
	}

	for _, p := range c.Protocols {
		cmd.Protocols[p.Name] = p.GUID
	}

	if c.Boot.SetWatchdog && x64.UEFI.Initialized() {
		log.Info().Dur("timeout", c.Boot.Watchdog).Msg("setting watchdog timer")

		if err = x64.UEFI.SetWatchdogTimer(uint64(c.Boot.Watchdog / time.Second)); err != nil {
			log.Error().Err(err).Msg("could not set watchdog timer")
		}
	}

	console := &shell.Interface{
		Banner:     c.Console.Banner,
		ReadWriter: x64.UART0,
		VT100:      c.Console.VT100,
	}

	console.Start()

	log.Info().Msg("exiting")

	if x64.UEFI.Initialized() && !cmd.Exited {
		if err = x64.UEFI.Exit(x64.ImageHandle, efi.EFI_SUCCESS, nil); err != nil {
			log.Error().Err(err).Msg("could not return to firmware")
		}
	}

	runtime.Exit(0)
}
