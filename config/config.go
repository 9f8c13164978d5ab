// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package config implements the TOML configuration of the boot shell.
package config

import (
	_ "embed"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/usbarmory/go-boot-services/efi"
)

//go:embed default.toml
var defaultConfig string

// Config represents the boot shell configuration.
type Config struct {
	Console   Console
	Log       Log
	Boot      Boot
	Protocols []Protocol
}

// Console represents the serial console settings.
type Console struct {
	// VT100 enables terminal escape sequences
	VT100 bool
	// Banner is the shell welcome message
	Banner string
}

// Log represents the logging settings.
type Log struct {
	Level zerolog.Level
}

// Boot represents settings applied before the shell starts.
type Boot struct {
	// SetWatchdog is true when Watchdog must be applied
	SetWatchdog bool
	// Watchdog is the firmware watchdog timeout, 0 disables it
	Watchdog time.Duration
}

// Protocol represents a named GUID accepted by shell commands.
type Protocol struct {
	Name string
	GUID efi.GUID
}

type fileConfig struct {
	Console struct {
		VT100  bool   `toml:"vt100"`
		Banner string `toml:"banner"`
	} `toml:"console"`

	Log struct {
		Level string `toml:"level"`
	} `toml:"log"`

	Boot struct {
		Watchdog string `toml:"watchdog"`
	} `toml:"boot"`

	Protocols []struct {
		Name string `toml:"name"`
		GUID string `toml:"guid"`
	} `toml:"protocol"`
}

func banner() string {
	return fmt.Sprintf("%s/%s (%s) • UEFI Boot Services",
		runtime.GOOS, runtime.GOARCH, runtime.Version())
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{
		Console: Console{Banner: banner()},
		Log:     Log{Level: zerolog.InfoLevel},
	}

	if err := c.merge(defaultConfig); err != nil {
		panic(fmt.Sprintf("invalid default configuration, %v", err))
	}

	return c
}

// Load returns the default configuration overridden by the keys defined in
// the argument TOML document, protocol entries are appended to the default
// ones.
func Load(data []byte) (*Config, error) {
	c := Default()

	if err := c.merge(string(data)); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) merge(data string) (err error) {
	var raw fileConfig

	meta, err := toml.Decode(data, &raw)

	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown config key %q", undecoded[0].String())
	}

	if meta.IsDefined("console", "vt100") {
		c.Console.VT100 = raw.Console.VT100
	}

	if meta.IsDefined("console", "banner") {
		c.Console.Banner = raw.Console.Banner
	}

	if meta.IsDefined("log", "level") {
		if c.Log.Level, err = zerolog.ParseLevel(strings.TrimSpace(raw.Log.Level)); err != nil {
			return fmt.Errorf("parse log level: %w", err)
		}
	}

	if meta.IsDefined("boot", "watchdog") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Boot.Watchdog))

		if err != nil {
			return fmt.Errorf("parse watchdog: %w", err)
		}

		if d < 0 || d%time.Second != 0 {
			return fmt.Errorf("watchdog must be a non-negative number of seconds")
		}

		c.Boot.SetWatchdog = true
		c.Boot.Watchdog = d
	}

	for _, p := range raw.Protocols {
		name := strings.TrimSpace(p.Name)

		if name == "" {
			return fmt.Errorf("protocol without name")
		}

		guid, err := efi.ParseGUID(p.GUID)

		if err != nil {
			return fmt.Errorf("parse protocol %s: %w", name, err)
		}

		c.Protocols = append(c.Protocols, Protocol{Name: name, GUID: guid})
	}

	return
}

// Protocol returns the GUID of the named protocol, later entries take
// precedence.
func (c *Config) Protocol(name string) (efi.GUID, bool) {
	for i := len(c.Protocols) - 1; i >= 0; i-- {
		if c.Protocols[i].Name == name {
			return c.Protocols[i].GUID, true
		}
	}

	return efi.GUID{}, false
}
