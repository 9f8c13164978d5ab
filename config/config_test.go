// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/usbarmory/go-boot-services/efi"
)

var blockIO = efi.MustParseGUID("964e5b21-6459-11d2-8e39-00a0c969723b")

func TestDefault(t *testing.T) {
	c := Default()

	if !c.Console.VT100 {
		t.Fatal("expected vt100 enabled")
	}

	if !strings.Contains(c.Console.Banner, "UEFI Boot Services") {
		t.Fatalf("unexpected banner: %q", c.Console.Banner)
	}

	if c.Log.Level != zerolog.InfoLevel {
		t.Fatalf("unexpected level: %v", c.Log.Level)
	}

	if c.Boot.SetWatchdog {
		t.Fatal("expected firmware watchdog to be left untouched")
	}

	if g, ok := c.Protocol("block-io"); !ok || g != blockIO {
		t.Fatalf("unexpected block-io protocol: %v %v", g, ok)
	}
}

func TestLoadOverrides(t *testing.T) {
	c, err := Load([]byte(`
[console]
vt100 = false
banner = "test"

[log]
level = "debug"

[boot]
watchdog = "5m"

[[protocol]]
name = "block-io"
guid = "00000000-1111-2222-3333-444444444444"
`))

	if err != nil {
		t.Fatal(err)
	}

	want := Console{VT100: false, Banner: "test"}

	if diff := cmp.Diff(want, c.Console); diff != "" {
		t.Fatalf("console mismatch (-want +got):\n%s", diff)
	}

	if c.Log.Level != zerolog.DebugLevel {
		t.Fatalf("unexpected level: %v", c.Log.Level)
	}

	if diff := cmp.Diff(Boot{SetWatchdog: true, Watchdog: 5 * time.Minute}, c.Boot); diff != "" {
		t.Fatalf("boot mismatch (-want +got):\n%s", diff)
	}

	if len(c.Protocols) != len(Default().Protocols)+1 {
		t.Fatalf("unexpected protocols: %v", c.Protocols)
	}

	if g, _ := c.Protocol("block-io"); g != efi.MustParseGUID("00000000-1111-2222-3333-444444444444") {
		t.Fatalf("override not applied: %v", g)
	}
}

func TestLoadPartial(t *testing.T) {
	c, err := Load([]byte("[boot]\nwatchdog = \"0s\"\n"))

	if err != nil {
		t.Fatal(err)
	}

	if !c.Console.VT100 || c.Log.Level != zerolog.InfoLevel {
		t.Fatal("defaults not preserved")
	}

	if !c.Boot.SetWatchdog || c.Boot.Watchdog != 0 {
		t.Fatalf("unexpected boot settings: %+v", c.Boot)
	}
}

func TestLoadErrors(t *testing.T) {
	for _, data := range []string{
		"[console\n",
		"[log]\nlevel = \"loud\"\n",
		"[boot]\nwatchdog = \"soon\"\n",
		"[boot]\nwatchdog = \"-1s\"\n",
		"[boot]\nwatchdog = \"1500ms\"\n",
		"[[protocol]]\nguid = \"964e5b21-6459-11d2-8e39-00a0c969723b\"\n",
		"[[protocol]]\nname = \"bad\"\nguid = \"964e5b21\"\n",
		"[console]\ncolour = true\n",
	} {
		if _, err := Load([]byte(data)); err == nil {
			t.Fatalf("expected error for %q", data)
		}
	}
}

func TestProtocolUnknown(t *testing.T) {
	if _, ok := Default().Protocol("unknown"); ok {
		t.Fatal("unexpected protocol")
	}
}
