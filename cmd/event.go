// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/hako/durafmt"
	"github.com/rs/zerolog/log"

	"github.com/usbarmory/go-boot-services/efi"
	"github.com/usbarmory/go-boot-services/shell"
	"github.com/usbarmory/go-boot-services/staticptr"
	"github.com/usbarmory/go-boot-services/uefi"
)

func init() {
	shell.Add(shell.Cmd{
		Name:    "tpl",
		Args:    1,
		Pattern: regexp.MustCompile(`^tpl (callback|notify|high)$`),
		Syntax:  "(callback|notify|high)",
		Help:    "EFI_BOOT_SERVICES.RaiseTPL(), RestoreTPL()",
		Fn:      tplCmd,
	})

	shell.Add(shell.Cmd{
		Name:    "wait",
		Args:    1,
		Pattern: regexp.MustCompile(`^wait (\d+)$`),
		Syntax:  "<ms>",
		Help:    "EFI_BOOT_SERVICES.SetTimer(), WaitForEvent()",
		Fn:      waitCmd,
	})

	shell.Add(shell.Cmd{
		Name:    "stall",
		Args:    1,
		Pattern: regexp.MustCompile(`^stall (\d+)$`),
		Syntax:  "<ms>",
		Help:    "EFI_BOOT_SERVICES.Stall()",
		Fn:      stallCmd,
	})

	shell.Add(shell.Cmd{
		Name:    "watchdog",
		Args:    1,
		Pattern: regexp.MustCompile(`^watchdog (\d+)$`),
		Syntax:  "<seconds>",
		Help:    "EFI_BOOT_SERVICES.SetWatchdogTimer(), 0 disables",
		Fn:      watchdogCmd,
	})

	shell.Add(shell.Cmd{
		Name: "count",
		Help: "EFI_BOOT_SERVICES.GetNextMonotonicCount()",
		Fn:   countCmd,
	})
}

var tplLevels = map[string]efi.TPL{
	"callback": efi.TPL_CALLBACK,
	"notify":   efi.TPL_NOTIFY,
	"high":     efi.TPL_HIGH_LEVEL,
}

func parseDuration(arg string, unit time.Duration) (time.Duration, error) {
	n, err := strconv.ParseUint(arg, 10, 32)

	if err != nil {
		return 0, fmt.Errorf("invalid duration, %v", err)
	}

	return time.Duration(n) * unit, nil
}

func tplCmd(_ *shell.Interface, arg []string) (res string, err error) {
	s, err := services()

	if err != nil {
		return
	}

	tpl := tplLevels[arg[0]]
	guard := s.RaiseTPLGuarded(tpl)
	guard.Restore()

	return fmt.Sprintf("%v raised to %v and restored", guard.Previous(), tpl), nil
}

func waitCmd(_ *shell.Interface, arg []string) (res string, err error) {
	s, err := services()

	if err != nil {
		return
	}

	d, err := parseDuration(arg[0], time.Millisecond)

	if err != nil {
		return
	}

	event, err := uefi.CreateEvent[staticptr.None](s, efi.EVT_TIMER, efi.TPL_APPLICATION, nil, staticptr.None{})

	if err != nil {
		return
	}

	defer s.CloseEvent(event)

	if err = s.SetTimer(event, efi.TimerRelative, efi.TriggerTime(d)); err != nil {
		return
	}

	start := time.Now()

	if _, err = s.WaitForEvent([]efi.Event{event}); err != nil {
		return
	}

	return fmt.Sprintf("timer expired after %s", durafmt.Parse(time.Since(start)).LimitFirstN(2)), nil
}

func stallCmd(_ *shell.Interface, arg []string) (res string, err error) {
	s, err := services()

	if err != nil {
		return
	}

	d, err := parseDuration(arg[0], time.Millisecond)

	if err != nil {
		return
	}

	if err = s.Stall(uint64(d / time.Microsecond)); err != nil {
		return
	}

	return fmt.Sprintf("stalled for %s", durafmt.Parse(d)), nil
}

func watchdogCmd(_ *shell.Interface, arg []string) (res string, err error) {
	s, err := services()

	if err != nil {
		return
	}

	d, err := parseDuration(arg[0], time.Second)

	if err != nil {
		return
	}

	log.Info().Msgf("setting watchdog timer to %d seconds", d/time.Second)

	if err = s.SetWatchdogTimer(uint64(d / time.Second)); err != nil {
		return
	}

	if d == 0 {
		return "watchdog disabled", nil
	}

	return fmt.Sprintf("watchdog expires in %s", durafmt.Parse(d)), nil
}

func countCmd(_ *shell.Interface, _ []string) (res string, err error) {
	s, err := services()

	if err != nil {
		return
	}

	count, err := s.GetNextMonotonicCount()

	if err != nil {
		return
	}

	return fmt.Sprintf("%#016x", count), nil
}
