// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/usbarmory/go-boot-services/efi"
	"github.com/usbarmory/go-boot-services/efi/efitest"
)

func newServices() (*BootServices, *efi.Table, *efitest.Pool) {
	pool := &efitest.Pool{}
	t := pool.Bind(&efi.Table{})
	return New(t), t, pool
}

func expectPanic(t *testing.T, msg string, fn func()) {
	t.Helper()

	defer func() {
		t.Helper()

		r := recover()

		if r == nil {
			t.Fatalf("expected panic %q", msg)
		}

		if !strings.Contains(fmt.Sprint(r), msg) {
			t.Fatalf("Expected:\n %v\nActual:\n %v", msg, r)
		}
	}()

	fn()
}

func TestInitialize(t *testing.T) {
	s := NewUninit()

	if s.Initialized() {
		t.Fatal("new instance must not be initialized")
	}

	expectPanic(t, "boot services not initialized", func() {
		s.Stall(1)
	})

	s.Initialize(&efi.Table{})

	if !s.Initialized() {
		t.Fatal("instance must be initialized")
	}

	expectPanic(t, "boot services already initialized", func() {
		s.Initialize(&efi.Table{})
	})
}

func TestZeroValue(t *testing.T) {
	var s BootServices

	expectPanic(t, "boot services not initialized", func() {
		s.RaiseTPL(efi.TPL_NOTIFY)
	})

	expectPanic(t, "invalid boot services table", func() {
		s.Initialize(nil)
	})
}

func TestMissingFunction(t *testing.T) {
	s := New(&efi.Table{})

	var proto Protocol[uint64]
	var ind Protocol[Indicator]

	tests := []struct {
		name string
		fn   func()
	}{
		{"RaiseTPL", func() { s.RaiseTPL(efi.TPL_NOTIFY) }},
		{"RestoreTPL", func() { s.RestoreTPL(efi.TPL_APPLICATION) }},
		{"AllocatePages", func() { s.AllocatePages(AnyPages(), efi.EfiLoaderData, 1) }},
		{"FreePages", func() { s.FreePages(0, 1) }},
		{"GetMemoryMap", func() { s.GetMemoryMap() }},
		{"AllocatePool", func() { s.AllocatePool(efi.EfiLoaderData, 8) }},
		{"FreePool", func() { s.FreePool(nil) }},
		{"CreateEvent", func() { s.CreateEventUnchecked(0, efi.TPL_CALLBACK, nil, nil) }},
		{"CreateEventEx", func() { s.CreateEventExUnchecked(0, efi.TPL_CALLBACK, nil, nil, nil) }},
		{"SetTimer", func() { s.SetTimer(0, efi.TimerCancel, 0) }},
		{"WaitForEvent", func() { s.WaitForEvent(nil) }},
		{"SignalEvent", func() { s.SignalEvent(0) }},
		{"CloseEvent", func() { s.CloseEvent(0) }},
		{"CheckEvent", func() { s.CheckEvent(0) }},
		{"InstallProtocolInterface", func() { InstallProtocolInterface(s, 0, ind, nil) }},
		{"ReinstallProtocolInterface", func() { ReinstallProtocolInterface(s, 0, ind, nil, nil) }},
		{"UninstallProtocolInterface", func() { UninstallProtocolInterface(s, 0, ind, nil) }},
		{"HandleProtocol", func() { HandleProtocol(s, 0, proto) }},
		{"RegisterProtocolNotify", func() { s.RegisterProtocolNotify(proto, 0) }},
		{"LocateHandle", func() { s.LocateHandle(AllHandles()) }},
		{"LocateDevicePath", func() { s.LocateDevicePath(proto, nil) }},
		{"InstallConfigurationTable", func() { s.InstallConfigurationTableUnchecked(nil, nil) }},
		{"LoadImage", func() { s.LoadImageFromSource(0, nil) }},
		{"StartImage", func() { s.StartImage(0) }},
		{"Exit", func() { s.Exit(0, efi.EFI_SUCCESS, nil) }},
		{"UnloadImage", func() { s.UnloadImage(0) }},
		{"ExitBootServices", func() { s.ExitBootServices(0, 0) }},
		{"GetNextMonotonicCount", func() { s.GetNextMonotonicCount() }},
		{"Stall", func() { s.Stall(1) }},
		{"SetWatchdogTimer", func() { s.SetWatchdogTimer(0) }},
		{"ConnectController", func() { s.ConnectController(0, nil, nil, false) }},
		{"DisconnectController", func() { s.DisconnectController(0, 0, 0) }},
		{"OpenProtocol", func() { OpenProtocol(s, 0, proto, 0, 0, efi.EFI_OPEN_PROTOCOL_GET_PROTOCOL) }},
		{"CloseProtocol", func() { s.CloseProtocol(0, proto, 0, 0) }},
		{"OpenProtocolInformation", func() { s.OpenProtocolInformation(0, proto) }},
		{"ProtocolsPerHandle", func() { s.ProtocolsPerHandle(0) }},
		{"LocateHandleBuffer", func() { s.LocateHandleBuffer(AllHandles()) }},
		{"LocateProtocol", func() { LocateProtocol(s, proto, 0) }},
		{"CalculateCrc32", func() { s.CalculateCRC32(nil) }},
		{"CopyMem", func() { s.CopyMemUnchecked(nil, nil, 0) }},
		{"SetMem", func() { s.SetMem(nil, 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectPanic(t, "boot services function "+tt.name+" is not initialized", tt.fn)
		})
	}
}

func TestStatusErrors(t *testing.T) {
	s, tbl, _ := newServices()

	tbl.Stall = func(uint64) efi.Status {
		return efi.EFI_DEVICE_ERROR
	}

	err := s.Stall(10)

	if !errors.Is(err, efi.EFI_DEVICE_ERROR) {
		t.Fatalf("Expected:\n %v\nActual:\n %v", efi.EFI_DEVICE_ERROR, err)
	}

	// warnings report success
	tbl.Stall = func(uint64) efi.Status {
		return efi.EFI_WARN_STALE_DATA
	}

	if err := s.Stall(10); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestSharedHandle(t *testing.T) {
	var count uint64

	s, tbl, _ := newServices()

	tbl.GetNextMonotonicCount = func(c *uint64) efi.Status {
		count++
		*c = count
		return efi.EFI_SUCCESS
	}

	done := make(chan uint64)

	go func() {
		c, _ := s.GetNextMonotonicCount()
		done <- c
	}()

	first := <-done
	second, err := s.GetNextMonotonicCount()

	if err != nil {
		t.Fatal(err)
	}

	if first != 1 || second != 2 {
		t.Fatalf("unexpected counts %d %d", first, second)
	}
}
