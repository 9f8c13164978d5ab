// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"testing"
	"unicode/utf16"
	"unsafe"

	"github.com/usbarmory/go-boot-services/efi"
	"github.com/usbarmory/go-boot-services/efi/efitest"
)

func exitData(pool *efitest.Pool, s string) (unsafe.Pointer, uint64) {
	var p unsafe.Pointer

	u := append(utf16.Encode([]rune(s)), 0)
	size := uint64(len(u) * 2)

	pool.AllocatePool(efi.EfiBootServicesData, size, &p)
	copy(efitest.Slice[uint16](p, len(u)), u)

	return p, size
}

func TestLoadImage(t *testing.T) {
	s, tbl, _ := newServices()

	var gotSize uint64
	var gotPath *efi.DevicePathNode

	tbl.LoadImage = func(_ bool, parent efi.Handle, devicePath *efi.DevicePathNode, source unsafe.Pointer, size uint64, image *efi.Handle) efi.Status {
		gotSize = size
		gotPath = devicePath

		if source == nil && devicePath == nil {
			return efi.EFI_NOT_FOUND
		}

		*image = parent + 1

		return efi.EFI_SUCCESS
	}

	image, err := s.LoadImageFromSource(0x10, []byte("MZ\x90\x00"))

	if err != nil {
		t.Fatal(err)
	}

	if image != 0x11 || gotSize != 4 {
		t.Fatalf("unexpected image %#x size %d", image, gotSize)
	}

	path := &efi.DevicePathNode{Type: 0x04, SubType: 0x04, Length: 4}

	if _, err = s.LoadImageFromFile(0x10, path, true); err != nil || gotPath != path {
		t.Fatalf("unexpected result %v %v", gotPath, err)
	}

	if _, err = s.LoadImageFromSource(0x10, nil); !errors.Is(err, efi.EFI_NOT_FOUND) {
		t.Fatalf("Expected:\n %v\nActual:\n %v", efi.EFI_NOT_FOUND, err)
	}
}

func TestStartImage(t *testing.T) {
	s, tbl, pool := newServices()

	tbl.StartImage = func(image efi.Handle, size *uint64, data *unsafe.Pointer) efi.Status {
		switch image {
		case 1:
			return efi.EFI_SUCCESS
		case 2:
			return efi.EFI_SECURITY_VIOLATION
		}

		*data, *size = exitData(pool, "boom")

		return efi.EFI_LOAD_ERROR
	}

	if err := s.StartImage(1); err != nil {
		t.Fatal(err)
	}

	var imageErr *ImageError

	err := s.StartImage(2)

	if !errors.As(err, &imageErr) || imageErr.ExitData != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if !errors.Is(err, efi.EFI_SECURITY_VIOLATION) {
		t.Fatalf("Expected:\n %v\nActual:\n %v", efi.EFI_SECURITY_VIOLATION, err)
	}

	err = s.StartImage(3)

	if !errors.As(err, &imageErr) {
		t.Fatalf("unexpected error %v", err)
	}

	if desc := imageErr.Description(); desc != "boom" {
		t.Fatalf("Expected:\n %v\nActual:\n %v", "boom", desc)
	}

	if msg := err.Error(); msg != "EFI_LOAD_ERROR, boom" {
		t.Fatalf("unexpected message %q", msg)
	}

	imageErr.ExitData.Release()

	if n := pool.Outstanding(); n != 0 {
		t.Fatalf("expected no outstanding allocation, got %d", n)
	}

	if msg := err.Error(); msg != "EFI_LOAD_ERROR" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestExit(t *testing.T) {
	s, tbl, pool := newServices()

	var gotSize uint64

	tbl.Exit = func(image efi.Handle, _ efi.Status, size uint64, _ unsafe.Pointer) efi.Status {
		if image == 0 {
			return efi.EFI_INVALID_PARAMETER
		}

		gotSize = size

		return efi.EFI_SUCCESS
	}

	p, size := exitData(pool, "bye")
	data := BufferFromRaw[byte](s, p, int(size))

	if err := s.Exit(0, efi.EFI_ABORTED, data); !errors.Is(err, efi.EFI_INVALID_PARAMETER) {
		t.Fatalf("Expected:\n %v\nActual:\n %v", efi.EFI_INVALID_PARAMETER, err)
	}

	// ownership stays with the caller on failure
	if data.Len() != int(size) {
		t.Fatal("unexpected exit data state")
	}

	if err := s.Exit(1, efi.EFI_ABORTED, data); err != nil {
		t.Fatal(err)
	}

	if gotSize != size {
		t.Fatalf("Expected:\n %v\nActual:\n %v", size, gotSize)
	}

	// ownership moved to firmware
	data.Release()

	if pool.Frees != 0 {
		t.Fatal("exit data freed after hand over")
	}
}

func TestExitBootServices(t *testing.T) {
	s, tbl, _ := newServices()

	tbl.ExitBootServices = func(_ efi.Handle, mapKey uint64) efi.Status {
		if mapKey != 0x1236 {
			return efi.EFI_INVALID_PARAMETER
		}

		return efi.EFI_SUCCESS
	}

	tbl.UnloadImage = func(efi.Handle) efi.Status {
		return efi.EFI_UNSUPPORTED
	}

	if err := s.ExitBootServices(1, 0); !errors.Is(err, efi.EFI_INVALID_PARAMETER) {
		t.Fatalf("Expected:\n %v\nActual:\n %v", efi.EFI_INVALID_PARAMETER, err)
	}

	if err := s.ExitBootServices(1, 0x1236); err != nil {
		t.Fatal(err)
	}

	if err := s.UnloadImage(1); !errors.Is(err, efi.EFI_UNSUPPORTED) {
		t.Fatalf("Expected:\n %v\nActual:\n %v", efi.EFI_UNSUPPORTED, err)
	}
}
