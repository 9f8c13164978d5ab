// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"unsafe"

	"github.com/usbarmory/go-boot-services/efi"
)

// AllocType represents the placement strategy of AllocatePages.
type AllocType struct {
	Type    efi.AllocateType
	Address efi.PhysicalAddress
}

// AnyPages returns a strategy allocating pages at any available address.
func AnyPages() AllocType {
	return AllocType{Type: efi.AllocateAnyPages}
}

// MaxAddress returns a strategy allocating pages ending at, or below, the
// argument address.
func MaxAddress(addr efi.PhysicalAddress) AllocType {
	return AllocType{Type: efi.AllocateMaxAddress, Address: addr}
}

// Address returns a strategy allocating pages exactly at the argument
// address.
func Address(addr efi.PhysicalAddress) AllocType {
	return AllocType{Type: efi.AllocateAddress, Address: addr}
}

// AllocatePages calls EFI_BOOT_SERVICES.AllocatePages() and returns the
// physical address of the allocated range.
func (s *BootServices) AllocatePages(allocType AllocType, memoryType efi.MemoryType, pages uint64) (efi.PhysicalAddress, error) {
	t := s.table()

	if t.AllocatePages == nil {
		missing("AllocatePages")
	}

	addr := allocType.Address

	if err := parseStatus(t.AllocatePages(allocType.Type, memoryType, pages, &addr)); err != nil {
		return 0, err
	}

	return addr, nil
}

// FreePages calls EFI_BOOT_SERVICES.FreePages().
func (s *BootServices) FreePages(addr efi.PhysicalAddress, pages uint64) error {
	t := s.table()

	if t.FreePages == nil {
		missing("FreePages")
	}

	return parseStatus(t.FreePages(addr, pages))
}

// AllocatePool calls EFI_BOOT_SERVICES.AllocatePool(), the returned address
// is 8-byte aligned.
func (s *BootServices) AllocatePool(memoryType efi.MemoryType, size uint64) (buf unsafe.Pointer, err error) {
	t := s.table()

	if t.AllocatePool == nil {
		missing("AllocatePool")
	}

	if err = parseStatus(t.AllocatePool(memoryType, size, &buf)); err != nil {
		return nil, err
	}

	return
}

// AllocatePoolFor allocates a pool buffer sized for a value of type T.
func AllocatePoolFor[T any](s *BootServices, memoryType efi.MemoryType) (*T, error) {
	var zero T

	buf, err := s.AllocatePool(memoryType, uint64(unsafe.Sizeof(zero)))

	if err != nil {
		return nil, err
	}

	return (*T)(buf), nil
}

// FreePool calls EFI_BOOT_SERVICES.FreePool().
func (s *BootServices) FreePool(buf unsafe.Pointer) error {
	t := s.table()

	if t.FreePool == nil {
		missing("FreePool")
	}

	return parseStatus(t.FreePool(buf))
}

// discover implements the size discovery protocol of variable length
// queries: call is probed with a nil buffer, on EFI_BUFFER_TOO_SMALL a pool
// buffer of the reported size (plus margin) is allocated and call is
// retried once.
//
// A successful probe returns a nil buffer. On second call failure the buffer
// is freed and EFI_BUFFER_TOO_SMALL is returned as a *SizeError.
func (s *BootServices) discover(memoryType efi.MemoryType, margin uint64, call func(size *uint64, buf unsafe.Pointer) efi.Status) (buf unsafe.Pointer, size uint64, err error) {
	status := call(&size, nil)

	switch {
	case status == efi.EFI_BUFFER_TOO_SMALL:
		size += margin
	case status.IsError():
		return nil, 0, status
	default:
		return nil, 0, nil
	}

	if buf, err = s.AllocatePool(memoryType, size); err != nil {
		return nil, 0, err
	}

	if status = call(&size, buf); status.IsError() {
		s.FreePool(buf)

		if status == efi.EFI_BUFFER_TOO_SMALL {
			return nil, 0, &SizeError{Status: status, Size: size}
		}

		return nil, 0, status
	}

	return
}
