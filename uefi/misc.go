// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"unsafe"

	"github.com/usbarmory/go-boot-services/efi"
	"github.com/usbarmory/go-boot-services/staticptr"
)

// WatchdogCode is the watchdog code passed to SetWatchdogTimer.
const WatchdogCode = 0xba3e5e7a1

// SetWatchdogTimer calls EFI_BOOT_SERVICES.SetWatchdogTimer(), a zero
// timeout (in seconds) disables the watchdog.
func (s *BootServices) SetWatchdogTimer(timeout uint64) error {
	t := s.table()

	if t.SetWatchdogTimer == nil {
		missing("SetWatchdogTimer")
	}

	return parseStatus(t.SetWatchdogTimer(timeout, WatchdogCode, 0, nil))
}

// Stall calls EFI_BOOT_SERVICES.Stall().
func (s *BootServices) Stall(microseconds uint64) error {
	t := s.table()

	if t.Stall == nil {
		missing("Stall")
	}

	return parseStatus(t.Stall(microseconds))
}

// GetNextMonotonicCount calls EFI_BOOT_SERVICES.GetNextMonotonicCount().
func (s *BootServices) GetNextMonotonicCount() (count uint64, err error) {
	t := s.table()

	if t.GetNextMonotonicCount == nil {
		missing("GetNextMonotonicCount")
	}

	if err = parseStatus(t.GetNextMonotonicCount(&count)); err != nil {
		return 0, err
	}

	return
}

// CopyMem copies src to dst with EFI_BOOT_SERVICES.CopyMem().
func CopyMem[T any](s *BootServices, dst *T, src *T) {
	var zero T
	s.CopyMemUnchecked(unsafe.Pointer(dst), unsafe.Pointer(src), uint64(unsafe.Sizeof(zero)))
}

// CopyMemUnchecked calls EFI_BOOT_SERVICES.CopyMem(), overlapping regions
// are supported.
func (s *BootServices) CopyMemUnchecked(dst unsafe.Pointer, src unsafe.Pointer, length uint64) {
	t := s.table()

	if t.CopyMem == nil {
		missing("CopyMem")
	}

	t.CopyMem(dst, src, length)
}

// SetMem fills buf with value using EFI_BOOT_SERVICES.SetMem().
func (s *BootServices) SetMem(buf []byte, value uint8) {
	t := s.table()

	if t.SetMem == nil {
		missing("SetMem")
	}

	if len(buf) == 0 {
		return
	}

	t.SetMem(unsafe.Pointer(&buf[0]), uint64(len(buf)), value)
}

// InstallConfigurationTable calls
// EFI_BOOT_SERVICES.InstallConfigurationTable(), the table is encoded with
// its IntoRawMut method.
func InstallConfigurationTable[S staticptr.StaticPtrMut[S]](s *BootServices, guid *efi.GUID, table S) error {
	raw := table.IntoRawMut()

	if err := s.InstallConfigurationTableUnchecked(guid, raw); err != nil {
		release[S](raw)
		return err
	}

	return nil
}

// InstallConfigurationTableUnchecked calls
// EFI_BOOT_SERVICES.InstallConfigurationTable() with a raw table pointer, a
// nil table removes the entry.
func (s *BootServices) InstallConfigurationTableUnchecked(guid *efi.GUID, table unsafe.Pointer) error {
	t := s.table()

	if t.InstallConfigurationTable == nil {
		missing("InstallConfigurationTable")
	}

	return parseStatus(t.InstallConfigurationTable(guid, table))
}

// CalculateCRC32 calls EFI_BOOT_SERVICES.CalculateCrc32().
func (s *BootServices) CalculateCRC32(data []byte) (crc uint32, err error) {
	var p unsafe.Pointer

	if len(data) > 0 {
		p = unsafe.Pointer(&data[0])
	}

	return s.calculateCRC32(p, uint64(len(data)))
}

// CalculateCRC32Of computes the CRC32 of the memory representation of v.
func CalculateCRC32Of[T any](s *BootServices, v *T) (uint32, error) {
	var zero T
	return s.calculateCRC32(unsafe.Pointer(v), uint64(unsafe.Sizeof(zero)))
}

func (s *BootServices) calculateCRC32(p unsafe.Pointer, size uint64) (crc uint32, err error) {
	t := s.table()

	if t.CalculateCrc32 == nil {
		missing("CalculateCrc32")
	}

	if err = parseStatus(t.CalculateCrc32(p, size, &crc)); err != nil {
		return 0, err
	}

	return
}
