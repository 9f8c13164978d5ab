// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"slices"
	"unsafe"

	"github.com/usbarmory/go-boot-services/efi"
)

// HandleSearch represents the search criteria of LocateHandle and
// LocateHandleBuffer.
type HandleSearch struct {
	Type         efi.LocateSearchType
	Protocol     *efi.GUID
	Registration efi.Registration
}

// AllHandles returns a search matching every handle.
func AllHandles() HandleSearch {
	return HandleSearch{Type: efi.AllHandles}
}

// ByProtocol returns a search matching handles supporting a protocol.
func ByProtocol(p Identity) HandleSearch {
	return HandleSearch{Type: efi.ByProtocol, Protocol: p.GUID()}
}

// ByRegisterNotify returns a search matching the next handle which received
// a protocol interface registered with RegisterProtocolNotify.
func ByRegisterNotify(registration efi.Registration) HandleSearch {
	return HandleSearch{Type: efi.ByRegisterNotify, Registration: registration}
}

// LocateHandle calls EFI_BOOT_SERVICES.LocateHandle(), the handle buffer is
// sized by probing firmware first.
func (s *BootServices) LocateHandle(search HandleSearch) (*Buffer[efi.Handle], error) {
	t := s.table()

	if t.LocateHandle == nil {
		missing("LocateHandle")
	}

	buf, size, err := s.discover(efi.EfiBootServicesData, 0, func(size *uint64, buf unsafe.Pointer) efi.Status {
		return t.LocateHandle(search.Type, search.Protocol, search.Registration, size, (*efi.Handle)(buf))
	})

	if err != nil {
		return nil, err
	}

	return BufferFromRaw[efi.Handle](s, buf, int(size/uint64(unsafe.Sizeof(efi.Handle(0))))), nil
}

// LocateHandleBuffer calls EFI_BOOT_SERVICES.LocateHandleBuffer(), the
// returned buffer is allocated by firmware.
func (s *BootServices) LocateHandleBuffer(search HandleSearch) (*Buffer[efi.Handle], error) {
	var n uint64
	var buf *efi.Handle

	t := s.table()

	if t.LocateHandleBuffer == nil {
		missing("LocateHandleBuffer")
	}

	if err := parseStatus(t.LocateHandleBuffer(search.Type, search.Protocol, search.Registration, &n, &buf)); err != nil {
		return nil, err
	}

	return BufferFromRaw[efi.Handle](s, unsafe.Pointer(buf), int(n)), nil
}

// LocateDevicePath calls EFI_BOOT_SERVICES.LocateDevicePath() and returns
// the handle closest to the device path along with the unmatched
// remainder.
func (s *BootServices) LocateDevicePath(p Identity, devicePath *efi.DevicePathNode) (device efi.Handle, remaining *efi.DevicePathNode, err error) {
	t := s.table()

	if t.LocateDevicePath == nil {
		missing("LocateDevicePath")
	}

	remaining = devicePath

	if err = parseStatus(t.LocateDevicePath(p.GUID(), &remaining, &device)); err != nil {
		return 0, nil, err
	}

	return
}

// ProtocolsPerHandleBuffer calls EFI_BOOT_SERVICES.ProtocolsPerHandle(), the
// returned pointers reference firmware memory and are valid only while the
// protocols remain installed.
func (s *BootServices) ProtocolsPerHandleBuffer(handle efi.Handle) (*Buffer[*efi.GUID], error) {
	var n uint64
	var buf **efi.GUID

	t := s.table()

	if t.ProtocolsPerHandle == nil {
		missing("ProtocolsPerHandle")
	}

	if err := parseStatus(t.ProtocolsPerHandle(handle, &buf, &n)); err != nil {
		return nil, err
	}

	return BufferFromRaw[*efi.GUID](s, unsafe.Pointer(buf), int(n)), nil
}

// ProtocolsPerHandle is like ProtocolsPerHandleBuffer but returns copies of
// the GUIDs, the firmware buffer is freed before returning.
func (s *BootServices) ProtocolsPerHandle(handle efi.Handle) (guids []efi.GUID, err error) {
	b, err := s.ProtocolsPerHandleBuffer(handle)

	if err != nil {
		return
	}

	defer b.Release()

	for _, g := range b.Slice() {
		guids = append(guids, *g)
	}

	return
}

// OpenProtocolInformation calls EFI_BOOT_SERVICES.OpenProtocolInformation().
func (s *BootServices) OpenProtocolInformation(handle efi.Handle, p Identity) (*Buffer[efi.OpenProtocolInformationEntry], error) {
	var n uint64
	var buf *efi.OpenProtocolInformationEntry

	t := s.table()

	if t.OpenProtocolInformation == nil {
		missing("OpenProtocolInformation")
	}

	if err := parseStatus(t.OpenProtocolInformation(handle, p.GUID(), &buf, &n)); err != nil {
		return nil, err
	}

	return BufferFromRaw[efi.OpenProtocolInformationEntry](s, unsafe.Pointer(buf), int(n)), nil
}

// ConnectController calls EFI_BOOT_SERVICES.ConnectController(), the driver
// list is passed to firmware null-terminated.
func (s *BootServices) ConnectController(controller efi.Handle, drivers []efi.Handle, remainingDevicePath *efi.DevicePathNode, recursive bool) error {
	var p *efi.Handle

	t := s.table()

	if t.ConnectController == nil {
		missing("ConnectController")
	}

	if len(drivers) > 0 {
		list := append(slices.Clone(drivers), 0)
		p = &list[0]
	}

	return parseStatus(t.ConnectController(controller, p, remainingDevicePath, recursive))
}

// DisconnectController calls EFI_BOOT_SERVICES.DisconnectController(), zero
// driver and child handles select all of them.
func (s *BootServices) DisconnectController(controller efi.Handle, driver efi.Handle, child efi.Handle) error {
	t := s.table()

	if t.DisconnectController == nil {
		missing("DisconnectController")
	}

	return parseStatus(t.DisconnectController(controller, driver, child))
}
