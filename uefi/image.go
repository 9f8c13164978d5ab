// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"unsafe"

	"github.com/usbarmory/go-boot-services/efi"
)

// LoadImage calls EFI_BOOT_SERVICES.LoadImage(), the image is read from
// source when not empty, otherwise from the device path.
func (s *BootServices) LoadImage(bootPolicy bool, parent efi.Handle, devicePath *efi.DevicePathNode, source []byte) (image efi.Handle, err error) {
	var buf unsafe.Pointer

	t := s.table()

	if t.LoadImage == nil {
		missing("LoadImage")
	}

	if len(source) > 0 {
		buf = unsafe.Pointer(&source[0])
	}

	if err = parseStatus(t.LoadImage(bootPolicy, parent, devicePath, buf, uint64(len(source)), &image)); err != nil {
		return 0, err
	}

	return
}

// LoadImageFromSource loads an image from a memory buffer.
func (s *BootServices) LoadImageFromSource(parent efi.Handle, source []byte) (efi.Handle, error) {
	return s.LoadImage(false, parent, nil, source)
}

// LoadImageFromFile loads an image from a device path, bootPolicy
// indicates that the request originates from the boot manager.
func (s *BootServices) LoadImageFromFile(parent efi.Handle, devicePath *efi.DevicePathNode, bootPolicy bool) (efi.Handle, error) {
	return s.LoadImage(bootPolicy, parent, devicePath, nil)
}

// StartImage calls EFI_BOOT_SERVICES.StartImage(), on image failure the
// returned *ImageError carries the optional exit data.
func (s *BootServices) StartImage(image efi.Handle) error {
	var size uint64
	var data unsafe.Pointer

	t := s.table()

	if t.StartImage == nil {
		missing("StartImage")
	}

	status := t.StartImage(image, &size, &data)

	if !status.IsError() {
		return nil
	}

	err := &ImageError{
		Status: status,
	}

	if data != nil {
		err.ExitData = BufferFromRaw[byte](s, data, int(size))
	}

	return err
}

// UnloadImage calls EFI_BOOT_SERVICES.UnloadImage().
func (s *BootServices) UnloadImage(image efi.Handle) error {
	t := s.table()

	if t.UnloadImage == nil {
		missing("UnloadImage")
	}

	return parseStatus(t.UnloadImage(image))
}

// Exit calls EFI_BOOT_SERVICES.Exit(), the optional exit data (which must be
// a pool allocation) is handed over to firmware on success.
func (s *BootServices) Exit(image efi.Handle, status efi.Status, data *Buffer[byte]) error {
	var size uint64
	var ptr unsafe.Pointer

	t := s.table()

	if t.Exit == nil {
		missing("Exit")
	}

	if data != nil {
		ptr = data.Pointer()
		size = data.Size()
	}

	if err := parseStatus(t.Exit(image, status, size, ptr)); err != nil {
		return err
	}

	if data != nil {
		data.detach()
	}

	return nil
}

// ExitBootServices calls EFI_BOOT_SERVICES.ExitBootServices(), the map key
// must be obtained from the latest GetMemoryMap call.
func (s *BootServices) ExitBootServices(image efi.Handle, mapKey uint64) error {
	t := s.table()

	if t.ExitBootServices == nil {
		missing("ExitBootServices")
	}

	return parseStatus(t.ExitBootServices(image, mapKey))
}
