// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"unsafe"

	"github.com/u-root/u-root/pkg/boot/bzimage"

	"github.com/usbarmory/go-boot-services/efi"
)

// memoryMapMargin accounts for descriptors added by the allocation of the
// memory map buffer itself.
const memoryMapMargin = 0x400

// MemoryMap represents an EFI Memory Map held in a pool buffer.
type MemoryMap struct {
	// MapKey identifies the memory map state, for use with
	// ExitBootServices
	MapKey uint64
	// DescriptorSize is the stride, in bytes, between descriptors
	DescriptorSize uint64
	// DescriptorVersion is the EFI_MEMORY_DESCRIPTOR version
	DescriptorVersion uint32

	buf *Buffer[byte]
}

// GetMemoryMap calls EFI_BOOT_SERVICES.GetMemoryMap().
//
// The returned map holds a pool allocation (of EfiBootServicesData type)
// which must be freed with Release. A map which grows between the size probe
// and the retrieval beyond the allocation margin returns a *SizeError
// carrying the required size.
func (s *BootServices) GetMemoryMap() (m *MemoryMap, err error) {
	t := s.table()

	if t.GetMemoryMap == nil {
		missing("GetMemoryMap")
	}

	m = &MemoryMap{}

	buf, size, err := s.discover(efi.EfiBootServicesData, memoryMapMargin, func(size *uint64, buf unsafe.Pointer) efi.Status {
		return t.GetMemoryMap(size, buf, &m.MapKey, &m.DescriptorSize, &m.DescriptorVersion)
	})

	if err != nil {
		return nil, err
	}

	m.buf = BufferFromRaw[byte](s, buf, int(size))

	if m.buf.Len() > 0 && m.DescriptorSize < uint64(unsafe.Sizeof(efi.MemoryDescriptor{})) {
		m.buf.Release()
		return nil, errors.New("invalid memory descriptor size")
	}

	return
}

// Len returns the number of descriptors.
func (m *MemoryMap) Len() int {
	if m.DescriptorSize == 0 {
		return 0
	}

	return m.buf.Len() / int(m.DescriptorSize)
}

// Descriptor returns a copy of the i-th descriptor.
func (m *MemoryMap) Descriptor(i int) efi.MemoryDescriptor {
	if i < 0 || i >= m.Len() {
		panic("uefi: memory descriptor index out of range")
	}

	b := m.buf.Slice()

	return *(*efi.MemoryDescriptor)(unsafe.Pointer(&b[i*int(m.DescriptorSize)]))
}

// Descriptors returns a copy of all descriptors.
func (m *MemoryMap) Descriptors() (d []efi.MemoryDescriptor) {
	for i := 0; i < m.Len(); i++ {
		d = append(d, m.Descriptor(i))
	}

	return
}

// E820 converts the memory map to x86 E820 entries suitable for use after
// exiting EFI Boot Services.
func (m *MemoryMap) E820() (e []bzimage.E820Entry) {
	for _, d := range m.Descriptors() {
		e = append(e, d.E820())
	}

	return
}

// Release frees the memory map buffer.
func (m *MemoryMap) Release() error {
	return m.buf.Release()
}
