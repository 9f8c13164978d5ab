// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package efi

import (
	"github.com/u-root/u-root/pkg/boot/bzimage"
)

// PageSize represents the EFI page size in bytes
const PageSize = 4096 // 4 KiB

// Advanced Configuration and Power Interface Specification (ACPI)
// Version 6.0 - Table 15-312 Address Range Types12
const AddressRangePersistentMemory = 7

// AllocateType represents an EFI_ALLOCATE_TYPE.
type AllocateType uint32

// EFI_ALLOCATE_TYPE
const (
	AllocateAnyPages AllocateType = iota
	AllocateMaxAddress
	AllocateAddress
	MaxAllocateType
)

// MemoryType represents an EFI_MEMORY_TYPE.
type MemoryType uint32

// EFI_MEMORY_TYPE
const (
	EfiReservedMemoryType MemoryType = iota
	EfiLoaderCode
	EfiLoaderData
	EfiBootServicesCode
	EfiBootServicesData
	EfiRuntimeServicesCode
	EfiRuntimeServicesData
	EfiConventionalMemory
	EfiUnusableMemory
	EfiACPIReclaimMemory
	EfiACPIMemoryNVS
	EfiMemoryMappedIO
	EfiMemoryMappedIOPortSpace
	EfiPalCode
	EfiPersistentMemory
	EfiUnacceptedMemoryType
	EfiMaxMemoryType
)

var memoryTypeNames = [...]string{
	"Reserved",
	"LoaderCode",
	"LoaderData",
	"BootServicesCode",
	"BootServicesData",
	"RuntimeServicesCode",
	"RuntimeServicesData",
	"Conventional",
	"Unusable",
	"ACPIReclaim",
	"ACPIMemoryNVS",
	"MemoryMappedIO",
	"MemoryMappedIOPortSpace",
	"PalCode",
	"Persistent",
	"Unaccepted",
}

func (t MemoryType) String() string {
	if int(t) < len(memoryTypeNames) {
		return memoryTypeNames[t]
	}

	return "OEM/OSV"
}

// Pages returns the number of pages required to hold size bytes.
func Pages(size uint64) uint64 {
	return (size + PageSize - 1) / PageSize
}

// MemoryDescriptor represents an EFI_MEMORY_DESCRIPTOR.
//
// Firmware reports descriptors with a stride (descriptor size) which can
// exceed the size of this structure.
type MemoryDescriptor struct {
	Type          MemoryType
	_             uint32
	PhysicalStart PhysicalAddress
	VirtualStart  uint64
	NumberOfPages uint64
	Attribute     uint64
}

// PhysicalEnd returns the descriptor physical end address.
func (d *MemoryDescriptor) PhysicalEnd() PhysicalAddress {
	return d.PhysicalStart + PhysicalAddress(d.NumberOfPages*PageSize)
}

// Size returns the descriptor size in bytes.
func (d *MemoryDescriptor) Size() uint64 {
	return d.NumberOfPages * PageSize
}

// E820 converts an EFI Memory Map entry to an x86 E820 one suitable for use
// after exiting EFI Boot Services.
func (d *MemoryDescriptor) E820() bzimage.E820Entry {
	e := bzimage.E820Entry{
		Addr: uint64(d.PhysicalStart),
		Size: d.Size(),
	}

	// Unified Extensible Firmware Interface (UEFI) Specification
	// Version 2.10 - Table 7.10: Memory Type Usage after ExitBootServices()
	switch d.Type {
	case EfiLoaderCode, EfiLoaderData, EfiBootServicesCode, EfiBootServicesData, EfiConventionalMemory:
		e.MemType = bzimage.RAM
	case EfiPersistentMemory:
		e.MemType = AddressRangePersistentMemory
	case EfiACPIReclaimMemory:
		e.MemType = bzimage.ACPI
	case EfiACPIMemoryNVS:
		e.MemType = bzimage.NVS
	default:
		e.MemType = bzimage.Reserved
	}

	return e
}
