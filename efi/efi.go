// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package efi declares the Unified Extensible Firmware Interface (UEFI) Boot
// Services contract following the specifications at:
//
//	https://uefi.org/specs/UEFI/2.10/07_Services_Boot_Services.html
//
// The EFI_BOOT_SERVICES dispatch table is represented by [Table], a structure
// of function fields laid out in table order, each nil when the corresponding
// service is not provided.
//
// With `GOOS=tamago` and `GOARCH=amd64` the package also binds a [Table] to
// firmware provided memory, see [NewTable] and [GetSystemTable].
package efi

// Handle represents an opaque collection of protocol interfaces.
type Handle uintptr

// Event represents an opaque firmware event.
type Event uintptr

// Registration represents an opaque key returned by RegisterProtocolNotify.
type Registration uintptr

// PhysicalAddress represents an EFI_PHYSICAL_ADDRESS.
type PhysicalAddress uint64

// InterfaceType represents an EFI_INTERFACE_TYPE.
type InterfaceType uint32

// EFI_INTERFACE_TYPE
const (
	EFI_NATIVE_INTERFACE InterfaceType = iota
)

// TableHeader represents the data structure that precedes all of the standard
// EFI table types.
type TableHeader struct {
	Signature  uint64
	Revision   uint32
	HeaderSize uint32
	CRC32      uint32
	Reserved   uint32
}

// SystemTable represents the EFI System Table, containing pointers to the
// runtime and boot services tables.
type SystemTable struct {
	Header               TableHeader
	FirmwareVendor       uint64
	FirmwareRevision     uint32
	_                    uint32
	ConsoleInHandle      uint64
	ConIn                uint64
	ConsoleOutHandle     uint64
	ConOut               uint64
	StandardErrorHandle  uint64
	StdErr               uint64
	RuntimeServices      uint64
	BootServices         uint64
	NumberOfTableEntries uint64
	ConfigurationTable   uint64
}

// ConfigurationTable represents an EFI Configuration Table.
type ConfigurationTable struct {
	GUID        GUID
	VendorTable uint64
}

// SystemTableSignature is the EFI System Table header signature.
const SystemTableSignature = 0x5453595320494249 // TSYS IBI

// BootServicesSignature is the EFI Boot Services table header signature.
const BootServicesSignature = 0x56524553544f4f42 // VRESTOOB
