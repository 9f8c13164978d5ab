// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package efi

import (
	"unsafe"
)

// Table represents the EFI_BOOT_SERVICES dispatch table, every field maps to
// the service of the same name and is nil when the service is not available.
//
// Pointer arguments must reference memory which remains valid, and is not
// moved, for the duration of the call.
type Table struct {
	Header TableHeader

	// Task Priority Services
	RaiseTPL   func(newTPL TPL) TPL
	RestoreTPL func(oldTPL TPL)

	// Memory Services
	AllocatePages func(allocType AllocateType, memoryType MemoryType, pages uint64, memory *PhysicalAddress) Status
	FreePages     func(memory PhysicalAddress, pages uint64) Status
	GetMemoryMap  func(mapSize *uint64, memoryMap unsafe.Pointer, mapKey *uint64, descriptorSize *uint64, descriptorVersion *uint32) Status
	AllocatePool  func(poolType MemoryType, size uint64, buffer *unsafe.Pointer) Status
	FreePool      func(buffer unsafe.Pointer) Status

	// Event & Timer Services
	CreateEvent  func(eventType EventType, notifyTPL TPL, notify EventNotify, context unsafe.Pointer, event *Event) Status
	SetTimer     func(event Event, delay TimerDelay, triggerTime uint64) Status
	WaitForEvent func(numberOfEvents uint64, events *Event, index *uint64) Status
	SignalEvent  func(event Event) Status
	CloseEvent   func(event Event) Status
	CheckEvent   func(event Event) Status

	// Protocol Handler Services
	InstallProtocolInterface   func(handle *Handle, protocol *GUID, interfaceType InterfaceType, iface unsafe.Pointer) Status
	ReinstallProtocolInterface func(handle Handle, protocol *GUID, oldInterface unsafe.Pointer, newInterface unsafe.Pointer) Status
	UninstallProtocolInterface func(handle Handle, protocol *GUID, iface unsafe.Pointer) Status
	HandleProtocol             func(handle Handle, protocol *GUID, iface *unsafe.Pointer) Status
	RegisterProtocolNotify     func(protocol *GUID, event Event, registration *Registration) Status
	LocateHandle               func(searchType LocateSearchType, protocol *GUID, searchKey Registration, bufferSize *uint64, buffer *Handle) Status
	LocateDevicePath           func(protocol *GUID, devicePath **DevicePathNode, device *Handle) Status
	InstallConfigurationTable  func(guid *GUID, table unsafe.Pointer) Status

	// Image Services
	LoadImage        func(bootPolicy bool, parentImageHandle Handle, devicePath *DevicePathNode, sourceBuffer unsafe.Pointer, sourceSize uint64, imageHandle *Handle) Status
	StartImage       func(imageHandle Handle, exitDataSize *uint64, exitData *unsafe.Pointer) Status
	Exit             func(imageHandle Handle, exitStatus Status, exitDataSize uint64, exitData unsafe.Pointer) Status
	UnloadImage      func(imageHandle Handle) Status
	ExitBootServices func(imageHandle Handle, mapKey uint64) Status

	// Miscellaneous Services
	GetNextMonotonicCount func(count *uint64) Status
	Stall                 func(microseconds uint64) Status
	SetWatchdogTimer      func(timeout uint64, watchdogCode uint64, dataSize uint64, watchdogData unsafe.Pointer) Status

	// DriverSupport Services
	ConnectController    func(controllerHandle Handle, driverImageHandle *Handle, remainingDevicePath *DevicePathNode, recursive bool) Status
	DisconnectController func(controllerHandle Handle, driverImageHandle Handle, childHandle Handle) Status

	// Open and Close Protocol Services
	OpenProtocol            func(handle Handle, protocol *GUID, iface *unsafe.Pointer, agentHandle Handle, controllerHandle Handle, attributes OpenAttribute) Status
	CloseProtocol           func(handle Handle, protocol *GUID, agentHandle Handle, controllerHandle Handle) Status
	OpenProtocolInformation func(handle Handle, protocol *GUID, entryBuffer **OpenProtocolInformationEntry, entryCount *uint64) Status

	// Library Services
	ProtocolsPerHandle func(handle Handle, protocolBuffer ***GUID, protocolBufferCount *uint64) Status
	LocateHandleBuffer func(searchType LocateSearchType, protocol *GUID, searchKey Registration, noHandles *uint64, buffer **Handle) Status
	LocateProtocol     func(protocol *GUID, registration Registration, iface *unsafe.Pointer) Status

	// 32-bit CRC Services
	CalculateCrc32 func(data unsafe.Pointer, dataSize uint64, crc32 *uint32) Status

	// Miscellaneous Services
	CopyMem       func(destination unsafe.Pointer, source unsafe.Pointer, length uint64)
	SetMem        func(buffer unsafe.Pointer, size uint64, value uint8)
	CreateEventEx func(eventType EventType, notifyTPL TPL, notify EventNotify, context unsafe.Pointer, eventGroup *GUID, event *Event) Status
}
