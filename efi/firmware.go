// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago && amd64

package efi

import (
	"errors"
	"sync"
	"unsafe"
)

// EFI Boot Services offsets
const (
	raiseTPL                   = 0x18
	restoreTPL                 = 0x20
	allocatePages              = 0x28
	freePages                  = 0x30
	getMemoryMap               = 0x38
	allocatePool               = 0x40
	freePool                   = 0x48
	createEvent                = 0x50
	setTimer                   = 0x58
	waitForEvent               = 0x60
	signalEvent                = 0x68
	closeEvent                 = 0x70
	checkEvent                 = 0x78
	installProtocolInterface   = 0x80
	reinstallProtocolInterface = 0x88
	uninstallProtocolInterface = 0x90
	handleProtocol             = 0x98
	registerProtocolNotify     = 0xa8
	locateHandle               = 0xb0
	locateDevicePath           = 0xb8
	installConfigurationTable  = 0xc0
	loadImage                  = 0xc8
	startImage                 = 0xd0
	exit                       = 0xd8
	unloadImage                = 0xe0
	exitBootServices           = 0xe8
	getNextMonotonicCount      = 0xf0
	stall                      = 0xf8
	setWatchdogTimer           = 0x100
	connectController          = 0x108
	disconnectController       = 0x110
	openProtocol               = 0x118
	closeProtocol              = 0x120
	openProtocolInformation    = 0x128
	protocolsPerHandle         = 0x130
	locateHandleBuffer         = 0x138
	locateProtocol             = 0x140
	calculateCrc32             = 0x158
	copyMem                    = 0x160
	setMem                     = 0x168
	createEventEx              = 0x170

	headerSize       = 0x18
	bootServicesSize = 0x178
)

// defined in firmware_amd64.s
func callFn(fn uint64, n int, args []uint64) (status uint64)

var mux sync.Mutex

// callService calls the EFI service whose function pointer is stored at the
// argument table slot address.
func callService(slot uint64, args ...uint64) Status {
	mux.Lock()
	defer mux.Unlock()

	return Status(callFn(slot, len(args), args))
}

// This function helps preparing callService arguments.
//
// Obtaining a pointer in this fashion is typically unsafe, however as
// arguments are prepared right before invoking Go assembly it is considered
// safe as it is identical as having pointers in the callService prototype.
func ptrval[T any](p *T) uint64 {
	return uint64(uintptr(unsafe.Pointer(p)))
}

func addr(p unsafe.Pointer) uint64 {
	return uint64(uintptr(p))
}

func boolval(b bool) uint64 {
	if b {
		return 1
	}

	return 0
}

// NewTable binds the EFI Boot Services table at the argument address to a
// [Table], functions not provided by firmware are left nil.
//
// Firmware cannot invoke Go notification functions, CreateEvent and
// CreateEventEx return EFI_UNSUPPORTED when passed a non-nil notify argument.
func NewTable(base uint64) (t *Table, err error) {
	var bs struct {
		Header TableHeader
		Fn     [(bootServicesSize - headerSize) / 8]uint64
	}

	if err = decode(&bs, base); err != nil {
		return
	}

	if bs.Header.Signature != BootServicesSignature {
		return nil, errors.New("EFI Boot Services table pointer is invalid")
	}

	fn := func(off uint64) (uint64, bool) {
		return base + off, bs.Fn[(off-headerSize)/8] != 0
	}

	t = &Table{
		Header: bs.Header,
	}

	if f, ok := fn(raiseTPL); ok {
		t.RaiseTPL = func(newTPL TPL) TPL {
			return TPL(callService(f, uint64(newTPL)))
		}
	}

	if f, ok := fn(restoreTPL); ok {
		t.RestoreTPL = func(oldTPL TPL) {
			callService(f, uint64(oldTPL))
		}
	}

	bindMemory(t, fn)
	bindEvents(t, fn)
	bindProtocols(t, fn)
	bindImages(t, fn)
	bindMisc(t, fn)

	return
}

func bindMemory(t *Table, fn func(uint64) (uint64, bool)) {
	if f, ok := fn(allocatePages); ok {
		t.AllocatePages = func(allocType AllocateType, memoryType MemoryType, pages uint64, memory *PhysicalAddress) Status {
			return callService(f, uint64(allocType), uint64(memoryType), pages, ptrval(memory))
		}
	}

	if f, ok := fn(freePages); ok {
		t.FreePages = func(memory PhysicalAddress, pages uint64) Status {
			return callService(f, uint64(memory), pages)
		}
	}

	if f, ok := fn(getMemoryMap); ok {
		t.GetMemoryMap = func(mapSize *uint64, memoryMap unsafe.Pointer, mapKey *uint64, descriptorSize *uint64, descriptorVersion *uint32) Status {
			return callService(f, ptrval(mapSize), addr(memoryMap), ptrval(mapKey), ptrval(descriptorSize), ptrval(descriptorVersion))
		}
	}

	if f, ok := fn(allocatePool); ok {
		t.AllocatePool = func(poolType MemoryType, size uint64, buffer *unsafe.Pointer) Status {
			return callService(f, uint64(poolType), size, ptrval(buffer))
		}
	}

	if f, ok := fn(freePool); ok {
		t.FreePool = func(buffer unsafe.Pointer) Status {
			return callService(f, addr(buffer))
		}
	}
}

func bindEvents(t *Table, fn func(uint64) (uint64, bool)) {
	if f, ok := fn(createEvent); ok {
		t.CreateEvent = func(eventType EventType, notifyTPL TPL, notify EventNotify, context unsafe.Pointer, event *Event) Status {
			if notify != nil {
				return EFI_UNSUPPORTED
			}

			return callService(f, uint64(eventType), uint64(notifyTPL), 0, addr(context), ptrval(event))
		}
	}

	if f, ok := fn(setTimer); ok {
		t.SetTimer = func(event Event, delay TimerDelay, triggerTime uint64) Status {
			return callService(f, uint64(event), uint64(delay), triggerTime)
		}
	}

	if f, ok := fn(waitForEvent); ok {
		t.WaitForEvent = func(numberOfEvents uint64, events *Event, index *uint64) Status {
			return callService(f, numberOfEvents, ptrval(events), ptrval(index))
		}
	}

	if f, ok := fn(signalEvent); ok {
		t.SignalEvent = func(event Event) Status {
			return callService(f, uint64(event))
		}
	}

	if f, ok := fn(closeEvent); ok {
		t.CloseEvent = func(event Event) Status {
			return callService(f, uint64(event))
		}
	}

	if f, ok := fn(checkEvent); ok {
		t.CheckEvent = func(event Event) Status {
			return callService(f, uint64(event))
		}
	}

	if f, ok := fn(createEventEx); ok {
		t.CreateEventEx = func(eventType EventType, notifyTPL TPL, notify EventNotify, context unsafe.Pointer, eventGroup *GUID, event *Event) Status {
			if notify != nil {
				return EFI_UNSUPPORTED
			}

			return callService(f, uint64(eventType), uint64(notifyTPL), 0, addr(context), ptrval(eventGroup), ptrval(event))
		}
	}
}

func bindProtocols(t *Table, fn func(uint64) (uint64, bool)) {
	if f, ok := fn(installProtocolInterface); ok {
		t.InstallProtocolInterface = func(handle *Handle, protocol *GUID, interfaceType InterfaceType, iface unsafe.Pointer) Status {
			return callService(f, ptrval(handle), ptrval(protocol), uint64(interfaceType), addr(iface))
		}
	}

	if f, ok := fn(reinstallProtocolInterface); ok {
		t.ReinstallProtocolInterface = func(handle Handle, protocol *GUID, oldInterface unsafe.Pointer, newInterface unsafe.Pointer) Status {
			return callService(f, uint64(handle), ptrval(protocol), addr(oldInterface), addr(newInterface))
		}
	}

	if f, ok := fn(uninstallProtocolInterface); ok {
		t.UninstallProtocolInterface = func(handle Handle, protocol *GUID, iface unsafe.Pointer) Status {
			return callService(f, uint64(handle), ptrval(protocol), addr(iface))
		}
	}

	if f, ok := fn(handleProtocol); ok {
		t.HandleProtocol = func(handle Handle, protocol *GUID, iface *unsafe.Pointer) Status {
			return callService(f, uint64(handle), ptrval(protocol), ptrval(iface))
		}
	}

	if f, ok := fn(registerProtocolNotify); ok {
		t.RegisterProtocolNotify = func(protocol *GUID, event Event, registration *Registration) Status {
			return callService(f, ptrval(protocol), uint64(event), ptrval(registration))
		}
	}

	if f, ok := fn(locateHandle); ok {
		t.LocateHandle = func(searchType LocateSearchType, protocol *GUID, searchKey Registration, bufferSize *uint64, buffer *Handle) Status {
			return callService(f, uint64(searchType), ptrval(protocol), uint64(searchKey), ptrval(bufferSize), ptrval(buffer))
		}
	}

	if f, ok := fn(locateDevicePath); ok {
		t.LocateDevicePath = func(protocol *GUID, devicePath **DevicePathNode, device *Handle) Status {
			return callService(f, ptrval(protocol), ptrval(devicePath), ptrval(device))
		}
	}

	if f, ok := fn(installConfigurationTable); ok {
		t.InstallConfigurationTable = func(guid *GUID, table unsafe.Pointer) Status {
			return callService(f, ptrval(guid), addr(table))
		}
	}

	if f, ok := fn(connectController); ok {
		t.ConnectController = func(controllerHandle Handle, driverImageHandle *Handle, remainingDevicePath *DevicePathNode, recursive bool) Status {
			return callService(f, uint64(controllerHandle), ptrval(driverImageHandle), ptrval(remainingDevicePath), boolval(recursive))
		}
	}

	if f, ok := fn(disconnectController); ok {
		t.DisconnectController = func(controllerHandle Handle, driverImageHandle Handle, childHandle Handle) Status {
			return callService(f, uint64(controllerHandle), uint64(driverImageHandle), uint64(childHandle))
		}
	}

	if f, ok := fn(openProtocol); ok {
		t.OpenProtocol = func(handle Handle, protocol *GUID, iface *unsafe.Pointer, agentHandle Handle, controllerHandle Handle, attributes OpenAttribute) Status {
			return callService(f, uint64(handle), ptrval(protocol), ptrval(iface), uint64(agentHandle), uint64(controllerHandle), uint64(attributes))
		}
	}

	if f, ok := fn(closeProtocol); ok {
		t.CloseProtocol = func(handle Handle, protocol *GUID, agentHandle Handle, controllerHandle Handle) Status {
			return callService(f, uint64(handle), ptrval(protocol), uint64(agentHandle), uint64(controllerHandle))
		}
	}

	if f, ok := fn(openProtocolInformation); ok {
		t.OpenProtocolInformation = func(handle Handle, protocol *GUID, entryBuffer **OpenProtocolInformationEntry, entryCount *uint64) Status {
			return callService(f, uint64(handle), ptrval(protocol), ptrval(entryBuffer), ptrval(entryCount))
		}
	}

	if f, ok := fn(protocolsPerHandle); ok {
		t.ProtocolsPerHandle = func(handle Handle, protocolBuffer ***GUID, protocolBufferCount *uint64) Status {
			return callService(f, uint64(handle), ptrval(protocolBuffer), ptrval(protocolBufferCount))
		}
	}

	if f, ok := fn(locateHandleBuffer); ok {
		t.LocateHandleBuffer = func(searchType LocateSearchType, protocol *GUID, searchKey Registration, noHandles *uint64, buffer **Handle) Status {
			return callService(f, uint64(searchType), ptrval(protocol), uint64(searchKey), ptrval(noHandles), ptrval(buffer))
		}
	}

	if f, ok := fn(locateProtocol); ok {
		t.LocateProtocol = func(protocol *GUID, registration Registration, iface *unsafe.Pointer) Status {
			return callService(f, ptrval(protocol), uint64(registration), ptrval(iface))
		}
	}
}

func bindImages(t *Table, fn func(uint64) (uint64, bool)) {
	if f, ok := fn(loadImage); ok {
		t.LoadImage = func(bootPolicy bool, parentImageHandle Handle, devicePath *DevicePathNode, sourceBuffer unsafe.Pointer, sourceSize uint64, imageHandle *Handle) Status {
			return callService(f, boolval(bootPolicy), uint64(parentImageHandle), ptrval(devicePath), addr(sourceBuffer), sourceSize, ptrval(imageHandle))
		}
	}

	if f, ok := fn(startImage); ok {
		t.StartImage = func(imageHandle Handle, exitDataSize *uint64, exitData *unsafe.Pointer) Status {
			return callService(f, uint64(imageHandle), ptrval(exitDataSize), ptrval(exitData))
		}
	}

	if f, ok := fn(exit); ok {
		t.Exit = func(imageHandle Handle, exitStatus Status, exitDataSize uint64, exitData unsafe.Pointer) Status {
			return callService(f, uint64(imageHandle), uint64(exitStatus), exitDataSize, addr(exitData))
		}
	}

	if f, ok := fn(unloadImage); ok {
		t.UnloadImage = func(imageHandle Handle) Status {
			return callService(f, uint64(imageHandle))
		}
	}

	if f, ok := fn(exitBootServices); ok {
		t.ExitBootServices = func(imageHandle Handle, mapKey uint64) Status {
			return callService(f, uint64(imageHandle), mapKey)
		}
	}
}

func bindMisc(t *Table, fn func(uint64) (uint64, bool)) {
	if f, ok := fn(getNextMonotonicCount); ok {
		t.GetNextMonotonicCount = func(count *uint64) Status {
			return callService(f, ptrval(count))
		}
	}

	if f, ok := fn(stall); ok {
		t.Stall = func(microseconds uint64) Status {
			return callService(f, microseconds)
		}
	}

	if f, ok := fn(setWatchdogTimer); ok {
		t.SetWatchdogTimer = func(timeout uint64, watchdogCode uint64, dataSize uint64, watchdogData unsafe.Pointer) Status {
			return callService(f, timeout, watchdogCode, dataSize, addr(watchdogData))
		}
	}

	if f, ok := fn(calculateCrc32); ok {
		t.CalculateCrc32 = func(data unsafe.Pointer, dataSize uint64, crc32 *uint32) Status {
			return callService(f, addr(data), dataSize, ptrval(crc32))
		}
	}

	if f, ok := fn(copyMem); ok {
		t.CopyMem = func(destination unsafe.Pointer, source unsafe.Pointer, length uint64) {
			callService(f, addr(destination), addr(source), length)
		}
	}

	if f, ok := fn(setMem); ok {
		t.SetMem = func(buffer unsafe.Pointer, size uint64, value uint8) {
			callService(f, addr(buffer), size, uint64(value))
		}
	}
}
