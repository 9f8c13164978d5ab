// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package x64

import (
	"fmt"
	"runtime"
	_ "unsafe"

	"github.com/usbarmory/go-boot-services/efi"
	"github.com/usbarmory/go-boot-services/uefi"
)

//go:linkname _unused runtime.ramStart
var _unused uint64 = 0x00100000 // overridden in x64.s

//go:linkname RamSize runtime.ramSize
var RamSize uint64 = 0x2c000000 // 704MB

// allocateHeap reserves the runtime heap, which follows the application
// image, as EfiLoaderData so that firmware does not hand it out.
func allocateHeap() {
	memoryMap, err := UEFI.GetMemoryMap()

	if err != nil {
		fmt.Printf("WARNING: could not get memory map, %v\n", err)
		return
	}

	defer memoryMap.Release()

	heapStart := efi.PhysicalAddress(0)
	ramStart, ramEnd := runtime.MemRegion()

	// locate runtime heap offset within UEFI memory allocation
	for _, desc := range memoryMap.Descriptors() {
		if desc.Type == efi.EfiLoaderCode && uint64(desc.PhysicalStart) == uint64(ramStart) {
			heapStart = desc.PhysicalEnd()
			break
		}
	}

	if heapStart == 0 {
		fmt.Println("WARNING: could not find heap offset")
		return
	}

	pages := efi.Pages(uint64(ramEnd) - uint64(heapStart))

	if _, err := UEFI.AllocatePages(uefi.Address(heapStart), efi.EfiLoaderData, pages); err != nil {
		fmt.Printf("WARNING: could not allocate heap at %#x, %v\n", heapStart, err)
	}
}
