// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/usbarmory/go-boot-services/efi"
	"github.com/usbarmory/go-boot-services/shell"
	"github.com/usbarmory/go-boot-services/uefi"
)

// poolPattern fills pool allocations of the pool command
const poolPattern = 0xa5

func init() {
	shell.Add(shell.Cmd{
		Name: "memmap",
		Help: "EFI_BOOT_SERVICES.GetMemoryMap()",
		Fn:   memmapCmd,
	})

	shell.Add(shell.Cmd{
		Name: "e820",
		Help: "EFI memory map as E820 entries",
		Fn:   e820Cmd,
	})

	shell.Add(shell.Cmd{
		Name:    "alloc",
		Args:    2,
		Pattern: regexp.MustCompile(`^alloc ([[:xdigit:]]+) (\d+)$`),
		Syntax:  "<hex offset> <size>",
		Help:    "EFI_BOOT_SERVICES.AllocatePages()",
		Fn:      allocCmd,
	})

	shell.Add(shell.Cmd{
		Name:    "free",
		Args:    2,
		Pattern: regexp.MustCompile(`^free ([[:xdigit:]]+) (\d+)$`),
		Syntax:  "<hex offset> <size>",
		Help:    "EFI_BOOT_SERVICES.FreePages()",
		Fn:      freeCmd,
	})

	shell.Add(shell.Cmd{
		Name:    "pool",
		Args:    1,
		Pattern: regexp.MustCompile(`^pool (\d+)$`),
		Syntax:  "<size>",
		Help:    "EFI_BOOT_SERVICES.AllocatePool(), SetMem(), FreePool()",
		Fn:      poolCmd,
	})
}

func memmapCmd(_ *shell.Interface, _ []string) (res string, err error) {
	var buf bytes.Buffer

	s, err := services()

	if err != nil {
		return
	}

	memoryMap, err := s.GetMemoryMap()

	if err != nil {
		return
	}

	defer memoryMap.Release()

	fmt.Fprintf(&buf, "Type Start            End              Pages            Attributes\n")

	for _, desc := range memoryMap.Descriptors() {
		fmt.Fprintf(&buf, "%02d   %016x %016x %016x %016x\n",
			desc.Type, desc.PhysicalStart, desc.PhysicalEnd()-1, desc.NumberOfPages, desc.Attribute)
	}

	fmt.Fprintf(&buf, "Map Key: %#x, Descriptor Size: %d, Version: %d",
		memoryMap.MapKey, memoryMap.DescriptorSize, memoryMap.DescriptorVersion)

	return buf.String(), err
}

func e820Cmd(_ *shell.Interface, _ []string) (res string, err error) {
	var buf bytes.Buffer

	s, err := services()

	if err != nil {
		return
	}

	memoryMap, err := s.GetMemoryMap()

	if err != nil {
		return
	}

	defer memoryMap.Release()

	fmt.Fprintf(&buf, "Start            End              Type\n")

	for _, e := range memoryMap.E820() {
		fmt.Fprintf(&buf, "%016x %016x %d\n", e.Addr, e.Addr+e.Size-1, e.MemType)
	}

	return buf.String(), err
}

func parseRange(arg []string) (addr uint64, size uint64, err error) {
	if addr, err = strconv.ParseUint(arg[0], 16, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid address, %v", err)
	}

	if size, err = strconv.ParseUint(arg[1], 10, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid size, %v", err)
	}

	if addr%efi.PageSize != 0 {
		return 0, 0, fmt.Errorf("address must be %d bytes aligned", efi.PageSize)
	}

	if size == 0 {
		return 0, 0, fmt.Errorf("invalid size")
	}

	return
}

func allocCmd(_ *shell.Interface, arg []string) (res string, err error) {
	s, err := services()

	if err != nil {
		return
	}

	addr, size, err := parseRange(arg)

	if err != nil {
		return
	}

	pages := efi.Pages(size)

	log.Info().Msgf("allocating memory range %#08x - %#08x", addr, addr+pages*efi.PageSize)

	if _, err = s.AllocatePages(uefi.Address(efi.PhysicalAddress(addr)), efi.EfiLoaderData, pages); err != nil {
		return
	}

	return fmt.Sprintf("allocated %d pages at %#08x", pages, addr), nil
}

func freeCmd(_ *shell.Interface, arg []string) (res string, err error) {
	s, err := services()

	if err != nil {
		return
	}

	addr, size, err := parseRange(arg)

	if err != nil {
		return
	}

	pages := efi.Pages(size)

	log.Info().Msgf("freeing memory range %#08x - %#08x", addr, addr+pages*efi.PageSize)

	if err = s.FreePages(efi.PhysicalAddress(addr), pages); err != nil {
		return
	}

	return fmt.Sprintf("freed %d pages at %#08x", pages, addr), nil
}

func poolCmd(_ *shell.Interface, arg []string) (res string, err error) {
	s, err := services()

	if err != nil {
		return
	}

	size, err := strconv.ParseUint(arg[0], 10, 64)

	if err != nil || size == 0 {
		return "", fmt.Errorf("invalid size")
	}

	ptr, err := s.AllocatePool(efi.EfiLoaderData, size)

	if err != nil {
		return
	}

	buf := uefi.BufferFromRaw[byte](s, ptr, int(size))
	defer buf.Release()

	s.SetMem(buf.Slice(), poolPattern)

	crc, err := s.CalculateCRC32(buf.Slice())

	if err != nil {
		return
	}

	return fmt.Sprintf("allocated %d bytes at %p, crc32 %#08x", size, ptr, crc), nil
}
