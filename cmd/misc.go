// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/usbarmory/go-boot-services/shell"
)

func init() {
	shell.Add(shell.Cmd{
		Name:    "crc32",
		Args:    1,
		Pattern: regexp.MustCompile(`^crc32 ((?:[[:xdigit:]]{2})+)$`),
		Syntax:  "<hex data>",
		Help:    "EFI_BOOT_SERVICES.CalculateCrc32()",
		Fn:      crc32Cmd,
	})

	shell.Add(shell.Cmd{
		Name: "tables",
		Help: "EFI Configuration Tables",
		Fn:   tablesCmd,
	})

	shell.Add(shell.Cmd{
		Name: "exitbs",
		Help: "EFI_BOOT_SERVICES.ExitBootServices()",
		Fn:   exitCmd,
	})
}

func crc32Cmd(_ *shell.Interface, arg []string) (res string, err error) {
	s, err := services()

	if err != nil {
		return
	}

	data, err := hex.DecodeString(arg[0])

	if err != nil {
		return
	}

	crc, err := s.CalculateCRC32(data)

	if err != nil {
		return
	}

	return fmt.Sprintf("%#08x", crc), nil
}

func tablesCmd(_ *shell.Interface, _ []string) (res string, err error) {
	var buf bytes.Buffer

	if ConfigurationTables == nil {
		return "", errors.New("EFI System Table is not available")
	}

	tables, err := ConfigurationTables()

	if err != nil {
		return
	}

	for _, t := range tables {
		fmt.Fprintf(&buf, "%#08x %s\n", t.VendorTable, guidName(t.GUID))
	}

	return buf.String(), nil
}

func exitCmd(_ *shell.Interface, _ []string) (res string, err error) {
	s, err := services()

	if err != nil {
		return
	}

	memoryMap, err := s.GetMemoryMap()

	if err != nil {
		return
	}

	// freeing the map would invalidate its key
	mapKey := memoryMap.MapKey

	log.Info().Msgf("exiting EFI Boot Services (map key %#x)", mapKey)

	if err = s.ExitBootServices(ImageHandle, mapKey); err != nil {
		memoryMap.Release()
		return
	}

	// the table is no longer valid
	UEFI = nil
	Exited = true

	return "EFI Boot Services exited", nil
}
