// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cmd registers shell commands exercising the EFI Boot Services.
package cmd

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/usbarmory/go-boot-services/efi"
	"github.com/usbarmory/go-boot-services/uefi"
)

var (
	// UEFI is the Boot Services instance used by all commands.
	UEFI *uefi.BootServices

	// Exited is set once EFI Boot Services have been exited, UEFI is
	// cleared at the same time.
	Exited bool

	// ImageHandle is the handle of the running application image.
	ImageHandle efi.Handle

	// ConfigurationTables returns the EFI Configuration Tables, it is nil
	// when the system table is not available.
	ConfigurationTables func() ([]*efi.ConfigurationTable, error)
)

// Protocols maps names, accepted by commands in place of registry format
// GUIDs, to protocol and configuration table GUIDs.
var Protocols = map[string]efi.GUID{
	"loaded-image": efi.EFI_LOADED_IMAGE_PROTOCOL_GUID,
	"device-path":  efi.EFI_DEVICE_PATH_PROTOCOL_GUID,
	"simple-fs":    efi.EFI_SIMPLE_FILE_SYSTEM_PROTOCOL_GUID,
	"text-in":      efi.EFI_SIMPLE_TEXT_INPUT_PROTOCOL_GUID,
	"text-out":     efi.EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL_GUID,
	"gop":          efi.EFI_GRAPHICS_OUTPUT_PROTOCOL_GUID,
	"snp":          efi.EFI_SIMPLE_NETWORK_PROTOCOL_GUID,
	"rng":          efi.EFI_RNG_PROTOCOL_GUID,
	"acpi":         efi.ACPI_20_TABLE_GUID,
	"smbios3":      efi.SMBIOS3_TABLE_GUID,
	"dtb":          efi.EFI_DTB_TABLE_GUID,
	"memattr":      efi.EFI_MEMORY_ATTRIBUTES_TABLE_GUID,
}

const guidOrName = `([[:xdigit:]]{8}-[[:xdigit:]]{4}-[[:xdigit:]]{4}-[[:xdigit:]]{4}-[[:xdigit:]]{12}|[[:alnum:]-]+)`

func services() (*uefi.BootServices, error) {
	if UEFI == nil || !UEFI.Initialized() {
		return nil, errors.New("EFI Boot Services are not available")
	}

	return UEFI, nil
}

func parseGUID(s string) (efi.GUID, error) {
	if g, ok := Protocols[s]; ok {
		return g, nil
	}

	return efi.ParseGUID(s)
}

func guidName(g efi.GUID) string {
	var names []string

	for name, guid := range Protocols {
		if guid == g {
			names = append(names, name)
		}
	}

	if len(names) == 0 {
		return g.String()
	}

	sort.Strings(names)

	return fmt.Sprintf("%s (%s)", g, strings.Join(names, ", "))
}

func parseHex(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
}
