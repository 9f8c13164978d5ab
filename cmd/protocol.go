// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/usbarmory/go-boot-services/efi"
	"github.com/usbarmory/go-boot-services/shell"
	"github.com/usbarmory/go-boot-services/uefi"
)

func init() {
	shell.Add(shell.Cmd{
		Name:    "protocol",
		Args:    1,
		Pattern: regexp.MustCompile(`^protocol ` + guidOrName + `$`),
		Syntax:  "<registry format GUID|name>",
		Help:    "EFI_BOOT_SERVICES.LocateProtocol()",
		Fn:      locateCmd,
	})

	shell.Add(shell.Cmd{
		Name:    "handles",
		Args:    1,
		Pattern: regexp.MustCompile(`^handles(?: ` + guidOrName + `)?$`),
		Syntax:  "(registry format GUID|name)?",
		Help:    "EFI_BOOT_SERVICES.LocateHandleBuffer()",
		Fn:      handlesCmd,
	})

	shell.Add(shell.Cmd{
		Name:    "protocols",
		Args:    1,
		Pattern: regexp.MustCompile(`^protocols (?:0x)?([[:xdigit:]]+)$`),
		Syntax:  "<hex handle>",
		Help:    "EFI_BOOT_SERVICES.ProtocolsPerHandle()",
		Fn:      protocolsCmd,
	})
}

func locateCmd(_ *shell.Interface, arg []string) (res string, err error) {
	s, err := services()

	if err != nil {
		return
	}

	guid, err := parseGUID(arg[0])

	if err != nil {
		return
	}

	iface, err := s.LocateProtocolUnchecked(&guid, 0)

	if err != nil {
		return
	}

	return fmt.Sprintf("%s: %#08x", guidName(guid), uintptr(iface)), nil
}

func handlesCmd(_ *shell.Interface, arg []string) (res string, err error) {
	var buf bytes.Buffer

	s, err := services()

	if err != nil {
		return
	}

	search := uefi.AllHandles()

	if len(arg[0]) > 0 {
		guid, err := parseGUID(arg[0])

		if err != nil {
			return "", err
		}

		search = uefi.HandleSearch{Type: efi.ByProtocol, Protocol: &guid}
	}

	handles, err := s.LocateHandleBuffer(search)

	if err != nil {
		return
	}

	defer handles.Release()

	for _, h := range handles.Slice() {
		fmt.Fprintf(&buf, "%#08x\n", uintptr(h))
	}

	fmt.Fprintf(&buf, "%d handles", handles.Len())

	return buf.String(), nil
}

func protocolsCmd(_ *shell.Interface, arg []string) (res string, err error) {
	var buf bytes.Buffer

	s, err := services()

	if err != nil {
		return
	}

	handle, err := parseHex(arg[0])

	if err != nil {
		return
	}

	guids, err := s.ProtocolsPerHandle(efi.Handle(handle))

	if err != nil {
		return
	}

	for _, g := range guids {
		fmt.Fprintf(&buf, "%s\n", guidName(g))
	}

	return buf.String(), nil
}
