// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package efi

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"regexp"
)

var guidPattern = regexp.MustCompile(`^([[:xdigit:]]{8})-([[:xdigit:]]{4})-([[:xdigit:]]{4})-([[:xdigit:]]{4})-([[:xdigit:]]{12})$`)

// GUID represents an EFI_GUID as a 16-byte array with the native EFI byte
// order, the first three fields of the registry string format are stored as
// little-endian values.
type GUID [16]byte

// ParseGUID parses a GUID in registry string format
// (xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx).
func ParseGUID(s string) (g GUID, err error) {
	var off int

	m := guidPattern.FindStringSubmatch(s)

	if len(m) != 6 {
		return GUID{}, fmt.Errorf("invalid GUID format: %q", s)
	}

	for i, field := range m[1:] {
		buf, err := hex.DecodeString(field)

		if err != nil {
			return GUID{}, err
		}

		// the first three fields are little-endian
		if i < 3 {
			for j := len(buf) - 1; j >= 0; j-- {
				g[off] = buf[j]
				off++
			}
			continue
		}

		off += copy(g[off:], buf)
	}

	return
}

// MustParseGUID is like ParseGUID but panics on error, it is intended for
// package level GUID declarations.
func MustParseGUID(s string) GUID {
	g, err := ParseGUID(s)

	if err != nil {
		panic(err)
	}

	return g
}

// String returns the registry format string representation of the GUID.
// https://uefi.org/specs/UEFI/2.10/Apx_A_GUID_and_Time_Formats.html
func (g GUID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%x-%x",
		binary.LittleEndian.Uint32(g[0:4]),
		binary.LittleEndian.Uint16(g[4:6]),
		binary.LittleEndian.Uint16(g[6:8]),
		g[8:10],
		g[10:])
}
