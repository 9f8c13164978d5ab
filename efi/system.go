// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package efi

import (
	"encoding/binary"
	"errors"

	"github.com/usbarmory/tamago/dma"
)

// GetSystemTable decodes the EFI System Table at the argument address.
func GetSystemTable(addr uint64) (st *SystemTable, err error) {
	st = &SystemTable{}

	if err = decode(st, addr); err != nil {
		return nil, err
	}

	if st.Header.Signature != SystemTableSignature {
		return nil, errors.New("EFI System Table pointer is invalid")
	}

	return
}

// ConfigurationTables returns the EFI Configuration Tables.
func (d *SystemTable) ConfigurationTables() (c []*ConfigurationTable, err error) {
	if d.NumberOfTableEntries == 0 || d.ConfigurationTable == 0 {
		return nil, errors.New("EFI Configuration Table is invalid")
	}

	entrySize := binary.Size(ConfigurationTable{})
	tableSize := entrySize * int(d.NumberOfTableEntries)

	r, err := dma.NewRegion(uint(d.ConfigurationTable), tableSize, false)

	if err != nil {
		return
	}

	addr, buf := r.Reserve(tableSize, 0)
	defer r.Release(addr)

	for i := 0; i < tableSize; i += entrySize {
		t := &ConfigurationTable{}

		if err = unmarshalBinary(buf[i:i+entrySize], t); err != nil {
			return
		}

		c = append(c, t)
	}

	return
}
