// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package efi

import (
	"errors"
	"fmt"

	"github.com/usbarmory/tamago/dma"
)

const align = 8

// decode reads a structure from firmware memory at addr.
func decode(data any, addr uint64) (err error) {
	if addr == 0 {
		return errors.New("invalid address")
	}

	t, err := marshalBinary(data)

	if err != nil {
		return fmt.Errorf("cannot decode %T, %v", data, err)
	}

	n := len(t) + (len(t) % align)

	r, err := dma.NewRegion(uint(addr), n, true)

	if err != nil {
		return
	}

	ptr, buf := r.Reserve(len(t), 0)
	defer r.Release(ptr)

	return unmarshalBinary(buf, data)
}
