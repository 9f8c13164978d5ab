// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"fmt"
	"unicode/utf16"

	"github.com/usbarmory/go-boot-services/efi"
)

// SizeError is returned when a caller provided, or discovered, buffer size
// is insufficient.
type SizeError struct {
	Status efi.Status
	// Size is the buffer size, in bytes, required by firmware
	Size uint64
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("%v (required size %d)", e.Status, e.Size)
}

func (e *SizeError) Unwrap() error {
	return e.Status
}

// ImageError is returned by StartImage on image failure.
type ImageError struct {
	Status efi.Status
	// ExitData holds the optional image exit data (a null-terminated UCS-2
	// string optionally followed by binary data), its release is up to the
	// caller.
	ExitData *Buffer[byte]
}

func (e *ImageError) Error() string {
	if desc := e.Description(); desc != "" {
		return fmt.Sprintf("%v, %s", e.Status, desc)
	}

	return e.Status.String()
}

func (e *ImageError) Unwrap() error {
	return e.Status
}

// Description returns the exit data leading null-terminated string.
func (e *ImageError) Description() string {
	if e.ExitData == nil || e.ExitData.released || e.ExitData.Len() < 2 {
		return ""
	}

	b := e.ExitData.Slice()
	s := make([]uint16, 0, len(b)/2)

	for i := 0; i+1 < len(b); i += 2 {
		c := uint16(b[i]) | uint16(b[i+1])<<8

		if c == 0 {
			break
		}

		s = append(s, c)
	}

	return string(utf16.Decode(s))
}
