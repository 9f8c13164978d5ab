// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package efi

import (
	"bytes"
	"encoding/binary"
)

func marshalBinary(data any) ([]byte, error) {
	b := new(bytes.Buffer)

	if err := binary.Write(b, binary.LittleEndian, data); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func unmarshalBinary(buf []byte, data any) (err error) {
	_, err = binary.Decode(buf, binary.LittleEndian, data)
	return
}
