// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

//go:build tamago

package x64

import (
	_ "unsafe"
)

// ForceLine controls whether a carriage return is emitted after each line
// feed on the serial console.
var ForceLine = true

//go:linkname printk runtime.printk
func printk(c byte) {
	UART0.Tx(c)

	if c == 0x0a && ForceLine { // LF
		UART0.Tx(0x0d) // CR
	}
}
