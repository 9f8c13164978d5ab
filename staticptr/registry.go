// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package staticptr

import (
	"runtime"
	"sync"
	"unsafe"
)

type pinned struct {
	runtime.Pinner
	refs int
}

var (
	mu sync.Mutex

	// retained map keys keep their objects reachable
	retained = make(map[unsafe.Pointer]int)
	pins     = make(map[unsafe.Pointer]*pinned)
)

// Retain keeps the object referenced by p alive until a matching Release,
// references are counted.
func Retain[T any](p *T) unsafe.Pointer {
	ptr := unsafe.Pointer(p)

	if ptr == nil {
		return nil
	}

	mu.Lock()
	defer mu.Unlock()

	retained[ptr]++

	return ptr
}

// Release drops one reference taken with Retain, it reports whether a
// reference was held.
func Release(ptr unsafe.Pointer) bool {
	mu.Lock()
	defer mu.Unlock()

	n, ok := retained[ptr]

	if !ok {
		return false
	}

	if n <= 1 {
		delete(retained, ptr)
	} else {
		retained[ptr] = n - 1
	}

	return true
}

// Retained returns the number of distinct objects currently retained.
func Retained() int {
	mu.Lock()
	defer mu.Unlock()

	return len(retained)
}

// Pins returns the number of distinct objects currently pinned.
func Pins() int {
	mu.Lock()
	defer mu.Unlock()

	return len(pins)
}

func pin(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	p, ok := pins[ptr]

	if !ok {
		p = &pinned{}
		p.Pin(ptr)
		pins[ptr] = p
	}

	p.refs++
}

func unpin(ptr unsafe.Pointer) {
	mu.Lock()
	defer mu.Unlock()

	p, ok := pins[ptr]

	if !ok {
		return
	}

	if p.refs--; p.refs == 0 {
		p.Unpin()
		delete(pins, ptr)
	}
}
