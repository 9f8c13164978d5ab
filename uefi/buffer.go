// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"fmt"
	"unsafe"
)

// Buffer represents a pool allocation holding elements of type T, freed
// through the owning Boot Services instance on Release.
type Buffer[T any] struct {
	s        *BootServices
	ptr      unsafe.Pointer
	n        int
	released bool
}

// BufferFromRaw takes ownership of a pool allocation of n elements of type T.
//
// The caller must guarantee that ptr was returned by AllocatePool on s (or is
// nil with n equal to zero), is suitably aligned for T and holds n
// initialized elements.
func BufferFromRaw[T any](s *BootServices, ptr unsafe.Pointer, n int) *Buffer[T] {
	if ptr == nil {
		n = 0
	}

	return &Buffer[T]{
		s:   s,
		ptr: ptr,
		n:   n,
	}
}

func (b *Buffer[T]) check() {
	if b.released {
		panic("uefi: buffer used after release")
	}
}

// Len returns the number of elements.
func (b *Buffer[T]) Len() int {
	b.check()
	return b.n
}

// Size returns the buffer size in bytes.
func (b *Buffer[T]) Size() uint64 {
	var zero T

	b.check()

	return uint64(b.n) * uint64(unsafe.Sizeof(zero))
}

// Pointer returns the pool address.
func (b *Buffer[T]) Pointer() unsafe.Pointer {
	b.check()
	return b.ptr
}

// Slice returns the buffer elements, the slice must not be used after
// Release.
func (b *Buffer[T]) Slice() []T {
	b.check()

	if b.n == 0 {
		return nil
	}

	return unsafe.Slice((*T)(b.ptr), b.n)
}

// Release frees the pool allocation, further calls have no effect.
func (b *Buffer[T]) Release() error {
	if b == nil || b.released {
		return nil
	}

	b.released = true

	if b.ptr == nil {
		return nil
	}

	return b.s.FreePool(b.ptr)
}

// detach hands the allocation over to firmware.
func (b *Buffer[T]) detach() {
	b.released = true
}

// Cast reinterprets the elements of b as elements of type U, ownership
// moves to the returned buffer.
//
// Cast panics when the buffer size is not a multiple of the size of U or its
// address is not aligned for U.
func Cast[U, T any](b *Buffer[T]) *Buffer[U] {
	var u U

	size := b.Size()
	usize := uint64(unsafe.Sizeof(u))

	switch {
	case usize == 0:
		panic("uefi: cast to zero-sized type")
	case size%usize != 0:
		panic(fmt.Sprintf("uefi: cannot cast %d bytes to %d byte elements", size, usize))
	case uintptr(b.ptr)%unsafe.Alignof(u) != 0:
		panic("uefi: cast to misaligned type")
	}

	b.detach()

	return &Buffer[U]{
		s:   b.s,
		ptr: b.ptr,
		n:   int(size / usize),
	}
}
