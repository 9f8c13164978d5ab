// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package efitest provides firmware doubles for testing code which drives an
// [efi.Table].
package efitest

import (
	"sync"
	"unsafe"

	"github.com/usbarmory/go-boot-services/efi"
)

// Pool implements the EFI pool allocation services over Go memory.
type Pool struct {
	sync.Mutex

	// Types records the memory type of each allocation in request order.
	Types []efi.MemoryType
	// Frees counts successful FreePool calls.
	Frees int

	allocs map[unsafe.Pointer][]uint64
}

// AllocatePool implements EFI_BOOT_SERVICES.AllocatePool().
func (p *Pool) AllocatePool(poolType efi.MemoryType, size uint64, buffer *unsafe.Pointer) efi.Status {
	if buffer == nil || poolType >= efi.EfiMaxMemoryType {
		return efi.EFI_INVALID_PARAMETER
	}

	p.Lock()
	defer p.Unlock()

	if p.allocs == nil {
		p.allocs = make(map[unsafe.Pointer][]uint64)
	}

	// 8-byte aligned, never empty
	buf := make([]uint64, size/8+1)
	ptr := unsafe.Pointer(&buf[0])

	p.allocs[ptr] = buf
	p.Types = append(p.Types, poolType)
	*buffer = ptr

	return efi.EFI_SUCCESS
}

// FreePool implements EFI_BOOT_SERVICES.FreePool().
func (p *Pool) FreePool(buffer unsafe.Pointer) efi.Status {
	p.Lock()
	defer p.Unlock()

	if _, ok := p.allocs[buffer]; !ok {
		return efi.EFI_INVALID_PARAMETER
	}

	delete(p.allocs, buffer)
	p.Frees++

	return efi.EFI_SUCCESS
}

// Outstanding returns the number of allocations not yet freed.
func (p *Pool) Outstanding() int {
	p.Lock()
	defer p.Unlock()

	return len(p.allocs)
}

// Bind sets the pool services of the argument table.
func (p *Pool) Bind(t *efi.Table) *efi.Table {
	t.AllocatePool = p.AllocatePool
	t.FreePool = p.FreePool
	return t
}

// TPL tracks the current task priority level, the zero value is at
// TPL_APPLICATION.
type TPL struct {
	sync.Mutex

	// History records every level transition.
	History []efi.TPL

	level efi.TPL
}

// Level returns the current priority level.
func (t *TPL) Level() efi.TPL {
	t.Lock()
	defer t.Unlock()

	if t.level == 0 {
		return efi.TPL_APPLICATION
	}

	return t.level
}

// RaiseTPL implements EFI_BOOT_SERVICES.RaiseTPL().
func (t *TPL) RaiseTPL(newTPL efi.TPL) efi.TPL {
	old := t.Level()

	t.Lock()
	defer t.Unlock()

	t.level = newTPL
	t.History = append(t.History, newTPL)

	return old
}

// RestoreTPL implements EFI_BOOT_SERVICES.RestoreTPL().
func (t *TPL) RestoreTPL(oldTPL efi.TPL) {
	t.Lock()
	defer t.Unlock()

	t.level = oldTPL
	t.History = append(t.History, oldTPL)
}

// Bind sets the task priority services of the argument table.
func (t *TPL) Bind(table *efi.Table) *efi.Table {
	table.RaiseTPL = t.RaiseTPL
	table.RestoreTPL = t.RestoreTPL
	return table
}

// Slice returns a view of n elements of type T at ptr, it is meant for test
// firmware filling caller provided buffers.
func Slice[T any](ptr unsafe.Pointer, n int) []T {
	if ptr == nil || n == 0 {
		return nil
	}

	return unsafe.Slice((*T)(ptr), n)
}
