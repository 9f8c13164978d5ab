// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package uefi implements a memory safe layer over the Unified Extensible
// Firmware Interface (UEFI) Boot Services following the specifications at:
//
//	https://uefi.org/specs/UEFI/2.10/07_Services_Boot_Services.html
//
// Every service of an [efi.Table] is exposed as a method, or a generic
// function where a type parameter binds interfaces and contexts, of
// [BootServices]. Firmware errors are returned as error values wrapping an
// [efi.Status], contract violations (uninitialized table, missing service)
// panic.
package uefi

import (
	"fmt"
	"sync/atomic"

	"github.com/usbarmory/go-boot-services/efi"
)

// BootServices represents an EFI Boot Services instance.
//
// The dispatch table is set at most once, reading it before initialization
// panics. After initialization an instance can be shared freely.
type BootServices struct {
	t atomic.Pointer[efi.Table]
}

// New returns an instance initialized with the argument table.
func New(t *efi.Table) *BootServices {
	s := &BootServices{}
	s.Initialize(t)
	return s
}

// NewUninit returns an instance to be initialized later, this is equivalent
// to using the zero value.
func NewUninit() *BootServices {
	return &BootServices{}
}

// Initialize sets the dispatch table, it panics if the instance is already
// initialized.
func (s *BootServices) Initialize(t *efi.Table) {
	if t == nil {
		panic("invalid boot services table")
	}

	if !s.t.CompareAndSwap(nil, t) {
		panic("boot services already initialized")
	}
}

// Initialized reports whether the dispatch table is set.
func (s *BootServices) Initialized() bool {
	return s.t.Load() != nil
}

func (s *BootServices) table() *efi.Table {
	t := s.t.Load()

	if t == nil {
		panic("boot services not initialized")
	}

	return t
}

func missing(name string) {
	panic(fmt.Sprintf("boot services function %s is not initialized", name))
}

func parseStatus(status efi.Status) error {
	if status.IsError() {
		return status
	}

	return nil
}
