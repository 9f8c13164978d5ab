// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"github.com/usbarmory/go-boot-services/efi"
)

// RaiseTPL calls EFI_BOOT_SERVICES.RaiseTPL() and returns the previous task
// priority level.
func (s *BootServices) RaiseTPL(tpl efi.TPL) efi.TPL {
	t := s.table()

	if t.RaiseTPL == nil {
		missing("RaiseTPL")
	}

	return t.RaiseTPL(tpl)
}

// RestoreTPL calls EFI_BOOT_SERVICES.RestoreTPL().
func (s *BootServices) RestoreTPL(tpl efi.TPL) {
	t := s.table()

	if t.RestoreTPL == nil {
		missing("RestoreTPL")
	}

	t.RestoreTPL(tpl)
}

// TPLGuard represents a raised task priority level, restored by
// [TPLGuard.Restore].
type TPLGuard struct {
	s        *BootServices
	previous efi.TPL
	restored bool
}

// RaiseTPLGuarded raises the task priority level and returns a guard to
// restore the previous one.
//
//	guard := s.RaiseTPLGuarded(efi.TPL_NOTIFY)
//	defer guard.Restore()
func (s *BootServices) RaiseTPLGuarded(tpl efi.TPL) *TPLGuard {
	return &TPLGuard{
		s:        s,
		previous: s.RaiseTPL(tpl),
	}
}

// Previous returns the task priority level in effect before the raise.
func (g *TPLGuard) Previous() efi.TPL {
	return g.previous
}

// Restore restores the previous task priority level, only the first call
// has effect.
func (g *TPLGuard) Restore() {
	if g.restored {
		return
	}

	g.restored = true
	g.s.RestoreTPL(g.previous)
}

// WithTPL runs fn at the argument task priority level, the previous level is
// restored on any return path (including panics).
func (s *BootServices) WithTPL(tpl efi.TPL, fn func() error) error {
	guard := s.RaiseTPLGuarded(tpl)
	defer guard.Restore()

	return fn()
}
