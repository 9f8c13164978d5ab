// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/usbarmory/go-boot-services/efi"
	"github.com/usbarmory/go-boot-services/efi/efitest"
)

func newTPLServices() (*BootServices, *efitest.TPL) {
	tpl := &efitest.TPL{}
	return New(tpl.Bind(&efi.Table{})), tpl
}

func TestRaiseRestoreTPL(t *testing.T) {
	s, tpl := newTPLServices()

	if prev := s.RaiseTPL(efi.TPL_NOTIFY); prev != efi.TPL_APPLICATION {
		t.Fatalf("Expected:\n %v\nActual:\n %v", efi.TPL_APPLICATION, prev)
	}

	s.RestoreTPL(efi.TPL_APPLICATION)

	if l := tpl.Level(); l != efi.TPL_APPLICATION {
		t.Fatalf("Expected:\n %v\nActual:\n %v", efi.TPL_APPLICATION, l)
	}
}

func TestTPLGuard(t *testing.T) {
	s, tpl := newTPLServices()

	func() {
		outer := s.RaiseTPLGuarded(efi.TPL_CALLBACK)
		defer outer.Restore()

		inner := s.RaiseTPLGuarded(efi.TPL_NOTIFY)
		defer inner.Restore()

		if inner.Previous() != efi.TPL_CALLBACK {
			t.Fatalf("unexpected previous level %v", inner.Previous())
		}

		if l := tpl.Level(); l != efi.TPL_NOTIFY {
			t.Fatalf("unexpected level %v", l)
		}
	}()

	want := []efi.TPL{
		efi.TPL_CALLBACK,
		efi.TPL_NOTIFY,
		efi.TPL_CALLBACK,
		efi.TPL_APPLICATION,
	}

	if diff := cmp.Diff(want, tpl.History); diff != "" {
		t.Fatalf("unexpected transitions (-want +got):\n%s", diff)
	}
}

func TestTPLGuardRestoreOnce(t *testing.T) {
	s, tpl := newTPLServices()

	g := s.RaiseTPLGuarded(efi.TPL_HIGH_LEVEL)
	g.Restore()
	g.Restore()

	if n := len(tpl.History); n != 2 {
		t.Fatalf("expected 2 transitions, got %d", n)
	}
}

func TestWithTPL(t *testing.T) {
	s, tpl := newTPLServices()
	errTest := errors.New("test")

	err := s.WithTPL(efi.TPL_NOTIFY, func() error {
		if l := tpl.Level(); l != efi.TPL_NOTIFY {
			t.Fatalf("unexpected level %v", l)
		}

		return errTest
	})

	if !errors.Is(err, errTest) {
		t.Fatalf("unexpected error %v", err)
	}

	if l := tpl.Level(); l != efi.TPL_APPLICATION {
		t.Fatalf("level not restored, got %v", l)
	}

	func() {
		defer func() { recover() }()

		s.WithTPL(efi.TPL_CALLBACK, func() error {
			panic("test")
		})
	}()

	if l := tpl.Level(); l != efi.TPL_APPLICATION {
		t.Fatalf("level not restored after panic, got %v", l)
	}
}
