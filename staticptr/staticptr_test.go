// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package staticptr

import (
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"
)

type counter struct {
	Name  string
	Count int
}

func mustPanic(t *testing.T, fn func()) {
	t.Helper()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()

	fn()
}

func TestNone(t *testing.T) {
	if p := (None{}).IntoRaw(); p != nil {
		t.Fatalf("expected nil address, got %p", p)
	}

	if got := Recover[None](nil); got != (None{}) {
		t.Fatalf("unexpected value %v", got)
	}
}

func TestRef(t *testing.T) {
	c := &counter{Name: "ref", Count: 1}
	p := NewRef(c).IntoRaw()

	if p != unsafe.Pointer(c) {
		t.Fatalf("Expected:\n %p\nActual:\n %p", c, p)
	}

	if got := Recover[Ref[counter]](p).Get(); got != c {
		t.Fatalf("Expected:\n %p\nActual:\n %p", c, got)
	}

	if Retained() != 0 {
		t.Fatal("borrowed reference must not be retained")
	}
}

func TestMutRef(t *testing.T) {
	c := &counter{}
	p := NewMutRef(c).IntoRawMut()

	Recover[MutRef[counter]](p).Get().Count = 42

	if c.Count != 42 {
		t.Fatalf("mutation not visible, got %d", c.Count)
	}
}

func TestBox(t *testing.T) {
	want := counter{Name: "box", Count: 7}
	p := NewBox(want).IntoRaw()

	if n := Retained(); n != 1 {
		t.Fatalf("expected 1 retained object, got %d", n)
	}

	b := Recover[Box[counter]](p)

	if diff := cmp.Diff(want, *b.Get()); diff != "" {
		t.Fatalf("unexpected value (-want +got):\n%s", diff)
	}

	b.Release()

	if n := Retained(); n != 0 {
		t.Fatalf("expected no retained object, got %d", n)
	}

	mustPanic(t, b.Release)
}

func TestBoxRefCount(t *testing.T) {
	b := NewBox(counter{})

	p := b.IntoRaw()
	b.IntoRawMut()

	Recover[Box[counter]](p).Release()

	if n := Retained(); n != 1 {
		t.Fatalf("expected 1 retained object, got %d", n)
	}

	Recover[Box[counter]](p).Release()

	if n := Retained(); n != 0 {
		t.Fatalf("expected no retained object, got %d", n)
	}
}

func TestOption(t *testing.T) {
	if p := (Option[Ref[counter]]{}).IntoRaw(); p != nil {
		t.Fatalf("absent option must encode to nil, got %p", p)
	}

	if _, ok := Recover[Option[Ref[counter]]](nil).Get(); ok {
		t.Fatal("nil address must decode to an absent option")
	}

	c := &counter{Count: 3}
	p := Some(NewRef(c)).IntoRaw()

	r, ok := Recover[Option[Ref[counter]]](p).Get()

	if !ok || r.Get() != c {
		t.Fatalf("unexpected option %v %v", r, ok)
	}
}

func TestLeak(t *testing.T) {
	p := NewLeak(NewBox(counter{Count: 9})).IntoRaw()

	l := Recover[Leak[Box[counter]]](p)
	l.Release()

	if n := Retained(); n != 1 {
		t.Fatalf("leaked value must stay retained, got %d", n)
	}

	if got := l.Get().Get().Count; got != 9 {
		t.Fatalf("unexpected value %d", got)
	}

	// drop it to keep the registry clean for other tests
	l.Get().Release()
}

func TestPinned(t *testing.T) {
	c := &counter{Count: 5}
	p := NewPinned(NewRef(c)).IntoRaw()

	if n := Pins(); n != 1 {
		t.Fatalf("expected 1 pinned object, got %d", n)
	}

	r := Recover[Pinned[Ref[counter]]](p)

	if r.Get().Get() != c {
		t.Fatal("unexpected pinned reference")
	}

	r.Release()

	if n := Pins(); n != 0 {
		t.Fatalf("expected no pinned object, got %d", n)
	}
}

func TestPinnedBox(t *testing.T) {
	p := NewPinned(NewBox(counter{})).IntoRaw()

	Recover[Pinned[Box[counter]]](p).Release()

	if Pins() != 0 || Retained() != 0 {
		t.Fatalf("unexpected registry state, %d pins %d retained", Pins(), Retained())
	}
}

func TestRelease(t *testing.T) {
	var x int

	if Release(unsafe.Pointer(&x)) {
		t.Fatal("release of unretained pointer must fail")
	}

	if Retain[int](nil) != nil {
		t.Fatal("retain of nil must return nil")
	}
}
