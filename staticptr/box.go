// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package staticptr

import (
	"unsafe"
)

// Box represents an owned heap value.
//
// Every IntoRaw (or IntoRawMut) call retains the value in the package
// registry, each must be balanced by a single Release on the value
// reconstructed from the address.
type Box[T any] struct {
	p *T
}

// NewBox moves v to the heap and returns its owner.
func NewBox[T any](v T) Box[T] {
	return Box[T]{p: &v}
}

// Get returns the owned value.
func (b Box[T]) Get() *T {
	return b.p
}

func (b Box[T]) IntoRaw() unsafe.Pointer {
	return Retain(b.p)
}

func (b Box[T]) IntoRawMut() unsafe.Pointer {
	return Retain(b.p)
}

func (Box[T]) FromRaw(p unsafe.Pointer) Box[T] {
	return Box[T]{p: (*T)(p)}
}

// Release drops the registry reference taken when the value was encoded, it
// panics if no reference is held.
func (b Box[T]) Release() {
	if !Release(unsafe.Pointer(b.p)) {
		panic("staticptr: release of unretained box")
	}
}

// Option represents an optional context, absent values encode to nil.
type Option[S StaticPtr[S]] struct {
	v  S
	ok bool
}

// Some returns a present optional value.
func Some[S StaticPtr[S]](v S) Option[S] {
	return Option[S]{v: v, ok: true}
}

// Get returns the value and whether it is present.
func (o Option[S]) Get() (S, bool) {
	return o.v, o.ok
}

func (o Option[S]) IntoRaw() unsafe.Pointer {
	if !o.ok {
		return nil
	}

	return o.v.IntoRaw()
}

func (Option[S]) FromRaw(p unsafe.Pointer) Option[S] {
	if p == nil {
		return Option[S]{}
	}

	return Some(Recover[S](p))
}

// Release releases the value when present and owned.
func (o Option[S]) Release() {
	if r, ok := any(o.v).(interface{ Release() }); o.ok && ok {
		r.Release()
	}
}

// Leak represents a context whose release is suppressed, an owned value
// encoded through Leak is never dropped from the registry.
type Leak[S StaticPtr[S]] struct {
	v S
}

// NewLeak wraps v suppressing its release.
func NewLeak[S StaticPtr[S]](v S) Leak[S] {
	return Leak[S]{v: v}
}

// Get returns the wrapped value.
func (l Leak[S]) Get() S {
	return l.v
}

func (l Leak[S]) IntoRaw() unsafe.Pointer {
	return l.v.IntoRaw()
}

func (Leak[S]) FromRaw(p unsafe.Pointer) Leak[S] {
	return Leak[S]{v: Recover[S](p)}
}

// Release does nothing.
func (Leak[S]) Release() {}

// Pinned represents a context whose referenced Go object is pinned, with a
// runtime.Pinner, for as long as its address is held by firmware.
type Pinned[S StaticPtr[S]] struct {
	v    S
	addr unsafe.Pointer
}

// NewPinned wraps v pinning its referenced object once encoded.
func NewPinned[S StaticPtr[S]](v S) Pinned[S] {
	return Pinned[S]{v: v}
}

// Get returns the wrapped value.
func (p Pinned[S]) Get() S {
	return p.v
}

func (p Pinned[S]) IntoRaw() unsafe.Pointer {
	ptr := p.v.IntoRaw()
	pin(ptr)
	return ptr
}

func (Pinned[S]) FromRaw(p unsafe.Pointer) Pinned[S] {
	return Pinned[S]{v: Recover[S](p), addr: p}
}

// Release unpins the referenced object and releases the wrapped value when
// it is owned, it must only be invoked on a reconstructed value.
func (p Pinned[S]) Release() {
	unpin(p.addr)

	if r, ok := any(p.v).(interface{ Release() }); ok {
		r.Release()
	}
}
