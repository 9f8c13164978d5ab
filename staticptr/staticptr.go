// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package staticptr converts typed context values to and from a single raw
// address, allowing Go data to be attached to firmware records which only
// store a VOID pointer.
//
// A value of type S implementing [StaticPtr] is encoded with IntoRaw, the
// address is later turned back into an S with [Recover], which must be
// instantiated with the same S used for encoding.
//
// Go memory referenced only by firmware is invisible to the garbage
// collector, owned values ([Box]) are therefore retained in a package
// registry until released.
package staticptr

import (
	"unsafe"
)

// StaticPtr is implemented by values which can be encoded as a raw address
// for a read-only context.
//
// FromRaw is invoked on the zero value of S and must not depend on the
// receiver.
type StaticPtr[S any] interface {
	IntoRaw() unsafe.Pointer
	FromRaw(p unsafe.Pointer) S
}

// StaticPtrMut is implemented by values which grant exclusive, mutable access
// to the referenced data when encoded.
type StaticPtrMut[S any] interface {
	StaticPtr[S]
	IntoRawMut() unsafe.Pointer
}

// Recover reconstructs a value of type S from an address obtained by
// encoding an S.
//
// Passing an address obtained from any other type is undefined behavior.
func Recover[S StaticPtr[S]](p unsafe.Pointer) S {
	var zero S
	return zero.FromRaw(p)
}

// None represents the absence of a context, its address is always nil.
type None struct{}

func (None) IntoRaw() unsafe.Pointer       { return nil }
func (None) IntoRawMut() unsafe.Pointer    { return nil }
func (None) FromRaw(_ unsafe.Pointer) None { return None{} }

// Ref represents a shared reference to caller kept data.
//
// The referenced value must remain reachable by Go code for as long as the
// address is held by firmware.
type Ref[T any] struct {
	p *T
}

// NewRef returns a shared reference to p.
func NewRef[T any](p *T) Ref[T] {
	return Ref[T]{p: p}
}

// Get returns the referenced value.
func (r Ref[T]) Get() *T {
	return r.p
}

func (r Ref[T]) IntoRaw() unsafe.Pointer {
	return unsafe.Pointer(r.p)
}

func (Ref[T]) FromRaw(p unsafe.Pointer) Ref[T] {
	return Ref[T]{p: (*T)(p)}
}

// MutRef represents an exclusive reference to caller kept data.
type MutRef[T any] struct {
	p *T
}

// NewMutRef returns an exclusive reference to p.
func NewMutRef[T any](p *T) MutRef[T] {
	return MutRef[T]{p: p}
}

// Get returns the referenced value.
func (r MutRef[T]) Get() *T {
	return r.p
}

func (r MutRef[T]) IntoRaw() unsafe.Pointer {
	return unsafe.Pointer(r.p)
}

func (r MutRef[T]) IntoRawMut() unsafe.Pointer {
	return unsafe.Pointer(r.p)
}

func (MutRef[T]) FromRaw(p unsafe.Pointer) MutRef[T] {
	return MutRef[T]{p: (*T)(p)}
}
