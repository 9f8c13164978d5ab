// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"unsafe"

	"github.com/usbarmory/go-boot-services/efi"
	"github.com/usbarmory/go-boot-services/staticptr"
)

// NotifyFunc represents an event notification function receiving the
// context registered at event creation.
type NotifyFunc[S staticptr.StaticPtr[S]] func(event efi.Event, context S)

func notifyAdapter[S staticptr.StaticPtr[S]](notify NotifyFunc[S]) efi.EventNotify {
	if notify == nil {
		return nil
	}

	return func(event efi.Event, context unsafe.Pointer) {
		notify(event, staticptr.Recover[S](context))
	}
}

// release drops an encoded context which firmware did not take.
func release[S staticptr.StaticPtr[S]](raw unsafe.Pointer) {
	if raw == nil {
		return
	}

	if r, ok := any(staticptr.Recover[S](raw)).(interface{ Release() }); ok {
		r.Release()
	}
}

// CreateEvent calls EFI_BOOT_SERVICES.CreateEvent().
//
// The context is encoded with its IntoRaw method and reconstructed as an S
// before each notify invocation. Owned contexts ([staticptr.Box]) stay
// retained until explicitly released by the caller, typically after
// CloseEvent.
//
// Tables bound to real firmware with [efi.NewTable] cannot call back into
// Go, a non-nil notify then fails with EFI_UNSUPPORTED.
func CreateEvent[S staticptr.StaticPtr[S]](s *BootServices, eventType efi.EventType, notifyTPL efi.TPL, notify NotifyFunc[S], context S) (efi.Event, error) {
	raw := context.IntoRaw()
	event, err := s.CreateEventUnchecked(eventType, notifyTPL, notifyAdapter(notify), raw)

	if err != nil {
		release[S](raw)
	}

	return event, err
}

// CreateEventUnchecked calls EFI_BOOT_SERVICES.CreateEvent() with a raw
// notify function and context, the caller must guarantee that notify
// interprets context consistently with its origin.
func (s *BootServices) CreateEventUnchecked(eventType efi.EventType, notifyTPL efi.TPL, notify efi.EventNotify, context unsafe.Pointer) (event efi.Event, err error) {
	t := s.table()

	if t.CreateEvent == nil {
		missing("CreateEvent")
	}

	if err = parseStatus(t.CreateEvent(eventType, notifyTPL, notify, context, &event)); err != nil {
		return 0, err
	}

	return
}

// CreateEventEx calls EFI_BOOT_SERVICES.CreateEventEx(), the event is
// placed in the argument group (when not nil). Notify functions carry the
// same restriction as in [CreateEvent].
func CreateEventEx[S staticptr.StaticPtr[S]](s *BootServices, eventType efi.EventType, notifyTPL efi.TPL, notify NotifyFunc[S], context S, group *efi.GUID) (efi.Event, error) {
	raw := context.IntoRaw()
	event, err := s.CreateEventExUnchecked(eventType, notifyTPL, notifyAdapter(notify), raw, group)

	if err != nil {
		release[S](raw)
	}

	return event, err
}

// CreateEventExUnchecked calls EFI_BOOT_SERVICES.CreateEventEx() with a raw
// notify function and context.
func (s *BootServices) CreateEventExUnchecked(eventType efi.EventType, notifyTPL efi.TPL, notify efi.EventNotify, context unsafe.Pointer, group *efi.GUID) (event efi.Event, err error) {
	t := s.table()

	if t.CreateEventEx == nil {
		missing("CreateEventEx")
	}

	if err = parseStatus(t.CreateEventEx(eventType, notifyTPL, notify, context, group, &event)); err != nil {
		return 0, err
	}

	return
}

// CloseEvent calls EFI_BOOT_SERVICES.CloseEvent().
func (s *BootServices) CloseEvent(event efi.Event) error {
	t := s.table()

	if t.CloseEvent == nil {
		missing("CloseEvent")
	}

	return parseStatus(t.CloseEvent(event))
}

// SignalEvent calls EFI_BOOT_SERVICES.SignalEvent().
func (s *BootServices) SignalEvent(event efi.Event) error {
	t := s.table()

	if t.SignalEvent == nil {
		missing("SignalEvent")
	}

	return parseStatus(t.SignalEvent(event))
}

// CheckEvent calls EFI_BOOT_SERVICES.CheckEvent(), an event which is not
// signaled returns EFI_NOT_READY.
func (s *BootServices) CheckEvent(event efi.Event) error {
	t := s.table()

	if t.CheckEvent == nil {
		missing("CheckEvent")
	}

	return parseStatus(t.CheckEvent(event))
}

// WaitForEvent calls EFI_BOOT_SERVICES.WaitForEvent() and returns the index
// of the signaled event.
//
// This call blocks, and must only be invoked at TPL_APPLICATION.
func (s *BootServices) WaitForEvent(events []efi.Event) (int, error) {
	var index uint64
	var p *efi.Event

	t := s.table()

	if t.WaitForEvent == nil {
		missing("WaitForEvent")
	}

	if len(events) > 0 {
		p = &events[0]
	}

	if err := parseStatus(t.WaitForEvent(uint64(len(events)), p, &index)); err != nil {
		return 0, err
	}

	return int(index), nil
}

// SetTimer calls EFI_BOOT_SERVICES.SetTimer(), triggerTime is expressed in
// 100ns units (see [efi.TriggerTime]).
func (s *BootServices) SetTimer(event efi.Event, delay efi.TimerDelay, triggerTime uint64) error {
	t := s.table()

	if t.SetTimer == nil {
		missing("SetTimer")
	}

	return parseStatus(t.SetTimer(event, delay, triggerTime))
}
