// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package uefi

import (
	"errors"
	"testing"
	"time"
	"unsafe"

	"github.com/google/go-cmp/cmp"

	"github.com/usbarmory/go-boot-services/efi"
	"github.com/usbarmory/go-boot-services/staticptr"
)

type fakeEvent struct {
	eventType efi.EventType
	tpl       efi.TPL
	notify    efi.EventNotify
	context   unsafe.Pointer
	group     *efi.GUID
	signaled  bool
}

// fakeEvents implements the event services of a table.
type fakeEvents struct {
	events map[efi.Event]*fakeEvent
	next   efi.Event
}

func (f *fakeEvents) bind(t *efi.Table) {
	f.events = make(map[efi.Event]*fakeEvent)

	t.CreateEvent = func(eventType efi.EventType, tpl efi.TPL, notify efi.EventNotify, context unsafe.Pointer, event *efi.Event) efi.Status {
		return t.CreateEventEx(eventType, tpl, notify, context, nil, event)
	}

	t.CreateEventEx = func(eventType efi.EventType, tpl efi.TPL, notify efi.EventNotify, context unsafe.Pointer, group *efi.GUID, event *efi.Event) efi.Status {
		if event == nil || (eventType&efi.EVT_NOTIFY_SIGNAL != 0 && notify == nil) {
			return efi.EFI_INVALID_PARAMETER
		}

		f.next++
		f.events[f.next] = &fakeEvent{eventType, tpl, notify, context, group, false}
		*event = f.next

		return efi.EFI_SUCCESS
	}

	t.SignalEvent = func(event efi.Event) efi.Status {
		e, ok := f.events[event]

		if !ok {
			return efi.EFI_INVALID_PARAMETER
		}

		e.signaled = true

		if e.notify != nil {
			e.notify(event, e.context)
		}

		return efi.EFI_SUCCESS
	}

	t.CheckEvent = func(event efi.Event) efi.Status {
		e, ok := f.events[event]

		switch {
		case !ok:
			return efi.EFI_INVALID_PARAMETER
		case !e.signaled:
			return efi.EFI_NOT_READY
		}

		e.signaled = false

		return efi.EFI_SUCCESS
	}

	t.CloseEvent = func(event efi.Event) efi.Status {
		if _, ok := f.events[event]; !ok {
			return efi.EFI_INVALID_PARAMETER
		}

		delete(f.events, event)

		return efi.EFI_SUCCESS
	}
}

type timerState struct {
	Fired int
}

func TestCreateEventBoxContext(t *testing.T) {
	s, tbl, _ := newServices()

	f := &fakeEvents{}
	f.bind(tbl)

	var got []int

	notify := func(_ efi.Event, ctx staticptr.Box[timerState]) {
		ctx.Get().Fired++
		got = append(got, ctx.Get().Fired)
	}

	event, err := CreateEvent(s, efi.EVT_NOTIFY_SIGNAL, efi.TPL_CALLBACK, notify, staticptr.NewBox(timerState{}))

	if err != nil {
		t.Fatal(err)
	}

	if n := staticptr.Retained(); n != 1 {
		t.Fatalf("expected context to be retained, got %d", n)
	}

	for i := 0; i < 2; i++ {
		if err = s.SignalEvent(event); err != nil {
			t.Fatal(err)
		}
	}

	if diff := cmp.Diff([]int{1, 2}, got); diff != "" {
		t.Fatalf("unexpected notifications (-want +got):\n%s", diff)
	}

	ctx := f.events[event].context

	if err = s.CloseEvent(event); err != nil {
		t.Fatal(err)
	}

	staticptr.Recover[staticptr.Box[timerState]](ctx).Release()

	if n := staticptr.Retained(); n != 0 {
		t.Fatalf("expected context to be released, got %d", n)
	}
}

func TestCreateEventRefContext(t *testing.T) {
	s, tbl, _ := newServices()

	f := &fakeEvents{}
	f.bind(tbl)

	state := &timerState{}

	notify := func(_ efi.Event, ctx staticptr.Ref[timerState]) {
		ctx.Get().Fired++
	}

	event, err := CreateEventEx(s, efi.EVT_NOTIFY_SIGNAL, efi.TPL_NOTIFY, notify, staticptr.NewRef(state), &efi.EFI_EVENT_GROUP_READY_TO_BOOT)

	if err != nil {
		t.Fatal(err)
	}

	if g := f.events[event].group; g == nil || *g != efi.EFI_EVENT_GROUP_READY_TO_BOOT {
		t.Fatalf("unexpected event group %v", g)
	}

	s.SignalEvent(event)

	if state.Fired != 1 {
		t.Fatalf("expected 1 notification, got %d", state.Fired)
	}
}

func TestCreateEventFailureReleasesContext(t *testing.T) {
	s, tbl, _ := newServices()

	f := &fakeEvents{}
	f.bind(tbl)

	// signal events require a notify function
	_, err := CreateEvent[staticptr.Box[timerState]](s, efi.EVT_NOTIFY_SIGNAL, efi.TPL_CALLBACK, nil, staticptr.NewBox(timerState{}))

	if !errors.Is(err, efi.EFI_INVALID_PARAMETER) {
		t.Fatalf("Expected:\n %v\nActual:\n %v", efi.EFI_INVALID_PARAMETER, err)
	}

	if n := staticptr.Retained(); n != 0 {
		t.Fatalf("expected context to be released, got %d", n)
	}
}

func TestCreateEventNotifyUnsupported(t *testing.T) {
	s, tbl, _ := newServices()

	// firmware tables reject Go notify functions
	tbl.CreateEvent = func(_ efi.EventType, _ efi.TPL, notify efi.EventNotify, _ unsafe.Pointer, _ *efi.Event) efi.Status {
		if notify != nil {
			return efi.EFI_UNSUPPORTED
		}

		return efi.EFI_SUCCESS
	}

	notify := func(efi.Event, staticptr.Box[timerState]) {}

	_, err := CreateEvent[staticptr.Box[timerState]](s, efi.EVT_NOTIFY_SIGNAL, efi.TPL_CALLBACK, notify, staticptr.NewBox(timerState{}))

	if !errors.Is(err, efi.EFI_UNSUPPORTED) {
		t.Fatalf("Expected:\n %v\nActual:\n %v", efi.EFI_UNSUPPORTED, err)
	}

	if n := staticptr.Retained(); n != 0 {
		t.Fatalf("expected context to be released, got %d", n)
	}

	if _, err = CreateEvent[staticptr.None](s, efi.EVT_TIMER, efi.TPL_APPLICATION, nil, staticptr.None{}); err != nil {
		t.Fatal(err)
	}
}

func TestCheckEvent(t *testing.T) {
	s, tbl, _ := newServices()

	f := &fakeEvents{}
	f.bind(tbl)

	event, err := CreateEvent[staticptr.None](s, 0, efi.TPL_APPLICATION, nil, staticptr.None{})

	if err != nil {
		t.Fatal(err)
	}

	if f.events[event].context != nil {
		t.Fatal("expected nil context")
	}

	if err = s.CheckEvent(event); !errors.Is(err, efi.EFI_NOT_READY) {
		t.Fatalf("Expected:\n %v\nActual:\n %v", efi.EFI_NOT_READY, err)
	}

	s.SignalEvent(event)

	if err = s.CheckEvent(event); err != nil {
		t.Fatal(err)
	}
}

func TestWaitForEvent(t *testing.T) {
	s, tbl, _ := newServices()

	var gotEvents []efi.Event

	tbl.WaitForEvent = func(n uint64, events *efi.Event, index *uint64) efi.Status {
		if n == 0 || events == nil {
			return efi.EFI_INVALID_PARAMETER
		}

		gotEvents = unsafe.Slice(events, n)
		*index = 1

		return efi.EFI_SUCCESS
	}

	index, err := s.WaitForEvent([]efi.Event{10, 20, 30})

	if err != nil {
		t.Fatal(err)
	}

	if index != 1 {
		t.Fatalf("Expected:\n %v\nActual:\n %v", 1, index)
	}

	if diff := cmp.Diff([]efi.Event{10, 20, 30}, gotEvents); diff != "" {
		t.Fatalf("unexpected events (-want +got):\n%s", diff)
	}

	if _, err = s.WaitForEvent(nil); !errors.Is(err, efi.EFI_INVALID_PARAMETER) {
		t.Fatalf("Expected:\n %v\nActual:\n %v", efi.EFI_INVALID_PARAMETER, err)
	}
}

func TestSetTimer(t *testing.T) {
	s, tbl, _ := newServices()

	var delay efi.TimerDelay
	var trigger uint64

	tbl.SetTimer = func(_ efi.Event, d efi.TimerDelay, tt uint64) efi.Status {
		delay = d
		trigger = tt
		return efi.EFI_SUCCESS
	}

	if err := s.SetTimer(1, efi.TimerPeriodic, efi.TriggerTime(10*time.Millisecond)); err != nil {
		t.Fatal(err)
	}

	if delay != efi.TimerPeriodic || trigger != 100000 {
		t.Fatalf("unexpected timer %v %d", delay, trigger)
	}
}
