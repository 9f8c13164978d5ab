// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package efi

import (
	"strconv"
	"time"
	"unsafe"
)

// TPL represents an EFI_TPL (Task Priority Level).
type TPL uint64

// Task Priority Levels
const (
	TPL_APPLICATION TPL = 4
	TPL_CALLBACK    TPL = 8
	TPL_NOTIFY      TPL = 16
	TPL_HIGH_LEVEL  TPL = 31
)

func (tpl TPL) String() string {
	switch tpl {
	case TPL_APPLICATION:
		return "TPL_APPLICATION"
	case TPL_CALLBACK:
		return "TPL_CALLBACK"
	case TPL_NOTIFY:
		return "TPL_NOTIFY"
	case TPL_HIGH_LEVEL:
		return "TPL_HIGH_LEVEL"
	}

	return "TPL(" + strconv.FormatUint(uint64(tpl), 10) + ")"
}

// EventType represents the type argument of CreateEvent.
type EventType uint32

// Event types
const (
	EVT_TIMER                         EventType = 0x80000000
	EVT_RUNTIME                       EventType = 0x40000000
	EVT_NOTIFY_WAIT                   EventType = 0x00000100
	EVT_NOTIFY_SIGNAL                 EventType = 0x00000200
	EVT_SIGNAL_EXIT_BOOT_SERVICES     EventType = 0x00000201
	EVT_SIGNAL_VIRTUAL_ADDRESS_CHANGE EventType = 0x60000202
)

// EventNotify represents an EFI_EVENT_NOTIFY function, invoked by firmware
// with the registered context.
type EventNotify func(event Event, context unsafe.Pointer)

// Event groups
var (
	EFI_EVENT_GROUP_EXIT_BOOT_SERVICES        = MustParseGUID("27abf055-b1b8-4c26-8048-748f37baa2df")
	EFI_EVENT_GROUP_BEFORE_EXIT_BOOT_SERVICES = MustParseGUID("8be0e274-3970-4b44-80c5-1ab9502f3bfc")
	EFI_EVENT_GROUP_VIRTUAL_ADDRESS_CHANGE    = MustParseGUID("13fa7698-c831-49c7-87ea-8f43fcc25196")
	EFI_EVENT_GROUP_MEMORY_MAP_CHANGE         = MustParseGUID("78bee926-692f-48fd-9edb-01422ef0d7ab")
	EFI_EVENT_GROUP_READY_TO_BOOT             = MustParseGUID("7ce88fb3-4bd7-4679-87a8-a8d8dee50d2b")
	EFI_EVENT_GROUP_RESET_SYSTEM              = MustParseGUID("62da6a56-13fb-485a-a8da-a3dd7912cb6b")
)

// TimerDelay represents an EFI_TIMER_DELAY.
type TimerDelay uint32

// EFI_TIMER_DELAY
const (
	TimerCancel TimerDelay = iota
	TimerPeriodic
	TimerRelative
)

// TriggerTime converts a duration to the 100ns units used by SetTimer,
// negative durations are treated as zero.
func TriggerTime(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}

	return uint64(d / 100)
}
