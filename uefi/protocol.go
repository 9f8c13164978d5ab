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

// Identity is implemented by protocol identities.
type Identity interface {
	GUID() *efi.GUID
}

// Indicator is the interface type of protocols used only as markers, their
// interface pointer is always nil.
type Indicator struct{}

// Protocol binds a protocol GUID to its interface type I.
type Protocol[I any] struct {
	guid *efi.GUID
}

// NewProtocol returns the identity of the protocol with the argument GUID.
func NewProtocol[I any](guid efi.GUID) Protocol[I] {
	return Protocol[I]{guid: &guid}
}

// GUID returns the protocol GUID.
func (p Protocol[I]) GUID() *efi.GUID {
	return p.guid
}

func (p Protocol[I]) String() string {
	if p.guid == nil {
		return "<nil>"
	}

	return p.guid.String()
}

func isIndicator[I any]() bool {
	_, ok := any((*I)(nil)).(*Indicator)
	return ok
}

func interfacePointer[I any](iface *I) unsafe.Pointer {
	if isIndicator[I]() {
		return nil
	}

	return unsafe.Pointer(iface)
}

// InstallProtocolInterface calls EFI_BOOT_SERVICES.InstallProtocolInterface(),
// a zero handle creates a new one. The interface is retained until
// uninstalled.
func InstallProtocolInterface[I any](s *BootServices, handle efi.Handle, p Protocol[I], iface *I) (efi.Handle, error) {
	ptr := interfacePointer(iface)

	h, err := s.InstallProtocolInterfaceUnchecked(handle, p.GUID(), ptr)

	if err == nil && ptr != nil {
		staticptr.Retain(iface)
	}

	return h, err
}

// InstallProtocolInterfaceUnchecked calls
// EFI_BOOT_SERVICES.InstallProtocolInterface() with a raw interface pointer,
// which must remain valid while installed.
func (s *BootServices) InstallProtocolInterfaceUnchecked(handle efi.Handle, guid *efi.GUID, iface unsafe.Pointer) (efi.Handle, error) {
	t := s.table()

	if t.InstallProtocolInterface == nil {
		missing("InstallProtocolInterface")
	}

	if err := parseStatus(t.InstallProtocolInterface(&handle, guid, efi.EFI_NATIVE_INTERFACE, iface)); err != nil {
		return 0, err
	}

	return handle, nil
}

// UninstallProtocolInterface calls
// EFI_BOOT_SERVICES.UninstallProtocolInterface().
func UninstallProtocolInterface[I any](s *BootServices, handle efi.Handle, p Protocol[I], iface *I) error {
	ptr := interfacePointer(iface)

	if err := s.UninstallProtocolInterfaceUnchecked(handle, p.GUID(), ptr); err != nil {
		return err
	}

	staticptr.Release(ptr)

	return nil
}

// UninstallProtocolInterfaceUnchecked calls
// EFI_BOOT_SERVICES.UninstallProtocolInterface() with a raw interface
// pointer.
func (s *BootServices) UninstallProtocolInterfaceUnchecked(handle efi.Handle, guid *efi.GUID, iface unsafe.Pointer) error {
	t := s.table()

	if t.UninstallProtocolInterface == nil {
		missing("UninstallProtocolInterface")
	}

	return parseStatus(t.UninstallProtocolInterface(handle, guid, iface))
}

// ReinstallProtocolInterface calls
// EFI_BOOT_SERVICES.ReinstallProtocolInterface(), for indicator protocols
// both interfaces are passed as nil.
func ReinstallProtocolInterface[I any](s *BootServices, handle efi.Handle, p Protocol[I], oldIface *I, newIface *I) error {
	oldPtr := interfacePointer(oldIface)
	newPtr := interfacePointer(newIface)

	if err := s.ReinstallProtocolInterfaceUnchecked(handle, p.GUID(), oldPtr, newPtr); err != nil {
		return err
	}

	if newPtr != nil {
		staticptr.Retain(newIface)
	}

	staticptr.Release(oldPtr)

	return nil
}

// ReinstallProtocolInterfaceUnchecked calls
// EFI_BOOT_SERVICES.ReinstallProtocolInterface() with raw interface
// pointers.
func (s *BootServices) ReinstallProtocolInterfaceUnchecked(handle efi.Handle, guid *efi.GUID, oldIface unsafe.Pointer, newIface unsafe.Pointer) error {
	t := s.table()

	if t.ReinstallProtocolInterface == nil {
		missing("ReinstallProtocolInterface")
	}

	return parseStatus(t.ReinstallProtocolInterface(handle, guid, oldIface, newIface))
}

// HandleProtocol calls EFI_BOOT_SERVICES.HandleProtocol().
func HandleProtocol[I any](s *BootServices, handle efi.Handle, p Protocol[I]) (*I, error) {
	ptr, err := s.HandleProtocolUnchecked(handle, p.GUID())
	return (*I)(ptr), err
}

// HandleProtocolUnchecked calls EFI_BOOT_SERVICES.HandleProtocol() and
// returns the raw interface pointer.
func (s *BootServices) HandleProtocolUnchecked(handle efi.Handle, guid *efi.GUID) (iface unsafe.Pointer, err error) {
	t := s.table()

	if t.HandleProtocol == nil {
		missing("HandleProtocol")
	}

	if err = parseStatus(t.HandleProtocol(handle, guid, &iface)); err != nil {
		return nil, err
	}

	return
}

// OpenProtocol calls EFI_BOOT_SERVICES.OpenProtocol(), with
// EFI_OPEN_PROTOCOL_TEST_PROTOCOL the returned interface is nil.
func OpenProtocol[I any](s *BootServices, handle efi.Handle, p Protocol[I], agent efi.Handle, controller efi.Handle, attributes efi.OpenAttribute) (*I, error) {
	ptr, err := s.OpenProtocolUnchecked(handle, p.GUID(), agent, controller, attributes)
	return (*I)(ptr), err
}

// OpenProtocolUnchecked calls EFI_BOOT_SERVICES.OpenProtocol() and returns
// the raw interface pointer.
func (s *BootServices) OpenProtocolUnchecked(handle efi.Handle, guid *efi.GUID, agent efi.Handle, controller efi.Handle, attributes efi.OpenAttribute) (iface unsafe.Pointer, err error) {
	t := s.table()

	if t.OpenProtocol == nil {
		missing("OpenProtocol")
	}

	var out *unsafe.Pointer

	if attributes != efi.EFI_OPEN_PROTOCOL_TEST_PROTOCOL {
		out = &iface
	}

	if err = parseStatus(t.OpenProtocol(handle, guid, out, agent, controller, attributes)); err != nil {
		return nil, err
	}

	return
}

// CloseProtocol calls EFI_BOOT_SERVICES.CloseProtocol().
func (s *BootServices) CloseProtocol(handle efi.Handle, p Identity, agent efi.Handle, controller efi.Handle) error {
	t := s.table()

	if t.CloseProtocol == nil {
		missing("CloseProtocol")
	}

	return parseStatus(t.CloseProtocol(handle, p.GUID(), agent, controller))
}

// LocateProtocol calls EFI_BOOT_SERVICES.LocateProtocol().
//
// The boolean reports whether an interface was found: firmware returning a
// nil interface for a non-indicator protocol is reported as not found
// without error. Indicator protocols are found with a nil interface.
func LocateProtocol[I any](s *BootServices, p Protocol[I], registration efi.Registration) (*I, bool, error) {
	ptr, err := s.LocateProtocolUnchecked(p.GUID(), registration)

	switch {
	case err != nil:
		return nil, false, err
	case isIndicator[I]():
		return nil, true, nil
	case ptr == nil:
		return nil, false, nil
	}

	return (*I)(ptr), true, nil
}

// LocateProtocolUnchecked calls EFI_BOOT_SERVICES.LocateProtocol() and
// returns the raw interface pointer.
func (s *BootServices) LocateProtocolUnchecked(guid *efi.GUID, registration efi.Registration) (iface unsafe.Pointer, err error) {
	t := s.table()

	if t.LocateProtocol == nil {
		missing("LocateProtocol")
	}

	if err = parseStatus(t.LocateProtocol(guid, registration, &iface)); err != nil {
		return nil, err
	}

	return
}

// RegisterProtocolNotify calls EFI_BOOT_SERVICES.RegisterProtocolNotify(),
// the event is signaled on each installation of the protocol.
func (s *BootServices) RegisterProtocolNotify(p Identity, event efi.Event) (registration efi.Registration, err error) {
	t := s.table()

	if t.RegisterProtocolNotify == nil {
		missing("RegisterProtocolNotify")
	}

	if err = parseStatus(t.RegisterProtocolNotify(p.GUID(), event, &registration)); err != nil {
		return 0, err
	}

	return
}
