// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package efi

// LocateSearchType represents an EFI_LOCATE_SEARCH_TYPE.
type LocateSearchType uint32

// EFI_LOCATE_SEARCH_TYPE
const (
	AllHandles LocateSearchType = iota
	ByRegisterNotify
	ByProtocol
)

// OpenAttribute represents the attributes argument of OpenProtocol.
type OpenAttribute uint32

// OpenProtocol attributes
const (
	EFI_OPEN_PROTOCOL_BY_HANDLE_PROTOCOL  OpenAttribute = 0x00000001
	EFI_OPEN_PROTOCOL_GET_PROTOCOL        OpenAttribute = 0x00000002
	EFI_OPEN_PROTOCOL_TEST_PROTOCOL       OpenAttribute = 0x00000004
	EFI_OPEN_PROTOCOL_BY_CHILD_CONTROLLER OpenAttribute = 0x00000008
	EFI_OPEN_PROTOCOL_BY_DRIVER           OpenAttribute = 0x00000010
	EFI_OPEN_PROTOCOL_EXCLUSIVE           OpenAttribute = 0x00000020
)

// OpenProtocolInformationEntry represents an
// EFI_OPEN_PROTOCOL_INFORMATION_ENTRY.
type OpenProtocolInformationEntry struct {
	AgentHandle      Handle
	ControllerHandle Handle
	Attributes       OpenAttribute
	OpenCount        uint32
}

// DevicePathNode represents the generic header of an
// EFI_DEVICE_PATH_PROTOCOL node.
type DevicePathNode struct {
	Type    uint8
	SubType uint8
	Length  uint16
}

// Well known protocols
var (
	EFI_LOADED_IMAGE_PROTOCOL_GUID       = MustParseGUID("5b1b31a1-9562-11d2-8e3f-00a0c969723b")
	EFI_DEVICE_PATH_PROTOCOL_GUID        = MustParseGUID("09576e91-6d3f-11d2-8e39-00a0c969723b")
	EFI_SIMPLE_FILE_SYSTEM_PROTOCOL_GUID = MustParseGUID("964e5b22-6459-11d2-8e39-00a0c969723b")
	EFI_SIMPLE_TEXT_INPUT_PROTOCOL_GUID  = MustParseGUID("387477c1-69c7-11d2-8e39-00a0c969723b")
	EFI_SIMPLE_TEXT_OUTPUT_PROTOCOL_GUID = MustParseGUID("387477c2-69c7-11d2-8e39-00a0c969723b")
	EFI_GRAPHICS_OUTPUT_PROTOCOL_GUID    = MustParseGUID("9042a9de-23dc-4a38-96fb-7aded080516a")
	EFI_SIMPLE_NETWORK_PROTOCOL_GUID     = MustParseGUID("a19832b9-ac25-11d3-9a2d-0090273fc14d")
	EFI_RNG_PROTOCOL_GUID                = MustParseGUID("3152bca5-eade-433d-862e-c01cdc291f44")
)

// Well known configuration tables
var (
	ACPI_20_TABLE_GUID               = MustParseGUID("8868e871-e4f1-11d3-bc22-0080c73c8881")
	SMBIOS3_TABLE_GUID               = MustParseGUID("f2fd1544-9794-4a2c-992e-e5bbcf20e394")
	EFI_DTB_TABLE_GUID               = MustParseGUID("b1b621d5-f19c-41a5-830b-d9152c69aae0")
	EFI_MEMORY_ATTRIBUTES_TABLE_GUID = MustParseGUID("dcfa911d-26eb-469f-a220-38b7dc461220")
)
