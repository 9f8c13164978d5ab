// Copyright (c) The go-boot authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package efi

import (
	"fmt"
)

// Status represents an EFI_STATUS code.
//
// Codes with the most significant bit set are errors, any other value
// (including warnings) reports success.
type Status uint64

const errorBit = 1 << 63

// EFI Status Codes
// https://uefi.org/specs/UEFI/2.10/Apx_D_Status_Codes.html
const (
	EFI_SUCCESS Status = 0

	EFI_LOAD_ERROR           Status = errorBit | 1
	EFI_INVALID_PARAMETER    Status = errorBit | 2
	EFI_UNSUPPORTED          Status = errorBit | 3
	EFI_BAD_BUFFER_SIZE      Status = errorBit | 4
	EFI_BUFFER_TOO_SMALL     Status = errorBit | 5
	EFI_NOT_READY            Status = errorBit | 6
	EFI_DEVICE_ERROR         Status = errorBit | 7
	EFI_WRITE_PROTECTED      Status = errorBit | 8
	EFI_OUT_OF_RESOURCES     Status = errorBit | 9
	EFI_VOLUME_CORRUPTED     Status = errorBit | 10
	EFI_VOLUME_FULL          Status = errorBit | 11
	EFI_NO_MEDIA             Status = errorBit | 12
	EFI_MEDIA_CHANGED        Status = errorBit | 13
	EFI_NOT_FOUND            Status = errorBit | 14
	EFI_ACCESS_DENIED        Status = errorBit | 15
	EFI_NO_RESPONSE          Status = errorBit | 16
	EFI_NO_MAPPING           Status = errorBit | 17
	EFI_TIMEOUT              Status = errorBit | 18
	EFI_NOT_STARTED          Status = errorBit | 19
	EFI_ALREADY_STARTED      Status = errorBit | 20
	EFI_ABORTED              Status = errorBit | 21
	EFI_ICMP_ERROR           Status = errorBit | 22
	EFI_TFTP_ERROR           Status = errorBit | 23
	EFI_PROTOCOL_ERROR       Status = errorBit | 24
	EFI_INCOMPATIBLE_VERSION Status = errorBit | 25
	EFI_SECURITY_VIOLATION   Status = errorBit | 26
	EFI_CRC_ERROR            Status = errorBit | 27
	EFI_END_OF_MEDIA         Status = errorBit | 28
	EFI_END_OF_FILE          Status = errorBit | 31
	EFI_INVALID_LANGUAGE     Status = errorBit | 32
	EFI_COMPROMISED_DATA     Status = errorBit | 33
	EFI_IP_ADDRESS_CONFLICT  Status = errorBit | 34
	EFI_HTTP_ERROR           Status = errorBit | 35

	EFI_WARN_UNKNOWN_GLYPH    Status = 1
	EFI_WARN_DELETE_FAILURE   Status = 2
	EFI_WARN_WRITE_FAILURE    Status = 3
	EFI_WARN_BUFFER_TOO_SMALL Status = 4
	EFI_WARN_STALE_DATA       Status = 5
	EFI_WARN_FILE_SYSTEM      Status = 6
	EFI_WARN_RESET_REQUIRED   Status = 7
)

var statusNames = map[Status]string{
	EFI_SUCCESS:               "EFI_SUCCESS",
	EFI_LOAD_ERROR:            "EFI_LOAD_ERROR",
	EFI_INVALID_PARAMETER:     "EFI_INVALID_PARAMETER",
	EFI_UNSUPPORTED:           "EFI_UNSUPPORTED",
	EFI_BAD_BUFFER_SIZE:       "EFI_BAD_BUFFER_SIZE",
	EFI_BUFFER_TOO_SMALL:      "EFI_BUFFER_TOO_SMALL",
	EFI_NOT_READY:             "EFI_NOT_READY",
	EFI_DEVICE_ERROR:          "EFI_DEVICE_ERROR",
	EFI_WRITE_PROTECTED:       "EFI_WRITE_PROTECTED",
	EFI_OUT_OF_RESOURCES:      "EFI_OUT_OF_RESOURCES",
	EFI_VOLUME_CORRUPTED:      "EFI_VOLUME_CORRUPTED",
	EFI_VOLUME_FULL:           "EFI_VOLUME_FULL",
	EFI_NO_MEDIA:              "EFI_NO_MEDIA",
	EFI_MEDIA_CHANGED:         "EFI_MEDIA_CHANGED",
	EFI_NOT_FOUND:             "EFI_NOT_FOUND",
	EFI_ACCESS_DENIED:         "EFI_ACCESS_DENIED",
	EFI_NO_RESPONSE:           "EFI_NO_RESPONSE",
	EFI_NO_MAPPING:            "EFI_NO_MAPPING",
	EFI_TIMEOUT:               "EFI_TIMEOUT",
	EFI_NOT_STARTED:           "EFI_NOT_STARTED",
	EFI_ALREADY_STARTED:       "EFI_ALREADY_STARTED",
	EFI_ABORTED:               "EFI_ABORTED",
	EFI_ICMP_ERROR:            "EFI_ICMP_ERROR",
	EFI_TFTP_ERROR:            "EFI_TFTP_ERROR",
	EFI_PROTOCOL_ERROR:        "EFI_PROTOCOL_ERROR",
	EFI_INCOMPATIBLE_VERSION:  "EFI_INCOMPATIBLE_VERSION",
	EFI_SECURITY_VIOLATION:    "EFI_SECURITY_VIOLATION",
	EFI_CRC_ERROR:             "EFI_CRC_ERROR",
	EFI_END_OF_MEDIA:          "EFI_END_OF_MEDIA",
	EFI_END_OF_FILE:           "EFI_END_OF_FILE",
	EFI_INVALID_LANGUAGE:      "EFI_INVALID_LANGUAGE",
	EFI_COMPROMISED_DATA:      "EFI_COMPROMISED_DATA",
	EFI_IP_ADDRESS_CONFLICT:   "EFI_IP_ADDRESS_CONFLICT",
	EFI_HTTP_ERROR:            "EFI_HTTP_ERROR",
	EFI_WARN_UNKNOWN_GLYPH:    "EFI_WARN_UNKNOWN_GLYPH",
	EFI_WARN_DELETE_FAILURE:   "EFI_WARN_DELETE_FAILURE",
	EFI_WARN_WRITE_FAILURE:    "EFI_WARN_WRITE_FAILURE",
	EFI_WARN_BUFFER_TOO_SMALL: "EFI_WARN_BUFFER_TOO_SMALL",
	EFI_WARN_STALE_DATA:       "EFI_WARN_STALE_DATA",
	EFI_WARN_FILE_SYSTEM:      "EFI_WARN_FILE_SYSTEM",
	EFI_WARN_RESET_REQUIRED:   "EFI_WARN_RESET_REQUIRED",
}

// IsError reports whether the status reports an error.
func (s Status) IsError() bool {
	return s&errorBit != 0
}

// String returns the status name, or its numeric value when unknown.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}

	if s.IsError() {
		return fmt.Sprintf("EFI_STATUS(error %#x)", uint64(s&^errorBit))
	}

	return fmt.Sprintf("EFI_STATUS(%#x)", uint64(s))
}

// Error implements the error interface.
func (s Status) Error() string {
	return s.String()
}
