// Package encoding error types.
//
// Every decoder in this module reports failures through one of the kinds
// below. Callers distinguish them with errors.As; contextual wrapping with
// fmt.Errorf("...: %w") is preserved along the way.
package encoding

import (
	"errors"
	"fmt"
)

// IOError is returned when the underlying stream is truncated or unreadable.
type IOError struct {
	Op    string // What was being read (e.g., "u64", "32-byte array")
	Cause error  // Underlying io error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: reading %s: %v", e.Op, e.Cause)
}

func (e *IOError) Unwrap() error {
	return e.Cause
}

// UnsupportedVersionError is returned when a version tag is above the
// highest value this module knows how to read.
type UnsupportedVersionError struct {
	Section string // Which section carried the tag ("wallet", "keys", ...)
	Version uint64 // Version found in the stream
	Max     uint64 // Highest supported version
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("unsupported %s version: %d (max %d)", e.Section, e.Version, e.Max)
}

// InvalidFormatError is returned for any structural violation of the format:
// bad UTF-8, non-canonical field encodings, unknown tags, inconsistent trees.
type InvalidFormatError struct {
	Message string // Human-readable reason
	Cause   error  // Underlying violation (if any)
}

func (e *InvalidFormatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("invalid wallet format: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("invalid wallet format: %s", e.Message)
}

func (e *InvalidFormatError) Unwrap() error {
	return e.Cause
}

// ErrNotImplemented matches every NotImplementedError via errors.Is.
var ErrNotImplemented = errors.New("not implemented")

// NotImplementedError is returned for format generations that are known to
// exist but are deliberately not parsed.
type NotImplementedError struct {
	Feature string
	Version uint64
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("%s with version %d are not supported", e.Feature, e.Version)
}

func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}

// Invalidf builds an InvalidFormatError with a formatted message.
func Invalidf(format string, args ...interface{}) error {
	return &InvalidFormatError{Message: fmt.Sprintf(format, args...)}
}

// CheckVersion rejects a section version above max. The result is an
// InvalidFormatError wrapping an UnsupportedVersionError, so both kinds
// match with errors.As.
func CheckVersion(section string, version, max uint64) error {
	if version <= max {
		return nil
	}
	return &InvalidFormatError{
		Message: fmt.Sprintf("don't know how to read %s", section),
		Cause:   &UnsupportedVersionError{Section: section, Version: version, Max: max},
	}
}
