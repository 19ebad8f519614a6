// Package needle implements an audio-fingerprint engine for locating shared
// opening and ending segments (intros/outros) across a set of episodic video
// files.
package needle

import (
	"errors"
	"fmt"
)

// Code is a stable error classification shared by every needle package and
// by any C façade built on top of this library. Values are never reordered;
// new failure classes are appended.
type Code int

const (
	Ok Code = iota
	InvalidUtf8String
	NullArgument
	InvalidArgument
	FrameHashDataNotFound
	FrameHashDataInvalidVersion
	InvalidFrameHashData
	ComparatorMinimumPaths
	AnalyzerInvalidHashPeriod
	AnalyzerInvalidHashDuration
	IOError
	Unknown
)

func (c Code) String() string {
	switch c {
	case Ok:
		return "Ok"
	case InvalidUtf8String:
		return "InvalidUtf8String"
	case NullArgument:
		return "NullArgument"
	case InvalidArgument:
		return "InvalidArgument"
	case FrameHashDataNotFound:
		return "FrameHashDataNotFound"
	case FrameHashDataInvalidVersion:
		return "FrameHashDataInvalidVersion"
	case InvalidFrameHashData:
		return "InvalidFrameHashData"
	case ComparatorMinimumPaths:
		return "ComparatorMinimumPaths"
	case AnalyzerInvalidHashPeriod:
		return "AnalyzerInvalidHashPeriod"
	case AnalyzerInvalidHashDuration:
		return "AnalyzerInvalidHashDuration"
	case IOError:
		return "IOError"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying cause with a stable Code so callers (and any
// C façade) can branch on failure class without parsing message text.
type Error struct {
	Code Code
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Errorf builds an *Error with a formatted message and no wrapped cause.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// Wrap builds an *Error carrying both a formatted message and an underlying
// cause, preserving it for errors.Unwrap/errors.Is/errors.As.
func Wrap(code Code, err error, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf extracts the Code from err if it (or something it wraps) is an
// *Error, otherwise returns Unknown.
func CodeOf(err error) Code {
	if err == nil {
		return Ok
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}
