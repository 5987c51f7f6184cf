// Package vterr defines the VTRemote client's error taxonomy (spec.md
// section 7). Every error surfaced across the wire/proto/transport/session
// layers wraps one of these kinds so callers can branch with vterr.Is.
package vterr

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation failed.
type Kind int

const (
	// InvalidArgument: caller supplied malformed input (bad host:port,
	// oversize string, unsupported pixel format, undersized buffer).
	InvalidArgument Kind = iota
	// InvalidData: peer violated the protocol (bad magic/version, wrong
	// type for phase, declared length exceeds payload, plane_count>4,
	// extradata overrun, LZ4 size mismatch, nonzero CONFIGURE_ACK status).
	InvalidData
	// PermissionDenied: HELLO_ACK status nonzero.
	PermissionDenied
	// NotImplemented: wire_compression=zstd requested.
	NotImplemented
	// IO: socket/DNS failure, mid-message timeout, or peer ERROR message.
	IO
	// EndOfStream: DONE received, or session already done.
	EndOfStream
	// WouldBlock: non-blocking pull returned no data this call.
	WouldBlock
	// ResourceExhausted: allocation failure, packet ring overflow.
	ResourceExhausted
	// ExternalLibrary: LZ4 compress/decompress hard failure.
	ExternalLibrary
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "InvalidArgument"
	case InvalidData:
		return "InvalidData"
	case PermissionDenied:
		return "PermissionDenied"
	case NotImplemented:
		return "NotImplemented"
	case IO:
		return "IO"
	case EndOfStream:
		return "EndOfStream"
	case WouldBlock:
		return "WouldBlock"
	case ResourceExhausted:
		return "ResourceExhausted"
	case ExternalLibrary:
		return "ExternalLibrary"
	default:
		return "Unknown"
	}
}

// Error is a Kind wrapping an underlying cause (or none, for leaf errors).
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a leaf error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an error of the given kind wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Of reports the Kind of err if it is (or wraps) a *Error, and ok=true.
func Of(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return 0, false
	}
	return e.Kind, true
}

// Is reports whether err's Kind matches kind.
func Is(err error, kind Kind) bool {
	k, ok := Of(err)
	return ok && k == kind
}
