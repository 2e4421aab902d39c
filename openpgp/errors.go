package openpgp

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code classifies an error into one of the families spec'd for this
// package: reader (R_), writer (W_), parser (P_), verify (V_),
// unsupported-algorithm (ALG_), and protocol anomalies (PROTO_).
type Code int

const (
	// Reader errors.
	RReadFailed Code = iota + 1
	RPrematureEOF
	RBadFormat
	RUnconsumedData

	// Writer errors.
	WWriteFailed
	WWriteShort

	// Parser errors.
	PNotEnoughData
	PUnknownTag
	PPacketConsumedTwice
	PMPIFormatError

	// Verification errors.
	VBadSignature
	VUnknownSigner

	// Unsupported algorithm errors.
	AlgUnsupportedSymmetric
	AlgUnsupportedPublicKey
	AlgUnsupportedSignature
	AlgUnsupportedHash

	// Protocol anomalies.
	ProtoBadSymmetricDecrypt
	ProtoUnknownSubpacket
	ProtoCriticalSSIgnored
	ProtoBadVersion
	ProtoWrongDecryptedLength
	ProtoBadSecretKeyChecksum
)

var codeNames = map[Code]string{
	RReadFailed:             "R_READ_FAILED",
	RPrematureEOF:           "R_EARLY_EOF",
	RBadFormat:              "R_BAD_FORMAT",
	RUnconsumedData:         "R_UNCONSUMED_DATA",
	WWriteFailed:            "W_WRITE_FAILED",
	WWriteShort:             "W_WRITE_TOO_SHORT",
	PNotEnoughData:          "P_NOT_ENOUGH_DATA",
	PUnknownTag:             "P_UNKNOWN_TAG",
	PPacketConsumedTwice:    "P_PACKET_CONSUMED_TWICE",
	PMPIFormatError:         "P_MPI_FORMAT_ERROR",
	VBadSignature:           "V_BAD_SIGNATURE",
	VUnknownSigner:          "V_UNKNOWN_SIGNER",
	AlgUnsupportedSymmetric: "ALG_UNSUPPORTED_SYMMETRIC_ALGORITHM",
	AlgUnsupportedPublicKey: "ALG_UNSUPPORTED_PUBLIC_KEY_ALGORITHM",
	AlgUnsupportedSignature: "ALG_UNSUPPORTED_SIGNATURE_ALGORITHM",
	AlgUnsupportedHash:      "ALG_UNSUPPORTED_HASH_ALGORITHM",
	ProtoBadSymmetricDecrypt: "PROTO_BAD_SYMMETRIC_DECRYPT",
	ProtoUnknownSubpacket:    "PROTO_UNKNOWN_SS",
	ProtoCriticalSSIgnored:   "PROTO_CRITICAL_SS_IGNORED",
	ProtoBadVersion:          "PROTO_BAD_VERSION",
	ProtoWrongDecryptedLength: "PROTO_WRONG_LENGTH",
	ProtoBadSecretKeyChecksum: "PROTO_BAD_CHECKSUM",
}

func (c Code) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// Error is a structured parse/verify error. It wraps an optional cause
// with github.com/pkg/errors so that Cause(err) recovers the underlying
// I/O or format failure, and carries a source location the way the
// source's per-push error stack entries did.
type Error struct {
	Code    Code
	Where   string // function or layer that raised it
	Comment string
	cause   error
}

func (e *Error) Error() string {
	msg := e.Code.String()
	if e.Where != "" {
		msg = e.Where + ": " + msg
	}
	if e.Comment != "" {
		msg += ": " + e.Comment
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap lets errors.Is/errors.As see through to the cause.
func (e *Error) Unwrap() error { return e.cause }

// Cause implements the github.com/pkg/errors Causer interface.
func (e *Error) Cause() error { return e.cause }

// newErr builds an *Error, optionally wrapping a cause.
func newErr(code Code, where, comment string, cause error) *Error {
	var wrapped error
	if cause != nil {
		wrapped = errors.WithStack(cause)
	}
	return &Error{Code: code, Where: where, Comment: comment, cause: wrapped}
}

// IsCode reports whether err (or anything in its cause chain) is an
// *Error with the given code.
func IsCode(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			if e.Code == code {
				return true
			}
			err = e.cause
			continue
		}
		err = errors.Unwrap(err)
	}
	return false
}

// ErrorStack is an ordered list of parse-time errors, most recently
// pushed first, mirroring the original's per-parse error stack (spec
// §7 "Propagation") but without module-level mutable state: each
// in-flight Parse call owns its own ErrorStack. Named distinctly from
// reader.go's Stack, which is the unrelated reader-layer push/pop stack.
type ErrorStack struct {
	errs []*Error
}

// Push records e at the front of the stack.
func (s *ErrorStack) Push(e *Error) {
	s.errs = append([]*Error{e}, s.errs...)
}

// Top returns the most recently pushed error, or nil if empty.
func (s *ErrorStack) Top() *Error {
	if len(s.errs) == 0 {
		return nil
	}
	return s.errs[0]
}

// All returns every pushed error, most recent first.
func (s *ErrorStack) All() []*Error {
	return s.errs
}

// Empty reports whether nothing has been pushed.
func (s *ErrorStack) Empty() bool { return len(s.errs) == 0 }
