// Package errcode defines the coded errors returned by the SDK.
//
// Every local validation failure and protocol-state failure carries a Code
// so callers can branch on the kind of failure without matching strings.
// The rendered form is "<code>: <message>".
package errcode

import (
	"errors"
	"fmt"
)

// Code identifies a kind of SDK failure.
type Code string

const (
	// Missing reports a required field absent from the input.
	Missing Code = "Missing"
	// CodeIncorrectPatchAction reports a patch action outside the supported set.
	CodeIncorrectPatchAction Code = "CodeIncorrectPatchAction"
	// UnsupportedElement reports an unknown document element, endpoint kind or tag.
	UnsupportedElement Code = "UnsupportedElement"
	// KeyDuplicated reports two keys with the same purpose in one batch.
	KeyDuplicated Code = "KeyDuplicated"
	// InvalidID reports an unrecognised key id.
	InvalidID Code = "InvalidID"
	// InvalidPurpose reports an unrecognised key purpose.
	InvalidPurpose Code = "InvalidPurpose"
	// InvalidAddress reports a malformed account or contract address.
	InvalidAddress Code = "InvalidAddress"
	// InvalidKey reports malformed key material.
	InvalidKey Code = "InvalidKey"
	// DidDeactivated reports a read against a deactivated DID.
	DidDeactivated Code = "DidDeactivated"
	// DidLocked reports a read against a locked DID.
	DidLocked Code = "DidLocked"
	// WrongStatus reports an unknown or unexpected DID status.
	WrongStatus Code = "WrongStatus"
	// NotFound reports a state field or domain that does not exist.
	NotFound Code = "NotFound"
	// TransactionFailed reports a transaction that did not confirm successfully.
	TransactionFailed Code = "TransactionFailed"
	// InvalidUsername reports a username that fails validation.
	InvalidUsername Code = "InvalidUsername"
	// UnsupportedCurrency reports a token missing from the currency table.
	UnsupportedCurrency Code = "UnsupportedCurrency"
)

// Error is a coded SDK error.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches any *Error with the same code, so errors.Is(err, New(code, ""))
// works regardless of the message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New returns an error with the given code and message.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf returns an error with the given code and a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// Is reports whether err's chain contains an *Error with the given code.
func Is(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
