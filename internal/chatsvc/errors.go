// Package chatsvc holds the business rules for conversations, messages,
// reactions and read receipts. It is the single place authorization and
// idempotency are enforced before anything is broadcast.
package chatsvc

import "errors"

// ErrorKind classifies an expected failure so the gateway can convert it to
// an error event without matching on message strings.
type ErrorKind string

const (
	// KindValidation covers malformed or missing input.
	KindValidation ErrorKind = "validation"
	// KindAuthorization covers "not a participant" / "not the sender".
	KindAuthorization ErrorKind = "authorization"
	// KindNotFound covers absent records. Edit/delete ownership failures
	// are reported with this kind too, so a caller cannot probe whether a
	// message id exists.
	KindNotFound ErrorKind = "not_found"
)

// Error is an expected, client-reportable failure.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func NewValidationError(code, msg string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: msg}
}

func NewAuthorizationError(code, msg string) *Error {
	return &Error{Kind: KindAuthorization, Code: code, Message: msg}
}

func NewNotFoundError(code, msg string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: msg}
}

// AsError extracts the typed error from err, if any.
func AsError(err error) (*Error, bool) {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
