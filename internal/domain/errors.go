package domain

import "errors"

// Store errors
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// ErrorKind tags a FlowError with its place in the auth error taxonomy.
type ErrorKind string

const (
	KindCSRF              ErrorKind = "csrf"
	KindValidation        ErrorKind = "validation"
	KindDuplicateEmail    ErrorKind = "duplicate_email"
	KindNotFound          ErrorKind = "not_found"
	KindWrongProvider     ErrorKind = "wrong_provider"
	KindIncorrectPassword ErrorKind = "incorrect_password"
	KindInvalidOTPFormat  ErrorKind = "invalid_otp_format"
	KindInvalidOTP        ErrorKind = "invalid_otp"
	KindSessionExpired    ErrorKind = "session_expired"
	KindAlreadyUsed       ErrorKind = "already_used"
	KindExpired           ErrorKind = "expired"
	KindDelivery          ErrorKind = "delivery"
	KindStore             ErrorKind = "store"
)

// FlowError is a user-facing failure of an auth flow. Field names the form
// field at fault when one exists; Alert selects the "alert" envelope type
// instead of "error". Every FlowError is recovered at the request boundary
// and rendered as a JSON envelope, never propagated as a fault.
type FlowError struct {
	Kind  ErrorKind
	Field string
	Title string
	Msg   string
	Alert bool
}

func (e *FlowError) Error() string { return e.Msg }

// Flow builds a plain flow error.
func Flow(kind ErrorKind, field, msg string) *FlowError {
	return &FlowError{Kind: kind, Field: field, Msg: msg}
}

// FlowTitled builds a flow error carrying a title.
func FlowTitled(kind ErrorKind, title, msg string) *FlowError {
	return &FlowError{Kind: kind, Title: title, Msg: msg}
}

// FlowAlert builds a flow error rendered with the "alert" envelope type.
func FlowAlert(kind ErrorKind, title, msg string) *FlowError {
	return &FlowError{Kind: kind, Title: title, Msg: msg, Alert: true}
}

// StoreFailure is the generic "try again later" error surfaced when the
// credential store fails. Detail never leaks to the caller.
func StoreFailure() *FlowError {
	return &FlowError{Kind: KindStore, Title: "System Error", Msg: "Something went wrong. Please try again later!"}
}
