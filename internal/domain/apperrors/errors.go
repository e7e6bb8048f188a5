// Package apperrors defines the failure kinds of a rate retrieval.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind identifies which stage of a retrieval failed
type Kind int

const (
	// KindInvalidInput is a malformed date or a date too far in the future
	KindInvalidInput Kind = iota + 1
	// KindBadFormat is a malformed currency code or rate value
	KindBadFormat
	// KindEmptyResponse is a feed response without records
	KindEmptyResponse
	// KindXML is a transport or XML parse failure
	KindXML
	// KindRateNotYetAnnounced is a request for tomorrow before the bank published it
	KindRateNotYetAnnounced
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "InvalidInput"
	case KindBadFormat:
		return "BadFormat"
	case KindEmptyResponse:
		return "EmptyResponse"
	case KindXML:
		return "XmlError"
	case KindRateNotYetAnnounced:
		return "RateNotYetAnnounced"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sentinels for errors.Is matching. An *Error matches the sentinel of its kind.
var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrBadFormat           = errors.New("bad format")
	ErrEmptyResponse       = errors.New("empty response")
	ErrXML                 = errors.New("xml error")
	ErrRateNotYetAnnounced = errors.New("rate not yet announced")
)

var sentinels = map[Kind]error{
	KindInvalidInput:        ErrInvalidInput,
	KindBadFormat:           ErrBadFormat,
	KindEmptyResponse:       ErrEmptyResponse,
	KindXML:                 ErrXML,
	KindRateNotYetAnnounced: ErrRateNotYetAnnounced,
}

// XMLDiagnostic is the parser position and message of a malformed document.
// It is the zero value when the failure did not come from the parser.
type XMLDiagnostic struct {
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// Error is a retrieval failure tagged with its kind
type Error struct {
	Kind       Kind
	Message    string
	Cause      error
	Diagnostic XMLDiagnostic
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying transport or parse error, if any
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel for e's kind
func (e *Error) Is(target error) bool {
	sentinel, ok := sentinels[e.Kind]
	return ok && sentinel == target
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewXML wraps a transport or parse failure
func NewXML(message string, cause error, diag XMLDiagnostic) *Error {
	return &Error{
		Kind:       KindXML,
		Message:    message,
		Cause:      cause,
		Diagnostic: diag,
	}
}

// KindOf returns the kind of the first *Error in err's chain, or 0
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}
