package payerr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindConfigMissing      Kind = "CONFIG_MISSING"
	KindConfigInvalid      Kind = "CONFIG_INVALID"
	KindContractIncomplete Kind = "CONTRACT_INCOMPLETE"
	KindPeriodUndefined    Kind = "PERIOD_UNDEFINED"
	KindRateLookupFailed   Kind = "RATE_LOOKUP_FAILED"
	KindDataIncoherent     Kind = "DATA_INCOHERENT"
	KindCumulsMissing      Kind = "CUMULS_MISSING"
	KindInternal           Kind = "INTERNAL_ERROR"
)

// Error is the single structured failure the engine reports.
type Error struct {
	Kind    Kind
	Message string
	Field   string // offending field or file, optional
	Err     error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns nil when err is nil.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindInternal
}

// IsInputKind reports kinds caused by configuration or input rather than
// by the engine itself.
func IsInputKind(k Kind) bool {
	switch k {
	case KindConfigMissing, KindConfigInvalid, KindContractIncomplete, KindPeriodUndefined:
		return true
	}
	return false
}
