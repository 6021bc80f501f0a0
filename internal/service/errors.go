package service

import "errors"

type Kind string

const (
	KindNotFound             Kind = "NOT_FOUND"
	KindCourtUnavailable     Kind = "COURT_UNAVAILABLE"
	KindEquipmentUnavailable Kind = "EQUIPMENT_UNAVAILABLE"
	KindCoachUnavailable     Kind = "COACH_UNAVAILABLE"
	KindInvalidRange         Kind = "INVALID_RANGE"
	KindCoachNotFound        Kind = "COACH_NOT_FOUND"
	KindInvalidSlot          Kind = "INVALID_SLOT"
	KindInvalidInput         Kind = "INVALID_INPUT"
)

// Error is a business rejection. Two Errors match under errors.Is when their
// kinds are equal, so callers compare against the sentinels below.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrCourtUnavailable     = &Error{Kind: KindCourtUnavailable}
	ErrEquipmentUnavailable = &Error{Kind: KindEquipmentUnavailable}
	ErrCoachUnavailable     = &Error{Kind: KindCoachUnavailable}
	ErrInvalidRange         = &Error{Kind: KindInvalidRange}
	ErrCoachNotFound        = &Error{Kind: KindCoachNotFound}
	ErrInvalidSlot          = &Error{Kind: KindInvalidSlot}
	ErrInvalidInput         = &Error{Kind: KindInvalidInput}
)

// KindOf returns the kind of a business error, or "" for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
