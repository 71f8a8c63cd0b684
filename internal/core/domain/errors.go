package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error independently of the transport that reports it.
type Kind string

const (
	KindBadInput        Kind = "bad-input"
	KindBadID           Kind = "bad-id"
	KindNotFound        Kind = "not-found"
	KindDuplicate       Kind = "duplicate"
	KindBadRole         Kind = "bad-role"
	KindInUse           Kind = "in-use"
	KindInactiveAccount Kind = "inactive-account"
	KindNoAccess        Kind = "no-access"
	KindUnauthorized    Kind = "unauthorized"
	KindInternal        Kind = "internal"
)

// Error is the single error shape produced by the core. Field names the
// offending input field, Ref the record a batch element targeted.
type Error struct {
	Kind    Kind
	Field   string
	Ref     string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Ref != "" {
		msg = fmt.Sprintf("%s (id %s)", msg, e.Ref)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind, and on Field when the target names one, so callers can
// write errors.Is(err, domain.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Field == "" || t.Field == e.Field
}

// WithRef returns a copy of e bound to the batch element id.
func (e *Error) WithRef(id string) *Error {
	c := *e
	c.Ref = id
	return &c
}

// Kind-level sentinels for errors.Is.
var (
	ErrBadInput        = &Error{Kind: KindBadInput}
	ErrBadID           = &Error{Kind: KindBadID}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrDuplicate       = &Error{Kind: KindDuplicate}
	ErrBadRole         = &Error{Kind: KindBadRole}
	ErrInUse           = &Error{Kind: KindInUse}
	ErrInactiveAccount = &Error{Kind: KindInactiveAccount}
	ErrNoAccess        = &Error{Kind: KindNoAccess}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
)

func BadInput(field, msg string) *Error {
	return &Error{Kind: KindBadInput, Field: field, Message: msg}
}

func BadID(field, msg string) *Error {
	return &Error{Kind: KindBadID, Field: field, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Duplicate builds the "already exists" error. Resolver collisions and store
// duplicate-key failures both go through here so the message is identical.
func Duplicate(field string) *Error {
	return &Error{Kind: KindDuplicate, Field: field, Message: duplicateMessage(field)}
}

func duplicateMessage(field string) string {
	switch field {
	case FieldRoleName:
		return "role name already exists"
	case FieldEmail:
		return "email already exists"
	case FieldUsername:
		return "username already exists"
	default:
		return "email or username already exists"
	}
}

var (
	ErrRoleNotFound       = NotFound("role not found")
	ErrUserNotFound       = NotFound("user not found")
	ErrRoleMissing        = &Error{Kind: KindBadRole, Field: FieldRole, Message: "role does not exist"}
	ErrRoleInUse          = &Error{Kind: KindInUse, Message: "cannot delete role as it is assigned to users"}
	ErrAccountInactive    = &Error{Kind: KindInactiveAccount, Message: "user account is inactive"}
	ErrModuleDenied       = &Error{Kind: KindNoAccess, Message: "user does not have access to this module"}
	ErrInvalidCredentials = &Error{Kind: KindUnauthorized, Message: "invalid credentials"}
)

// KindOf returns the kind carried by err, or KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
