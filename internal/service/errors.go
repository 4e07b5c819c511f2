package service

import (
	"errors"
)

// Kind classifies expected, caller-recoverable failures. Anything else is an
// infrastructure fault and reports KindInternal.
type Kind int

const (
	KindInternal Kind = iota
	KindDuplicateEmail
	KindInvalidCredentials
	KindInvalidToken
	KindTokenNotFound
	KindAccessDenied
	KindPermissionDenied
	KindInvalidRole
	KindOrganizerRoleImmutable
	KindCannotRemoveOrganizer
	KindOrganizerCannotLeave
	KindNotFound
	KindValidation
	KindAlreadyMember
)

var kindNames = map[Kind]string{
	KindInternal:               "internal",
	KindDuplicateEmail:         "duplicate_email",
	KindInvalidCredentials:     "invalid_credentials",
	KindInvalidToken:           "invalid_token",
	KindTokenNotFound:          "token_not_found",
	KindAccessDenied:           "access_denied",
	KindPermissionDenied:       "permission_denied",
	KindInvalidRole:            "invalid_role",
	KindOrganizerRoleImmutable: "organizer_role_immutable",
	KindCannotRemoveOrganizer:  "cannot_remove_organizer",
	KindOrganizerCannotLeave:   "organizer_cannot_leave",
	KindNotFound:               "not_found",
	KindValidation:             "validation",
	KindAlreadyMember:          "already_member",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

var (
	ErrDuplicateEmail         = &Error{KindDuplicateEmail, "email already registered"}
	ErrInvalidCredentials     = &Error{KindInvalidCredentials, "invalid email or password"}
	ErrInvalidToken           = &Error{KindInvalidToken, "invalid or expired token"}
	ErrTokenNotFound          = &Error{KindTokenNotFound, "refresh token not found"}
	ErrAccessDenied           = &Error{KindAccessDenied, "you are not a member of this trip"}
	ErrPermissionDenied       = &Error{KindPermissionDenied, "permission denied"}
	ErrInvalidRole            = &Error{KindInvalidRole, "invalid role, must be organizer, member or viewer"}
	ErrOrganizerRoleImmutable = &Error{KindOrganizerRoleImmutable, "organizer role cannot be changed"}
	ErrCannotRemoveOrganizer  = &Error{KindCannotRemoveOrganizer, "cannot remove trip organizer"}
	ErrOrganizerCannotLeave   = &Error{KindOrganizerCannotLeave, "trip organizer cannot leave the trip"}
	ErrNotFound               = &Error{KindNotFound, "not found"}
	ErrValidation             = &Error{KindValidation, "validation failed"}
	ErrAlreadyMember          = &Error{KindAlreadyMember, "user is already a member of this trip"}
)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
