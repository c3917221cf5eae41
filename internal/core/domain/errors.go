package domain

import "errors"

// Kind classifies a domain error so adapters can translate it without
// matching on messages.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindNotFound
	KindConflict
	KindUnauthorized
	KindForbidden
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var (
	ErrPollNotFound          = newError(KindNotFound, "No organ found.")
	ErrUserNotFound          = newError(KindNotFound, "User not found.")
	ErrNoVoteProvided        = newError(KindInvalidInput, "No vote provided.")
	ErrUnknownCandidate      = newError(KindInvalidInput, "No candidate with that name.")
	ErrAlreadyVoted          = newError(KindConflict, "Already voted.")
	ErrEmailTaken            = newError(KindConflict, "Sorry, that email is already taken")
	ErrTitleRequired         = newError(KindInvalidInput, "orgname is required")
	ErrCandidatesRequired    = newError(KindInvalidInput, "at least one candidate is required")
	ErrCandidateNameRequired = newError(KindInvalidInput, "candidate fullname is required")
	ErrDuplicateCandidate    = newError(KindInvalidInput, "candidate fullnames must be unique")
	ErrMissingSignUpFields   = newError(KindInvalidInput, "username, email and password are required")
	ErrUnsupportedImage      = newError(KindInvalidInput, "unsupported image type")
	ErrInvalidRequest        = newError(KindInvalidInput, "invalid request body")
	ErrInvalidCredentials    = newError(KindUnauthorized, "invalid credentials")
	ErrMissingToken          = newError(KindUnauthorized, "missing bearer token")
	ErrInvalidToken          = newError(KindUnauthorized, "invalid token")
	ErrForbidden             = newError(KindForbidden, "Unauthorized access.")
	ErrStoreUnavailable      = newError(KindUnavailable, "store unavailable, retry later")
	ErrInternal              = newError(KindInternal, "internal server error")
)

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
