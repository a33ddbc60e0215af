package usecase

import crerr "github.com/cockroachdb/errors"

var (
	ErrInvalidInput           = crerr.New("invalid input")
	ErrNotFound               = crerr.New("resource not found")
	ErrUnauthorized           = crerr.New("unauthorized")
	ErrDependencyUnavailable  = crerr.New("dependency unavailable")
	ErrDuplicateName          = crerr.New("duplicate name")
	ErrAlreadyRegistered      = crerr.New("player already registered")
	ErrNotRegistered          = crerr.New("player not registered")
	ErrInvalidField           = crerr.New("invalid field")
	ErrInvalidRole            = crerr.New("invalid preferred role")
	ErrRoleNotSet             = crerr.New("preferred role not set")
	ErrNotInSquad             = crerr.New("player not in squad")
	ErrAlreadyInSquad         = crerr.New("player already in a squad")
	ErrIncompleteRegistration = crerr.New("incomplete registration")
	ErrPersistenceFailure     = crerr.New("persistence failure")
	ErrTimedOut               = crerr.New("timed out")
)
