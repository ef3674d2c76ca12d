package types

import "errors"

// Domain errors for type validation
var (
	// Documentation entry errors
	ErrInvalidKind     = errors.New("invalid entry kind")
	ErrEmptyPath       = errors.New("entry path is required")
	ErrMissingOwner    = errors.New("member entries require an owner name")
	ErrOwnerMismatch   = errors.New("canonical name must start with the owner name")
	ErrMissingLabel    = errors.New("member entries require a member label")
	ErrUnexpectedLabel = errors.New("module entries cannot carry a member label")

	// Ranked result errors
	ErrInvalidRank  = errors.New("rank must be >= 1")
	ErrInvalidScore = errors.New("score must be positive")
)
