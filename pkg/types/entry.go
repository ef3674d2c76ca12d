package types

import "strings"

// EntryKind tags the variant of a documentation entry
type EntryKind string

const (
	KindModule    EntryKind = "module"
	KindMethod    EntryKind = "method"
	KindAttribute EntryKind = "attribute"
	KindConstant  EntryKind = "constant"
)

// Position represents a location in source code
type Position struct {
	Line   int
	Column int
}

// DocEntry is one documented object: a package or type (module), a method or
// package function (method), a struct field (attribute), or a const/var (constant).
type DocEntry struct {
	// Common base
	CanonicalName   string
	Kind            EntryKind
	Path            string // URL of the rendered page, relative to the doc root
	DescriptionHTML string

	// OwnerName is the enclosing module's canonical name. For modules it equals
	// CanonicalName.
	OwnerName string

	// MemberLabel is the short signature shown next to the owner name.
	// Empty for modules.
	MemberLabel string

	// Source location, used to keep catalog order stable across parallel parses
	File  string
	Start Position
}

// IsMember reports whether the entry belongs to an owner module
func (e *DocEntry) IsMember() bool {
	return e.Kind == KindMethod || e.Kind == KindAttribute || e.Kind == KindConstant
}

// MemberName returns the bare member name ("Do" for "net/http::Client#Do").
// Modules return "".
func (e *DocEntry) MemberName() string {
	if !e.IsMember() {
		return ""
	}
	rest := strings.TrimPrefix(e.CanonicalName, e.OwnerName)
	rest = strings.TrimPrefix(rest, "::")
	return strings.TrimPrefix(rest, "#")
}

// ValidateKind checks if the entry kind is valid
func (e *DocEntry) ValidateKind() error {
	switch e.Kind {
	case KindModule, KindMethod, KindAttribute, KindConstant:
		return nil
	default:
		return ErrInvalidKind
	}
}

// Validate performs structural validation of the entry
func (e *DocEntry) Validate() error {
	if err := e.ValidateKind(); err != nil {
		return err
	}

	if e.Path == "" {
		return ErrEmptyPath
	}

	if e.IsMember() {
		if e.OwnerName == "" {
			return ErrMissingOwner
		}
		if !strings.HasPrefix(e.CanonicalName, e.OwnerName) {
			return ErrOwnerMismatch
		}
		if e.MemberLabel == "" {
			return ErrMissingLabel
		}
	} else if e.MemberLabel != "" {
		return ErrUnexpectedLabel
	}

	return nil
}
