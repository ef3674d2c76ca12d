package types

import "fmt"

// ParseResult is everything extracted from one package directory
type ParseResult struct {
	ImportPath  string
	PackageName string
	Entries     []DocEntry

	// Errors are per-file problems that did not stop the package from
	// being indexed
	Errors []ParseError
}

// ParseError locates a problem in a source file. Pos is zero when the
// problem applies to the whole file.
type ParseError struct {
	File    string
	Pos     Position
	Message string
}

// Error formats the error as file:line:col: message
func (pe *ParseError) Error() string {
	if pe.Pos.Line == 0 {
		return fmt.Sprintf("%s: %s", pe.File, pe.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", pe.File, pe.Pos.Line, pe.Pos.Column, pe.Message)
}

// HasErrors reports whether any file failed
func (pr *ParseResult) HasErrors() bool {
	return len(pr.Errors) > 0
}

// AddError records a problem in file
func (pr *ParseResult) AddError(file string, pos Position, msg string) {
	pr.Errors = append(pr.Errors, ParseError{File: file, Pos: pos, Message: msg})
}
