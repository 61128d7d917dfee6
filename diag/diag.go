// Package diag implements the fatal diagnostic taxonomy of spec.md §7.
// Every checked pass (proto, synctx, lower) reports failures as a
// *diag.Error rather than panicking; only genuine programmer-bug
// conditions (an internal invariant violated by the compiler itself,
// never by user input) use the Internal code.
package diag

import (
	"fmt"

	"golang.org/x/xerrors"

	"janus/pt"
)

// Code is the closed error taxonomy of spec.md §7, plus ArityMismatch
// (a call whose argument lists do not match the callee's parameter
// counts) and Internal.
type Code string

const (
	// Declaration
	DuplicateFunction   Code = "DuplicateFunction"
	DuplicateParam      Code = "DuplicateParam"
	DuplicateLink       Code = "DuplicateLink"
	GroupWithoutExterior Code = "GroupWithoutExterior"

	// Binding
	RedeclareName      Code = "RedeclareName"
	UnknownName        Code = "UnknownName"
	UninitWithOtherRefs Code = "UninitWithOtherRefs"
	RemoveBorrowed     Code = "RemoveBorrowed"

	// Aliasing
	WrongRefPartner   Code = "WrongRefPartner"
	ExteriorFromInterior Code = "ExteriorFromInterior"
	NotResizable      Code = "NotResizable"

	// Reversibility
	MonoIntoNonMono      Code = "MonoIntoNonMono"
	MonoBackwardCondition Code = "MonoBackwardCondition"
	NonMonoInMonoBlock   Code = "NonMonoInMonoBlock"

	// Call
	LinkMismatch    Code = "LinkMismatch"
	ExteriorExpected Code = "ExteriorExpected"
	NotSinglyOwned  Code = "NotSinglyOwned"
	UnknownFunction Code = "UnknownFunction"
	ArityMismatch   Code = "ArityMismatch"

	// Internal (programmer bug, never user-triggerable)
	Internal Code = "Internal"
)

// Error is a single fatal, position-tagged diagnostic. The compiler
// reports the first one raised and stops; nothing is recovered from.
type Error struct {
	Pos  pt.Pos
	Code Code
	Msg  string
	err  error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Pos.Line == 0 && e.Pos.Col == 0 {
		return fmt.Sprintf("%s: %s", e.Code, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Msg)
}

func (e *Error) Unwrap() error { return e.err }

// Errorf builds a *Error at pos with the given code, formatting msg
// via golang.org/x/xerrors so that a trailing "%w" verb chains a cause
// and keeps its stack frame, matching the teacher's own dependency on
// xerrors for wrapped, frame-carrying errors.
func Errorf(pos pt.Pos, code Code, format string, args ...interface{}) *Error {
	wrapped := xerrors.Errorf(format, args...)
	return &Error{Pos: pos, Code: code, Msg: wrapped.Error(), err: wrapped}
}

// InternalErrorf reports a compiler-invariant violation: a condition
// that must be impossible if every earlier pass behaved correctly
// (e.g. clear_bkwd observing a live Reverse placeholder, spec.md §4.4).
func InternalErrorf(format string, args ...interface{}) *Error {
	return Errorf(pt.Pos{}, Internal, format, args...)
}

// As reports whether err is (or wraps) a *Error with the given code.
func As(err error, code Code) bool {
	var d *Error
	if !xerrors.As(err, &d) {
		return false
	}
	return d.Code == code
}
