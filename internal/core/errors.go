package core

import (
	"github.com/pkg/errors"

	"github.com/abigraph/abidiff/internal/ir"
)

// EnvironmentMismatchError is panicked when a pairing call receives two
// subjects from different IR environments — a fatal precondition
// violation per spec.md §7, not a reportable diff.
type EnvironmentMismatchError struct {
	First, Second string
}

func (e *EnvironmentMismatchError) Error() string {
	return "comparing subjects from different IR environments: " + e.First + " vs " + e.Second
}

// UnknownSubjectKindError is panicked when the pairing dispatcher has no
// arm for a subject-kind combination — an implementation bug, not a user
// error (spec.md §7).
type UnknownSubjectKindError struct {
	Kind string
}

func (e *UnknownSubjectKindError) Error() string {
	return "pairing engine has no dispatch arm for subject kind: " + e.Kind
}

// RequireSameEnvironment panics with an EnvironmentMismatchError, wrapped
// by pkg/errors so a %+v format verb prints a stack trace, unless a and b
// are nil or share an environment (spec.md §3: "both subjects of any diff
// were produced by the same IR environment").
func RequireSameEnvironment(a, b ir.Subject) {
	if a == nil || b == nil {
		return
	}
	if a.Env() != b.Env() {
		panic(errors.WithStack(&EnvironmentMismatchError{First: a.QualifiedName(), Second: b.QualifiedName()}))
	}
}

// Fatalf panics with a pkg/errors-wrapped message; used for the
// unknown-subject-kind case and any other implementation-bug precondition.
func Fatalf(format string, args ...interface{}) {
	panic(errors.Errorf(format, args...))
}
