// Package irtest builds small ir.Subject graphs for tests, mirroring the
// teacher's internal/test/fixtures package: cheap, hand-assembled fixtures
// rather than a parser.
package irtest

import "github.com/abigraph/abidiff/internal/ir"

// Env returns a fresh environment; subjects built with the same Env can be
// compared, subjects from different Envs cannot (spec.md §3).
func Env(name string) *ir.Environment {
	return &ir.Environment{Name: name}
}

// Int32 builds the canonical "int" basic type used across engine tests.
func Int32(env *ir.Environment) *ir.BasicType {
	return ir.NewBasicType(env, "int", 32)
}

// Sym builds a plain, unversioned, non-aliased symbol.
func Sym(name string) *ir.Symbol {
	return &ir.Symbol{Name: name, IsDefault: true}
}
