// Package editscript adapts the Myers' O(ND) diff algorithm — treated by
// spec.md as a reusable external primitive the pairing engine consumes,
// never reimplements — to arbitrary comparable sequences.
//
// The technique is the teacher's own: internal/plumbing/diff.go encodes
// each line of a file into a private rune via a lookup table
// (dmp.DiffLinesToRunes) and runs the O(ND) algorithm over the resulting
// rune sequences (dmp.DiffMainRunes) because diffmatchpatch's core
// algorithm only operates on runes. This package generalizes that trick
// from "line of text" to "any T with a token key", so
// internal/pairing can diff member lists, parameter lists and enumerator
// lists without ever importing diffmatchpatch directly.
package editscript

import "github.com/sergi/go-diff/diffmatchpatch"

// Deletion records that a[Index] has no counterpart in b.
type Deletion[T any] struct {
	Index   int
	Element T
}

// Insertion records that Elements appear in b with no counterpart in a,
// positioned immediately after a[At] (At == -1 means "before a[0]").
type Insertion[T any] struct {
	At       int
	Elements []T
}

// Script is the minimal edit script transforming a into b (spec.md §3,
// "Edit script").
type Script[T any] struct {
	Deletions  []Deletion[T]
	Insertions []Insertion[T]
}

// Diff computes the minimal edit script transforming a into b. token must
// return equal strings for elements the caller considers equal and must be
// stable for the lifetime of the call; it plays the role of spec.md's
// "equality" parameter to the external diff(seq_a, seq_b, equality)
// primitive.
func Diff[T any](a, b []T, token func(T) string) Script[T] {
	table := make(map[string]rune, len(a)+len(b))
	var next rune = 1
	encode := func(items []T) []rune {
		runes := make([]rune, len(items))
		for i, it := range items {
			key := token(it)
			r, ok := table[key]
			if !ok {
				r = next
				next++
				table[key] = r
			}
			runes[i] = r
		}
		return runes
	}
	runesA := encode(a)
	runesB := encode(b)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMainRunes(runesA, runesB, false)

	var script Script[T]
	ia, ib := 0, 0
	for _, d := range diffs {
		n := len([]rune(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			ia += n
			ib += n
		case diffmatchpatch.DiffDelete:
			for k := 0; k < n; k++ {
				script.Deletions = append(script.Deletions, Deletion[T]{Index: ia, Element: a[ia]})
				ia++
			}
		case diffmatchpatch.DiffInsert:
			insertion := Insertion[T]{At: ia - 1}
			for k := 0; k < n; k++ {
				insertion.Elements = append(insertion.Elements, b[ib])
				ib++
			}
			script.Insertions = append(script.Insertions, insertion)
		}
	}
	return script
}

// Flatten returns every inserted element in b-order, discarding positions.
func (s Script[T]) Flatten() []T {
	var out []T
	for _, ins := range s.Insertions {
		out = append(out, ins.Elements...)
	}
	return out
}
