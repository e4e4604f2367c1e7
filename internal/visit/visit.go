// Package visit implements spec.md §4.3, the traversal and visitor
// protocol every pass over the diff graph (propagation, suppression,
// redundancy marking, reporting) shares.
package visit

import (
	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/diff"
)

// Visitor has six hooks: begin/end for a single diff node, begin/end for a
// corpus diff, and two visit hooks (pre-order and post-order). The hooks
// take the diff.Node interface, so a visitor that embeds Base and only
// overrides PreVisit or PostVisit is invoked for every node regardless of
// kind.
type Visitor interface {
	BeginNode(n diff.Node)
	EndNode(n diff.Node)
	BeginCorpus(n *diff.CorpusDiff)
	EndCorpus(n *diff.CorpusDiff)

	// PreVisit runs before descending into n's children; returning false
	// aborts the subtree (children are not visited).
	PreVisit(n diff.Node) bool
	// PostVisit runs after every child has been traversed.
	PostVisit(n diff.Node)
}

// Base is a no-op Visitor concrete visitors embed and override selectively.
type Base struct{}

func (Base) BeginNode(diff.Node)        {}
func (Base) EndNode(diff.Node)          {}
func (Base) BeginCorpus(*diff.CorpusDiff) {}
func (Base) EndCorpus(*diff.CorpusDiff)   {}
func (Base) PreVisit(diff.Node) bool     { return true }
func (Base) PostVisit(diff.Node)         {}

// Options controls how Traverse treats already-visited nodes.
type Options struct {
	// OnceEach, when true, skips descending into a node that the context's
	// visited-set already marks (spec.md §4.3: "the already-visited check
	// prevents infinite recursion through IR cycles"). Debug dumpers that
	// must visit every occurrence (spec.md §9, DumpDiffTree) set this false.
	OnceEach bool
}

// Traverse walks n depth-first under ctx, calling v's hooks in the order
// spec.md §4.3 specifies: begin; if already visited and Options.OnceEach,
// end and return; pre-order visit (abort subtree on false); mark
// traversing; recurse into children (abort on false); unmark; post-order
// visit; end.
func Traverse(ctx *core.Context, v Visitor, n diff.Node, opts Options) bool {
	if n == nil {
		return true
	}
	v.BeginNode(n)
	defer v.EndNode(n)

	if ctx.Traversing(n) {
		// A path back to a node still on the current recursion stack is a
		// cycle through the IR (spec.md §5); stop descending rather than
		// looping forever, regardless of Options.OnceEach.
		return true
	}
	if opts.OnceEach && ctx.Visited(n) {
		return true
	}
	if opts.OnceEach {
		ctx.SetVisited(n, true)
	}

	if !v.PreVisit(n) {
		return false
	}

	ctx.SetTraversing(n, true)
	for _, child := range n.Children() {
		if !Traverse(ctx, v, child, opts) {
			ctx.SetTraversing(n, false)
			return false
		}
	}
	ctx.SetTraversing(n, false)

	v.PostVisit(n)
	return true
}

// TraverseCorpus is Traverse's entry point for a root corpus diff, wrapping
// the walk in BeginCorpus/EndCorpus.
func TraverseCorpus(ctx *core.Context, v Visitor, root *diff.CorpusDiff, opts Options) {
	v.BeginCorpus(root)
	defer v.EndCorpus(root)
	Traverse(ctx, v, root, opts)
}

// DebugDumper is the print-diff-tree-style visitor of spec.md §9 /
// SPEC_FULL.md §3: it walks with Options.OnceEach == false so every
// occurrence of a repeated subtree is visited, independent of the
// normal reporter's filtering and redundancy marking.
type DebugDumper struct {
	Base
	Emit func(n diff.Node, depth int)
	depth int
}

func (d *DebugDumper) PreVisit(n diff.Node) bool {
	if d.Emit != nil {
		d.Emit(n, d.depth)
	}
	d.depth++
	return true
}

func (d *DebugDumper) PostVisit(diff.Node) {
	d.depth--
}

// Dump runs a DebugDumper over root, calling emit for every node occurrence
// (including repeats), unbounded by the visited-set.
func Dump(ctx *core.Context, root *diff.CorpusDiff, emit func(n diff.Node, depth int)) {
	d := &DebugDumper{Emit: emit}
	TraverseCorpus(ctx, d, root, Options{OnceEach: false})
}
