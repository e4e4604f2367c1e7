// Package redundancy implements spec.md §4.6: the second traversal that
// flags a diff node REDUNDANT when it has already been visited through a
// sibling path, plus the post-order upward-propagation sweep and the
// complementary "clear" visitor.
//
// This runs its own recursion rather than internal/visit's generic
// Traverse: spec.md §4.3's generic already-visited shortcut
// (Options.OnceEach) skips the visitor entirely on a repeat
// encounter, but redundancy marking needs to inspect — and sometimes
// still descend past — a repeat encounter, so it manages the visited-set
// and the traversing-guard itself.
package redundancy

import (
	"github.com/abigraph/abidiff/internal/category"
	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/diff"
	"github.com/abigraph/abidiff/internal/visit"
)

// Mark runs the redundancy-detection traversal over root, then the
// upward-propagation sweep. Must run after category propagation
// (internal/propagate) and before the reporter.
func Mark(ctx *core.Context, root *diff.CorpusDiff) {
	markNode(ctx, root, false)
	sweepUpward(ctx, root)
}

func markNode(ctx *core.Context, n diff.Node, ancestorFiltered bool) {
	if n == nil {
		return
	}
	if ctx.Traversing(n) {
		return // cycle through the IR: stop descending (spec.md §5)
	}

	can := n.Canonical()
	if can == nil {
		can = n
	}
	filtered := isFilteredOut(ctx, can)

	if ctx.Visited(can) {
		if !ancestorFiltered && !filtered && eligibleForRedundancy(n) {
			n.SetLocalCategory(category.Union(n.LocalCategory(), category.Redundant))
			return // spec.md §4.6: "after marking, children are skipped"
		}
		// Not eligible (variadic parameter, sibling parameter/base-class
		// context) or filtered along the path: spec.md §4.6 says these
		// contexts "must show all occurrences", so fall through and
		// descend again rather than marking.
	} else {
		ctx.SetVisited(can, true)
	}

	ctx.SetTraversing(n, true)
	for _, child := range n.Children() {
		markNode(ctx, child, ancestorFiltered || filtered)
	}
	ctx.SetTraversing(n, false)
}

// isFilteredOut mirrors the reporter's to-be-reported predicate (spec.md
// §4.7) for the narrower purpose of spec.md §4.6's "canonical
// representative is not itself filtered out" / "no ancestor... is
// filtered out" conditions.
func isFilteredOut(ctx *core.Context, n diff.Node) bool {
	// Union with LocalCategory: SUPPRESSED is set directly on a node by
	// internal/suppress, which runs after internal/propagate computed
	// InheritedCategory (spec.md §3's stated pass order), so a just-applied
	// suppression would otherwise be invisible here.
	cat := category.Union(n.InheritedCategory(), n.LocalCategory())
	if cat.IsNoChange() {
		return false
	}
	if cat.Has(category.Suppressed) {
		return true
	}
	nonRedundant := category.Subtract(cat, category.Redundant)
	return !nonRedundant.HasAny(ctx.AllowedCategories)
}

// eligibleForRedundancy implements spec.md §4.6's exclusion list: variadic
// function parameters and sibling parameters/base classes that must show
// all occurrences are never eligible to be marked redundant.
func eligibleForRedundancy(n diff.Node) bool {
	switch n.DiffKind() {
	case "function-parameter":
		return false
	case "base-specifier":
		return false
	default:
		return true
	}
}

// sweepUpward implements spec.md §4.6's second paragraph: "a post-order
// sweep propagates REDUNDANT upward: a node with at least one changed
// child, no non-redundant changed child, and no locally reportable change
// inherits REDUNDANT."
func sweepUpward(ctx *core.Context, root *diff.CorpusDiff) {
	visit.TraverseCorpus(ctx, &upwardSweep{}, root, visit.Options{OnceEach: false})
}

type upwardSweep struct{ visit.Base }

func (upwardSweep) PostVisit(n diff.Node) {
	if !n.LocalCategory().IsNoChange() {
		return
	}
	var changedChildren, nonRedundantChanged int
	for _, child := range n.Children() {
		if diff.HasChanges(child) {
			changedChildren++
			if !child.LocalCategory().Has(category.Redundant) {
				nonRedundantChanged++
			}
		}
	}
	if changedChildren > 0 && nonRedundantChanged == 0 {
		n.SetLocalCategory(category.Union(n.LocalCategory(), category.Redundant))
	}
}

// Clear removes the REDUNDANT bit from every node reachable from root
// (spec.md §4.6, "a complementary clear visitor... when the user requests
// redundancy be shown").
func Clear(ctx *core.Context, root *diff.CorpusDiff) {
	visit.TraverseCorpus(ctx, &clearer{}, root, visit.Options{OnceEach: false})
}

type clearer struct{ visit.Base }

func (clearer) PostVisit(n diff.Node) {
	n.SetLocalCategory(category.Subtract(n.LocalCategory(), category.Redundant))
}
