// Package propagate implements spec.md §4.4, category propagation: the
// post-order pass that ORs each child's category (masked to exclude
// REDUNDANT and SUPPRESSED) into its parent, stabilizing regardless of
// visit order by writing through to each node's canonical representative.
package propagate

import (
	"github.com/abigraph/abidiff/internal/category"
	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/diff"
	"github.com/abigraph/abidiff/internal/visit"
)

// excludedFromPropagation is REDUNDANT|SUPPRESSED: advisory bookkeeping
// bits that must not leak into a parent's inherited category (spec.md
// §4.4).
const excludedFromPropagation = category.Redundant | category.Suppressed

type propagator struct {
	visit.Base
	ctx *core.Context
}

func (p *propagator) PostVisit(n diff.Node) {
	inherited := n.LocalCategory()
	for _, child := range n.Children() {
		inherited = category.Union(inherited, category.Subtract(child.InheritedCategory(), excludedFromPropagation))
	}
	n.SetInheritedCategory(inherited)
	if can := n.Canonical(); can != nil && can != n {
		can.SetInheritedCategory(category.Union(can.InheritedCategory(), inherited))
	}
}

// Run propagates categories bottom-up over root. Node repetition is
// allowed (Options.OnceEach is false) so equivalence-class categories
// stabilize regardless of which occurrence of a shared subtree is visited
// first (spec.md §4.4, "runs with node-repetition allowed").
func Run(ctx *core.Context, root *diff.CorpusDiff) {
	visit.TraverseCorpus(ctx, &propagator{ctx: ctx}, root, visit.Options{OnceEach: false})
}
