package suppress

import (
	"github.com/abigraph/abidiff/internal/category"
	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/diff"
	"github.com/abigraph/abidiff/internal/ir"
	"github.com/abigraph/abidiff/internal/visit"
)

// applicator is the pre-order pass of spec.md §4.5: "in pre-order, tests
// every rule against each diff node; any match sets SUPPRESSED on the node
// and on its canonical representative."
type applicator struct {
	visit.Base
	ctx *core.Context
}

func (a *applicator) PreVisit(n diff.Node) bool {
	for _, rule := range a.ctx.Suppressions {
		if rule.Matches(a.ctx, n) {
			n.SetLocalCategory(category.Union(n.LocalCategory(), category.Suppressed))
			break
		}
	}
	return true
}

// cascader is the post-order pass of spec.md §4.5: "a node is additionally
// marked SUPPRESSED if it has no local changes and every non-empty child
// is SUPPRESSED (cascading suppression)."
type cascader struct{ visit.Base }

func (cascader) PostVisit(n diff.Node) {
	children := n.Children()
	if len(children) == 0 {
		return
	}
	if n.LocalCategory().HasAny(category.Complement(category.Suppressed | category.Redundant)) {
		return // has a local change of its own: not eligible for cascading suppression
	}
	for _, child := range children {
		if !diff.HasChanges(child) {
			continue // empty child: does not block cascading
		}
		if !child.LocalCategory().Has(category.Suppressed) {
			return
		}
	}
	n.SetLocalCategory(category.Union(n.LocalCategory(), category.Suppressed))
}

// Apply runs the suppression pre-order match pass followed by the
// cascading post-order pass over root, using ctx.Suppressions. It also
// applies rules directly to the corpus-diff's bucket of added/removed
// functions, variables, and unreferenced symbols (spec.md §4.5:
// "Suppressions are also applied to the corpus-diff's bucket of
// added/removed functions, variables, and unreferenced symbols"):
// matched entries are dropped from the bucket and counted against the
// corresponding FilteredOut stat, the same bookkeeping spec.md §6 uses
// for category-based filtering.
func Apply(ctx *core.Context, root *diff.CorpusDiff) {
	v := &applicator{ctx: ctx}
	visit.TraverseCorpus(ctx, v, root, visit.Options{OnceEach: false})
	visit.TraverseCorpus(ctx, &cascader{}, root, visit.Options{OnceEach: false})
	applyToBuckets(ctx, root)
}

// applyToBuckets runs ctx.Suppressions against the plain-slice buckets of
// root that never become part of the Children() tree: pure
// additions/removals of functions and variables, and the
// unreferenced-symbol lists. These have no diff node of their own, so a
// suppression rule is tested against a synthetic one-sided
// FunctionDeclDiff/VariableDiff built just for the match, or, for bare
// symbols with no declaration at all, against the rule's symbol_name /
// symbol_version directly.
func applyToBuckets(ctx *core.Context, root *diff.CorpusDiff) {
	root.RemovedFunctions, root.Stats.NumRemovedFuncFilteredOut = filterFunctions(ctx, root.RemovedFunctions, false)
	root.AddedFunctions, root.Stats.NumAddedFuncFilteredOut = filterFunctions(ctx, root.AddedFunctions, true)
	root.RemovedVariables, root.Stats.NumRemovedVarFilteredOut = filterVariables(ctx, root.RemovedVariables, false)
	root.AddedVariables, root.Stats.NumAddedVarFilteredOut = filterVariables(ctx, root.AddedVariables, true)

	root.UnreferencedFunctionSymbolsRemoved = filterFunctionSymbols(ctx, root.UnreferencedFunctionSymbolsRemoved)
	root.UnreferencedFunctionSymbolsAdded = filterFunctionSymbols(ctx, root.UnreferencedFunctionSymbolsAdded)
	root.UnreferencedVariableSymbolsRemoved = filterVariableSymbols(ctx, root.UnreferencedVariableSymbolsRemoved)
	root.UnreferencedVariableSymbolsAdded = filterVariableSymbols(ctx, root.UnreferencedVariableSymbolsAdded)
}

func matchedBySuppressions(ctx *core.Context, n diff.Node) bool {
	for _, rule := range ctx.Suppressions {
		if rule.Matches(ctx, n) {
			return true
		}
	}
	return false
}

func filterFunctions(ctx *core.Context, fns []*ir.FunctionDecl, added bool) ([]*ir.FunctionDecl, int) {
	kept := make([]*ir.FunctionDecl, 0, len(fns))
	filtered := 0
	for _, fn := range fns {
		var n diff.Node
		if added {
			n = diff.NewFunctionDeclDiff(nil, fn)
		} else {
			n = diff.NewFunctionDeclDiff(fn, nil)
		}
		if matchedBySuppressions(ctx, n) {
			filtered++
			continue
		}
		kept = append(kept, fn)
	}
	return kept, filtered
}

func filterVariables(ctx *core.Context, vars []*ir.Variable, added bool) ([]*ir.Variable, int) {
	kept := make([]*ir.Variable, 0, len(vars))
	filtered := 0
	for _, v := range vars {
		var n diff.Node
		if added {
			n = diff.NewVariableDiff(nil, v)
		} else {
			n = diff.NewVariableDiff(v, nil)
		}
		if matchedBySuppressions(ctx, n) {
			filtered++
			continue
		}
		kept = append(kept, v)
	}
	return kept, filtered
}

func filterFunctionSymbols(ctx *core.Context, syms []*ir.Symbol) []*ir.Symbol {
	kept := make([]*ir.Symbol, 0, len(syms))
	for _, s := range syms {
		if symbolSuppressed(ctx, s, symbolKindFunction) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

func filterVariableSymbols(ctx *core.Context, syms []*ir.Symbol) []*ir.Symbol {
	kept := make([]*ir.Symbol, 0, len(syms))
	for _, s := range syms {
		if symbolSuppressed(ctx, s, symbolKindVariable) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

type symbolKind int

const (
	symbolKindFunction symbolKind = iota
	symbolKindVariable
)

func symbolSuppressed(ctx *core.Context, sym *ir.Symbol, kind symbolKind) bool {
	for _, rule := range ctx.Suppressions {
		switch r := rule.(type) {
		case *FunctionRule:
			if kind == symbolKindFunction && r.MatchesSymbol(sym) {
				return true
			}
		case *VariableRule:
			if kind == symbolKindVariable && r.MatchesSymbol(sym) {
				return true
			}
		}
	}
	return false
}
