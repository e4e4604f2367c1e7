// Package core implements the Context (spec.md §3, "Context"): the
// process-wide session state shared by every other component — the two
// corpora under comparison, the canonicalization cache, the node pool, the
// visited-set used during traversal, category filtering configuration, the
// suppression list, and display flags. The context outlives every diff
// node it registers (spec.md §3, "Lifecycle").
package core

import (
	"github.com/abigraph/abidiff/internal/category"
	"github.com/abigraph/abidiff/internal/diff"
	"github.com/abigraph/abidiff/internal/ir"
)

// SuppressionRule is the contract internal/suppress's concrete rule types
// satisfy; Context only needs to ask each rule whether it matches a node,
// never how the rule itself parses or stores its conditions. ctx is
// passed through so a rule can compare against corpus-level state (e.g.
// soname) that isn't reachable from the node itself.
type SuppressionRule interface {
	Matches(ctx *Context, n diff.Node) bool
}

// DisplayOptions mirrors spec.md §6's display flags.
type DisplayOptions struct {
	ShowStatsOnly                         bool
	ShowSONameChange                      bool
	ShowArchitectureChange                bool
	ShowDeletedFunctions                  bool
	ShowAddedFunctions                    bool
	ShowChangedFunctions                  bool
	ShowDeletedVariables                  bool
	ShowAddedVariables                    bool
	ShowChangedVariables                  bool
	ShowLinkageNames                      bool
	ShowLocations                         bool
	ShowRedundantChanges                  bool
	ShowSymbolsUnreferencedByDebugInfo    bool
	ShowAddedSymbolsUnreferencedByDebugInfo bool
	DumpDiffTree                          bool
}

// DefaultDisplayOptions matches spec.md §6's stated defaults (everything
// true except ShowStatsOnly, ShowLinkageNames and DumpDiffTree).
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{
		ShowSONameChange:                       true,
		ShowArchitectureChange:                 true,
		ShowDeletedFunctions:                    true,
		ShowAddedFunctions:                      true,
		ShowChangedFunctions:                    true,
		ShowDeletedVariables:                    true,
		ShowAddedVariables:                      true,
		ShowChangedVariables:                    true,
		ShowLocations:                           true,
		ShowRedundantChanges:                    true,
		ShowSymbolsUnreferencedByDebugInfo:      true,
		ShowAddedSymbolsUnreferencedByDebugInfo: true,
	}
}

// canonState is the mutable, per-equivalence-class state spec.md §4.2 says
// must live exclusively on the canonical representative: "visited",
// "currently being reported", "reported at least once" and "currently
// being traversed". Categories are not kept here; they live on the nodes
// themselves. Context keys this by canonical node identity;
// non-canonical nodes never get an entry and must look theirs up through
// Context.CanonicalOf first.
type canonState struct {
	visited            bool
	traversing         bool
	currentlyReporting bool
	reportedOnce       bool
}

// Context bundles the shared session state of spec.md §3(f).
type Context struct {
	First, Second *ir.Corpus

	cache  map[diff.Key]diff.Node
	pool   []diff.Node
	states map[diff.Node]*canonState

	AllowedCategories category.Set
	Filters           []func(diff.Node) bool
	Suppressions      []SuppressionRule
	Display           DisplayOptions

	l Logger
}

// NewContext builds a Context over the two corpora to be compared, with
// the allowed-category mask defaulted to category.All (spec.md §6).
func NewContext(first, second *ir.Corpus) *Context {
	return &Context{
		First:             first,
		Second:            second,
		cache:             map[diff.Key]diff.Node{},
		states:            map[diff.Node]*canonState{},
		AllowedCategories: category.All,
		Display:           DefaultDisplayOptions(),
		l:                 NewLogger(),
	}
}

// SetLogger replaces the context's logger.
func (c *Context) SetLogger(l Logger) { c.l = l }

// Logger returns the context's logger.
func (c *Context) Logger() Logger { return c.l }

// AllowCategory unions bit into the allowed-category mask.
func (c *Context) AllowCategory(bit category.Set) {
	c.AllowedCategories = category.Union(c.AllowedCategories, bit)
}

// DisallowCategory subtracts bit from the allowed-category mask.
func (c *Context) DisallowCategory(bit category.Set) {
	c.AllowedCategories = category.Subtract(c.AllowedCategories, bit)
}
