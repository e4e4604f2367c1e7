// Package diff implements the polymorphic diff node hierarchy of spec.md
// §3–§4: one struct variant per kind in the dispatch table (distinct,
// pointer, class-or-union, function-type, corpus, ...), each coupling a
// pair of ir.Subject values with a local and inherited category.Set and an
// ordered list of child diffs.
//
// Concrete variants are built by internal/pairing; this package only
// defines their shape and the common Node contract that
// internal/core's context, internal/visit's traversal, internal/propagate,
// internal/redundancy and internal/reporter all operate through.
package diff

import (
	"sort"

	"github.com/abigraph/abidiff/internal/category"
	"github.com/abigraph/abidiff/internal/ir"
)

// Node is the common interface every diff node variant satisfies. Parent
// and canonical links are non-owning (spec.md §5): the Context's node pool
// is the sole owner, so cycles through Parent/Canonical never leak memory.
type Node interface {
	// First and Second are the subjects being compared; per spec.md §3
	// exactly one may be nil (addition/deletion) or both present (change).
	First() ir.Subject
	Second() ir.Subject

	// DiffKind names the node variant, e.g. "pointer", "class-or-union".
	DiffKind() string

	// LocalCategory is the category carried directly on this node.
	LocalCategory() category.Set
	SetLocalCategory(category.Set)

	// InheritedCategory is LocalCategory unioned with every child's
	// category (computed by internal/propagate); it is what callers
	// should read after a full compare-then-propagate cycle.
	InheritedCategory() category.Set
	SetInheritedCategory(category.Set)

	// Children lists this node's child diffs, ordered per spec.md §3 by
	// the qualified name of the first subject, ties broken by symbol id.
	Children() []Node
	AddChild(Node)

	Parent() Node
	SetParent(Node)

	Canonical() Node
	SetCanonical(Node)
}

// Common is embedded by every concrete variant to supply Node's
// bookkeeping fields.
type Common struct {
	first, second ir.Subject
	kind          string
	local         category.Set
	inherited     category.Set
	children      []Node
	parent        Node
	canonical     Node

	// self is the concrete node Common is embedded in, so AddChild can set
	// a child's parent link without knowing its own outer type. Every
	// New*Diff constructor (kinds.go) sets it through BindSelf immediately
	// after building the literal.
	self Node
}

// NewCommon builds the embeddable bookkeeping fields for a diff node of
// the given kind over (first, second). The canonical link starts out
// unset (Canonical returns nil) until internal/core's interning sets it.
func NewCommon(kind string, first, second ir.Subject) Common {
	c := Common{first: first, second: second, kind: kind}
	return c
}

// BindSelf records n as the concrete node c is embedded in; every New*Diff
// constructor calls this on its own return value so AddChild can set
// Parent() on children (spec.md §4.5's reach_kind needs a working parent
// chain to tell a direct change from one reached through a pointer or
// reference).
func (c *Common) BindSelf(n Node) { c.self = n }

func (c *Common) First() ir.Subject  { return c.first }
func (c *Common) Second() ir.Subject { return c.second }
func (c *Common) DiffKind() string   { return c.kind }

func (c *Common) LocalCategory() category.Set          { return c.local }
func (c *Common) SetLocalCategory(s category.Set)       { c.local = s }
func (c *Common) InheritedCategory() category.Set       { return c.inherited }
func (c *Common) SetInheritedCategory(s category.Set)   { c.inherited = s }

func (c *Common) Children() []Node { return c.children }

// AddChild appends child, keeping Children ordered by the qualified name
// of the first (non-nil) subject, ties broken by symbol id (spec.md §3).
// It also sets child's parent link to c's own node, if bound.
func (c *Common) AddChild(child Node) {
	if c.self != nil {
		child.SetParent(c.self)
	}
	c.children = append(c.children, child)
	sort.SliceStable(c.children, func(i, j int) bool {
		return childSortKey(c.children[i]) < childSortKey(c.children[j])
	})
}

func childSortKey(n Node) string {
	s := n.First()
	if s == nil {
		s = n.Second()
	}
	if s == nil {
		return ""
	}
	return s.QualifiedName() + "\x00" + s.SymbolID()
}

func (c *Common) Parent() Node         { return c.parent }
func (c *Common) SetParent(p Node)     { c.parent = p }
func (c *Common) Canonical() Node {
	if c.canonical == nil {
		return nil
	}
	return c.canonical
}
func (c *Common) SetCanonical(n Node) { c.canonical = n }

// HasChanges reports whether n's inherited category (after propagation)
// carries any change bit. Before internal/propagate has run, this only
// reflects n's own local category.
func HasChanges(n Node) bool {
	return !n.InheritedCategory().IsNoChange() || !n.LocalCategory().IsNoChange()
}

// Key identifies a diff node by its subject pair — the canonicalization
// cache's lookup key (spec.md §4.2). ir.Subject values wrap pointers, so
// Key is comparable and usable directly as a map key.
type Key struct {
	First, Second ir.Subject
}

// KeyOf returns n's cache key.
func KeyOf(n Node) Key {
	return Key{First: n.First(), Second: n.Second()}
}
