package core

import (
	"encoding/binary"

	"github.com/minio/highwayhash"

	"github.com/abigraph/abidiff/internal/diff"
)

// Intern is the canonicalization step of spec.md §4.2: for each diff node
// built, the context either registers it as the canonical representative
// of its subject pair, or replaces its canonical pointer with the
// previously registered representative. It also keeps the node alive in
// the pool (spec.md §5: the context exclusively owns the diff-node pool).
//
// Callers (internal/pairing) must call Intern immediately after
// constructing a node and before recursing into its children, so that a
// cycle through the IR sees the registered (possibly still being filled
// in) node on its second encounter instead of recursing forever (spec.md
// §4.1, "Cycles in the IR... handled by returning the cached node").
func (c *Context) Intern(n diff.Node) diff.Node {
	key := diff.KeyOf(n)
	if existing, ok := c.cache[key]; ok {
		n.SetCanonical(existing)
		return existing
	}
	c.cache[key] = n
	c.pool = append(c.pool, n)
	n.SetCanonical(n)
	c.states[n] = &canonState{}
	return n
}

// LookupKey returns the cached node for key, if any (spec.md §4.1: "it
// first consults the context cache; if a diff for (x, y) already exists,
// that instance is returned").
func (c *Context) LookupKey(key diff.Key) (diff.Node, bool) {
	n, ok := c.cache[key]
	return n, ok
}

// CanonicalOf returns n's canonical representative, registering n if it is
// not yet known to the context (defensive: every node reaching here should
// already have been Intern'd by the pairing engine).
func (c *Context) CanonicalOf(n diff.Node) diff.Node {
	if can := n.Canonical(); can != nil {
		return can
	}
	return c.Intern(n)
}

func (c *Context) state(n diff.Node) *canonState {
	can := c.CanonicalOf(n)
	st, ok := c.states[can]
	if !ok {
		st = &canonState{}
		c.states[can] = st
	}
	return st
}

// Visited, SetVisited, Traversing, SetTraversing, CurrentlyReporting,
// SetCurrentlyReporting, ReportedOnce and SetReportedOnce all read/write
// through n's canonical representative, per spec.md §4.2's "non-canonical
// nodes forward reads and writes to the canonical one".
func (c *Context) Visited(n diff.Node) bool      { return c.state(n).visited }
func (c *Context) SetVisited(n diff.Node, v bool) { c.state(n).visited = v }

func (c *Context) Traversing(n diff.Node) bool       { return c.state(n).traversing }
func (c *Context) SetTraversing(n diff.Node, v bool) { c.state(n).traversing = v }

func (c *Context) CurrentlyReporting(n diff.Node) bool { return c.state(n).currentlyReporting }
func (c *Context) SetCurrentlyReporting(n diff.Node, v bool) {
	c.state(n).currentlyReporting = v
}

func (c *Context) ReportedOnce(n diff.Node) bool       { return c.state(n).reportedOnce }
func (c *Context) SetReportedOnce(n diff.Node, v bool) { c.state(n).reportedOnce = v }

// ResetTraversalState clears the visited/traversing/currently-reporting
// bits on every interned node, without touching reportedOnce — the
// "transient state that must be cleared between successive walks of the
// same graph" of spec.md §5, as opposed to reported-once which the
// reporter's "idempotence of reporting" property expects the caller to
// clear explicitly (see ClearReportedOnce).
func (c *Context) ResetTraversalState() {
	for _, st := range c.states {
		st.visited = false
		st.traversing = false
		st.currentlyReporting = false
	}
}

// ClearReportedOnce clears the reported-once bit on every interned node,
// so a second call to the reporter reproduces byte-identical output
// (spec.md §8, "Idempotence of reporting").
func (c *Context) ClearReportedOnce() {
	for _, st := range c.states {
		st.reportedOnce = false
	}
}

// fingerprintKey is a fixed highwayhash key for Fingerprint. It plays no
// part in correctness: the canonicalization cache above keys on exact
// subject pointer identity, not a hash.
var fingerprintKey = make([]byte, 32)

// Fingerprint returns a short, stable identifier hashed from a diff node's
// subject pair's qualified names. No code path in this module calls it
// outside its own test; the dump-diff-tree output labels nodes by kind and
// qualified name instead.
func Fingerprint(key diff.Key) uint64 {
	h, err := highwayhash.New64(fingerprintKey)
	if err != nil {
		panic(err)
	}
	var buf [8]byte
	if key.First != nil {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(key.First.QualifiedName())))
		h.Write(buf[:])
		h.Write([]byte(key.First.QualifiedName()))
	}
	if key.Second != nil {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(key.Second.QualifiedName())))
		h.Write(buf[:])
		h.Write([]byte(key.Second.QualifiedName()))
	}
	return binary.LittleEndian.Uint64(h.Sum(nil))
}
