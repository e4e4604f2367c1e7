package visit

import (
	"testing"

	"github.com/abigraph/abidiff/internal/core"
	"github.com/abigraph/abidiff/internal/diff"
	"github.com/abigraph/abidiff/internal/ir/irtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	Base
	pre  []string
	post []string
}

func (r *recorder) PreVisit(n diff.Node) bool {
	r.pre = append(r.pre, label(n))
	return true
}

func (r *recorder) PostVisit(n diff.Node) {
	r.post = append(r.post, label(n))
}

func label(n diff.Node) string {
	s := n.First()
	if s == nil {
		s = n.Second()
	}
	if s == nil {
		return ""
	}
	return s.QualifiedName()
}

func TestTraverseVisitsChildrenBetweenPreAndPost(t *testing.T) {
	env := irtest.Env("t")
	root := diff.NewClassDiff(irtest.Int32(env), irtest.Int32(env), false)
	child := diff.NewDistinctDiff(irtest.Int32(env), irtest.Int32(env))
	root.AddChild(child)

	ctx := core.NewContext(nil, nil)
	r := &recorder{}
	assert.True(t, Traverse(ctx, r, root, Options{OnceEach: true}))

	require.Len(t, r.pre, 2)
	require.Len(t, r.post, 2)
	// Post-order: the child finishes before its parent.
	assert.Equal(t, label(root), r.post[len(r.post)-1])
}

type stopAtRoot struct {
	Base
	visited []string
}

func (v *stopAtRoot) PreVisit(n diff.Node) bool {
	if n.DiffKind() == "class-or-union" {
		return false
	}
	v.visited = append(v.visited, label(n))
	return true
}

func TestTraverseAbortsSubtreeOnFalsePreVisit(t *testing.T) {
	env := irtest.Env("t")
	root := diff.NewClassDiff(irtest.Int32(env), irtest.Int32(env), false)
	child := diff.NewDistinctDiff(irtest.Int32(env), irtest.Int32(env))
	root.AddChild(child)

	ctx := core.NewContext(nil, nil)
	v := &stopAtRoot{}
	assert.False(t, Traverse(ctx, v, root, Options{OnceEach: true}))
	assert.Empty(t, v.visited)
}

func TestTraverseOnceEachSkipsRevisitedNode(t *testing.T) {
	env := irtest.Env("t")
	shared := diff.NewDistinctDiff(irtest.Int32(env), irtest.Int32(env))
	root := diff.NewClassDiff(irtest.Int32(env), irtest.Int32(env), false)
	root.AddChild(shared)

	ctx := core.NewContext(nil, nil)
	ctx.SetVisited(shared, true)

	r := &recorder{}
	Traverse(ctx, r, root, Options{OnceEach: true})
	// root and shared carry the same label, so only root may appear.
	assert.Equal(t, []string{label(root)}, r.pre)
}

func TestTraverseStopsOnCycleWithoutInfiniteRecursion(t *testing.T) {
	env := irtest.Env("t")
	root := diff.NewClassDiff(irtest.Int32(env), irtest.Int32(env), false)
	root.AddChild(root) // a direct cycle back to itself

	ctx := core.NewContext(nil, nil)
	r := &recorder{}

	// A cycle-safety regression here would recurse forever; the test
	// suite's own timeout is the backstop.
	assert.True(t, Traverse(ctx, r, root, Options{OnceEach: false}))
}

func TestDumpVisitsRepeatedSubtreesEveryTime(t *testing.T) {
	env := irtest.Env("t")
	shared := diff.NewDistinctDiff(irtest.Int32(env), irtest.Int32(env))
	root := diff.NewClassDiff(irtest.Int32(env), irtest.Int32(env), false)
	root.AddChild(shared)
	root.AddChild(shared) // appears twice: Dump must emit it both times

	ctx := core.NewContext(nil, nil)
	ctx.SetVisited(shared, true) // would hide a second occurrence from a OnceEach walk

	var emitted []diff.Node
	corpusRoot := diff.NewCorpusDiff(nil, nil)
	corpusRoot.AddChild(root)
	Dump(ctx, corpusRoot, func(n diff.Node, depth int) {
		emitted = append(emitted, n)
	})

	// Count by identity: root has the same label as shared.
	count := 0
	for _, e := range emitted {
		if e == diff.Node(shared) {
			count++
		}
	}
	assert.Equal(t, 2, count)
}
