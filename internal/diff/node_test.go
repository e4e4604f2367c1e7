package diff

import (
	"testing"

	"github.com/abigraph/abidiff/internal/category"
	"github.com/abigraph/abidiff/internal/ir"
	"github.com/abigraph/abidiff/internal/ir/irtest"
	"github.com/stretchr/testify/assert"
)

func TestHasChangesReflectsLocalCategory(t *testing.T) {
	env := irtest.Env("t")
	a := irtest.Int32(env)
	b := irtest.Int32(env)
	n := NewDistinctDiff(a, b)
	assert.False(t, HasChanges(n))
	n.SetLocalCategory(category.HarmlessDeclName)
	assert.True(t, HasChanges(n))
}

func TestChildrenOrderedByQualifiedName(t *testing.T) {
	env := irtest.Env("t")
	parent := NewClassDiff(irtest.Int32(env), irtest.Int32(env), false)
	zNode := NewVariableDiff(ir.NewVariable(env, "z", nil, nil), ir.NewVariable(env, "z", nil, nil))
	aNode := NewVariableDiff(ir.NewVariable(env, "a", nil, nil), ir.NewVariable(env, "a", nil, nil))
	mNode := NewVariableDiff(ir.NewVariable(env, "m", nil, nil), ir.NewVariable(env, "m", nil, nil))
	parent.AddChild(zNode)
	parent.AddChild(aNode)
	parent.AddChild(mNode)
	kids := parent.Children()
	assert.Equal(t, "a", kids[0].First().QualifiedName())
	assert.Equal(t, "m", kids[1].First().QualifiedName())
	assert.Equal(t, "z", kids[2].First().QualifiedName())
}

func TestKeyOfUsesSubjectIdentity(t *testing.T) {
	env := irtest.Env("t")
	a := irtest.Int32(env)
	b := irtest.Int32(env)
	n1 := NewDistinctDiff(a, b)
	n2 := NewDistinctDiff(a, b)
	assert.Equal(t, KeyOf(n1), KeyOf(n2))
}
