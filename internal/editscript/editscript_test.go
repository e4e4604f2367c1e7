package editscript

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func identity(s string) string { return s }

func TestDiffPureInsertion(t *testing.T) {
	a := []string{"f"}
	b := []string{"f", "g"}
	script := Diff(a, b, identity)
	assert.Empty(t, script.Deletions)
	if assert.Len(t, script.Insertions, 1) {
		assert.Equal(t, []string{"g"}, script.Insertions[0].Elements)
		assert.Equal(t, 0, script.Insertions[0].At)
	}
}

func TestDiffPureDeletion(t *testing.T) {
	a := []string{"f", "g"}
	b := []string{"f"}
	script := Diff(a, b, identity)
	assert.Empty(t, script.Insertions)
	if assert.Len(t, script.Deletions, 1) {
		assert.Equal(t, "g", script.Deletions[0].Element)
		assert.Equal(t, 1, script.Deletions[0].Index)
	}
}

func TestDiffNoChange(t *testing.T) {
	a := []string{"x", "y", "z"}
	b := []string{"x", "y", "z"}
	script := Diff(a, b, identity)
	assert.Empty(t, script.Deletions)
	assert.Empty(t, script.Insertions)
}

func TestDiffReplace(t *testing.T) {
	a := []string{"x:int"}
	b := []string{"x:float"}
	script := Diff(a, b, identity)
	assert.Len(t, script.Deletions, 1)
	assert.Len(t, script.Insertions, 1)
	assert.Equal(t, []string{"x:float"}, script.Flatten())
}

func TestDiffTypedElements(t *testing.T) {
	type member struct {
		name string
		kind string
	}
	a := []member{{"x", "int"}, {"y", "int"}}
	b := []member{{"x", "int"}, {"z", "int"}, {"y", "int"}}
	script := Diff(a, b, func(m member) string { return m.name + ":" + m.kind })
	assert.Empty(t, script.Deletions)
	if assert.Len(t, script.Insertions, 1) {
		assert.Equal(t, []member{{"z", "int"}}, script.Insertions[0].Elements)
	}
}
