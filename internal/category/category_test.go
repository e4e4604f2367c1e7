package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetAlgebra(t *testing.T) {
	a := Access | SizeOrOffset
	b := SizeOrOffset | VirtualMember

	assert.Equal(t, Access|SizeOrOffset|VirtualMember, Union(a, b))
	assert.Equal(t, SizeOrOffset, Intersect(a, b))
	assert.Equal(t, Access|VirtualMember, SymmetricDifference(a, b))
	assert.Equal(t, a, Subtract(Union(a, b), VirtualMember))
	assert.True(t, a.Has(Access))
	assert.False(t, a.Has(VirtualMember))
	assert.True(t, a.HasAny(b))
}

func TestComplement(t *testing.T) {
	c := Complement(All)
	assert.Equal(t, NoChange, c)
	assert.Equal(t, All, Complement(NoChange))
}

func TestNoChange(t *testing.T) {
	assert.True(t, NoChange.IsNoChange())
	assert.False(t, Access.IsNoChange())
	assert.Equal(t, "NO-CHANGE", NoChange.String())
}

func TestString(t *testing.T) {
	s := Access | SizeOrOffset
	assert.Equal(t, "ACCESS|SIZE-OR-OFFSET", s.String())
}

func TestMaskExcludingRedundantAndSuppressed(t *testing.T) {
	s := SizeOrOffset | Redundant | Suppressed
	masked := Subtract(s, Union(Redundant, Suppressed))
	assert.Equal(t, SizeOrOffset, masked)
}

func TestByName(t *testing.T) {
	bit, ok := ByName("HARMLESS-DECL-NAME")
	assert.True(t, ok)
	assert.Equal(t, HarmlessDeclName, bit)

	_, ok = ByName("NOT-A-CATEGORY")
	assert.False(t, ok)
}
