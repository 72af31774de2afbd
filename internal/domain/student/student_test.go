package student

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeUniqueID(t *testing.T) {
	id := ComputeUniqueID("972 54-123-4567", "Dana Levi")

	assert.Len(t, id, 32)
	assert.Equal(t, id, ComputeUniqueID("972 54-123-4567", "Dana Levi"), "identical inputs must produce the identical id")

	assert.NotEqual(t, id, ComputeUniqueID("972 54-123-4568", "Dana Levi"), "phone change must change the id")
	assert.NotEqual(t, id, ComputeUniqueID("972 54-123-4567", "Dana Cohen"), "name change must change the id")
}

func TestComputeUniqueID_SeparatorMatters(t *testing.T) {
	// The inputs are joined with a separator so a boundary shift cannot
	// collide.
	a := ComputeUniqueID("123", "45")
	b := ComputeUniqueID("1234", "5")
	assert.NotEqual(t, a, b)
}
