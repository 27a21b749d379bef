package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScriptedRand_ReplaysAndWraps(t *testing.T) {
	src := NewScriptedRand(0, 3, 7)

	assert.Equal(t, uint64(0), src.Below(10))
	assert.Equal(t, uint64(3), src.Below(10))
	assert.Equal(t, uint64(7), src.Below(10))
	assert.Equal(t, uint64(0), src.Below(10), "script wraps around")
	assert.Equal(t, 4, src.Drawn())
}

func TestScriptedRand_ReducesModuloBound(t *testing.T) {
	src := NewScriptedRand(12)
	assert.Equal(t, uint64(2), src.Below(5))
}

func TestScriptedRand_Reset(t *testing.T) {
	src := NewScriptedRand(1, 2)
	src.Below(10)
	src.Reset()
	assert.Equal(t, uint64(1), src.Below(10))
	assert.Equal(t, 1, src.Drawn())
}

func TestScriptedRand_EmptyScriptDefaultsToZero(t *testing.T) {
	src := NewScriptedRand()
	assert.Equal(t, uint64(0), src.Below(4))
}
