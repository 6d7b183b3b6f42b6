package msl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHelperRegistry_RequestReportsOnlyFirstInsertion(t *testing.T) {
	r := newHelperRegistry()
	assert.True(t, r.request(helperMod))
	assert.False(t, r.request(helperMod))
	assert.True(t, r.has(helperMod))
}

func TestHelperRegistry_RequestInverse3x3PullsInDet2x2(t *testing.T) {
	r := newHelperRegistry()
	assert.True(t, r.requestInverse(3))
	assert.True(t, r.has(helperDet2x2))
	assert.True(t, r.has(helperInverse3x3))
	assert.False(t, r.has(helperDet3x3))
}

func TestHelperRegistry_RequestInverse4x4PullsInDet2x2AndDet3x3(t *testing.T) {
	r := newHelperRegistry()
	r.requestInverse(4)
	assert.True(t, r.has(helperDet2x2))
	assert.True(t, r.has(helperDet3x3))
	assert.True(t, r.has(helperInverse4x4))
}

// TestEmitHelperFunctions_MatrixInverseEmitsDependencyChain exercises
// spec.md §8 scenario 4: a fragment shader calling inverse(mat3) must emit
// spvDet2x2 before spvInverse3x3, and the call site must reference
// spvInverse3x3.
func TestEmitHelperFunctions_MatrixInverseEmitsDependencyChain(t *testing.T) {
	w := newWriter(nil, DefaultOptions(), nil, nil)
	w.helpers.requestInverse(3)

	w.emitHelperFunctions()
	src := w.String()

	detIdx := indexOf(t, src, "float spvDet2x2")
	invIdx := indexOf(t, src, "float3x3 spvInverse3x3")
	assert.Less(t, detIdx, invIdx, "spvDet2x2 must be defined before spvInverse3x3 uses it")
	assert.NotContains(t, src, "spvInverse4x4")
}

func TestEmitHelperFunctions_EmitsNothingWhenNoneRequested(t *testing.T) {
	w := newWriter(nil, DefaultOptions(), nil, nil)
	w.emitHelperFunctions()
	assert.Empty(t, w.String())
}

func indexOf(t *testing.T, s, substr string) int {
	t.Helper()
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	t.Fatalf("expected %q to contain %q", s, substr)
	return -1
}
