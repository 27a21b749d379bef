package meta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"zeta":  int64(1),
		"alpha": "x",
		"mid":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":"x","mid":true,"zeta":1}`, string(out))
}

func TestMarshalCanonical_NoHTMLEscaping(t *testing.T) {
	out, err := MarshalCanonical("a<b&c>d")
	require.NoError(t, err)
	assert.Equal(t, `"a<b&c>d"`, string(out))
}

func TestMarshalCanonical_NFCNormalization(t *testing.T) {
	// "é" composed vs decomposed must marshal identically.
	composed, err := MarshalCanonical("café")
	require.NoError(t, err)
	decomposed, err := MarshalCanonical("café")
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonical_RejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"t": 1.5})
	assert.Error(t, err)
}

func TestMarshalCanonical_RejectsNull(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"t": nil})
	assert.Error(t, err)

	_, err = MarshalCanonical(nil)
	assert.Error(t, err)
}

func TestMarshalCanonical_NestedStructures(t *testing.T) {
	out, err := MarshalCanonical(map[string]any{
		"list": []any{int64(1), "two", false},
		"obj":  map[string]any{"b": int64(2), "a": int64(1)},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"list":[1,"two",false],"obj":{"a":1,"b":2}}`, string(out))
}

func TestInputHash_Deterministic(t *testing.T) {
	a := InputHash([]byte("payload"))
	b := InputHash([]byte("payload"))
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	assert.NotEqual(t, a, InputHash([]byte("other")))
}

func TestTestcaseHash_MetadataChangesIdentity(t *testing.T) {
	ih := InputHash([]byte("payload"))

	bare, err := TestcaseHash(ih, nil)
	require.NoError(t, err)

	annotated, err := TestcaseHash(ih, map[string]any{"origin": "splice"})
	require.NoError(t, err)

	assert.NotEqual(t, bare, annotated)

	again, err := TestcaseHash(ih, map[string]any{"origin": "splice"})
	require.NoError(t, err)
	assert.Equal(t, annotated, again)
}

func TestTestcaseHash_RejectsUnhashableMetadata(t *testing.T) {
	_, err := TestcaseHash(InputHash(nil), map[string]any{"bad": 0.5})
	assert.Error(t, err)
}
