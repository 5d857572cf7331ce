package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical_Object(t *testing.T) {
	data, err := MarshalCanonical(IRObject{
		"z": IRInt(1),
		"a": IRString("<&>"),
		"m": IRBool(true),
		"n": IRNull{},
	})
	require.NoError(t, err)

	// Sorted keys, no HTML escaping, null allowed.
	assert.Equal(t, `{"a":"<&>","m":true,"n":null,"z":1}`, string(data))
}

func TestMarshalCanonical_RejectsFloats(t *testing.T) {
	_, err := MarshalCanonical(map[string]any{"key": 0.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats")
}

func TestMarshalCanonical_NFC(t *testing.T) {
	a, err := MarshalCanonical("Cafe\u0301")
	require.NoError(t, err)
	b, err := MarshalCanonical("Caf\u00e9")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestMarshalCanonical_LineSeparatorsUnescaped(t *testing.T) {
	data, err := MarshalCanonical("a\u2028b\u2029c")
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(data))
}

func TestMarshalCanonical_EscapedBackslashPreserved(t *testing.T) {
	// A literal backslash followed by the text "u2028" must stay escaped.
	data, err := MarshalCanonical(`a\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028"`, string(data))
}

func TestMarshalCanonical_NestedLists(t *testing.T) {
	data, err := MarshalCanonical(map[string]any{
		"keys": []any{"0.5", "1"},
		"rows": []any{map[string]any{"id": 2, "key": "1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"keys":["0.5","1"],"rows":[{"id":2,"key":"1"}]}`, string(data))
}

func TestFormatKey(t *testing.T) {
	assert.Equal(t, "0.5", FormatKey(0.5))
	assert.Equal(t, "3", FormatKey(3))
	assert.Equal(t, "1.25e-07", FormatKey(1.25e-7))
}
