package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := IRObject{
		"a":  IRInt(1),
		"A":  IRInt(2),
		"aa": IRInt(3),
		"aA": IRInt(4),
		"Aa": IRInt(5),
		"AA": IRInt(6),
	}

	// 'A' = 65, 'a' = 97
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestIRObjectSortedKeys_SurrogatePairs(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort BEFORE U+FF61
	// in UTF-16 even though UTF-8 bytes order them the other way.
	obj := IRObject{"\U0001F600": IRInt(1), "｡": IRInt(2)}
	assert.Equal(t, []string{"\U0001F600", "｡"}, obj.SortedKeys())
}

func TestIRObjectUnmarshal_FlatFields(t *testing.T) {
	var obj IRObject
	err := json.Unmarshal([]byte(`{"category_id": 7, "title": "Go", "draft": false, "note": null}`), &obj)
	require.NoError(t, err)

	assert.Equal(t, IRInt(7), obj["category_id"])
	assert.Equal(t, IRString("Go"), obj["title"])
	assert.Equal(t, IRBool(false), obj["draft"])
	assert.Equal(t, IRNull{}, obj["note"])
}

func TestIRObjectUnmarshal_RejectsFloats(t *testing.T) {
	var obj IRObject
	err := json.Unmarshal([]byte(`{"weight": 1.5}`), &obj)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")
}

func TestIRObjectUnmarshal_RejectsNested(t *testing.T) {
	var obj IRObject
	err := json.Unmarshal([]byte(`{"tags": ["a"]}`), &obj)
	require.Error(t, err)
}

func TestIRObjectMarshal_SortedKeys(t *testing.T) {
	data, err := json.Marshal(IRObject{"b": IRInt(2), "a": IRString("x"), "c": IRNull{}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":"x","b":2,"c":null}`, string(data))
}

func TestParseObject(t *testing.T) {
	obj, err := ParseObject(`{"category_id": 1}`)
	require.NoError(t, err)
	assert.Equal(t, IRObject{"category_id": IRInt(1)}, obj)

	empty, err := ParseObject("  ")
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = ParseObject(`{not json`)
	assert.Error(t, err)
}

func TestFromGo(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    IRValue
		wantErr bool
	}{
		{"nil", nil, IRNull{}, false},
		{"string", "x", IRString("x"), false},
		{"int", 3, IRInt(3), false},
		{"whole float from yaml", float64(4), IRInt(4), false},
		{"fractional float", 4.5, nil, true},
		{"bool", true, IRBool(true), false},
		{"nested map", map[string]any{}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromGo(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_NFC(t *testing.T) {
	decomposed := IRString("Cafe\u0301")
	composed := IRString("Caf\u00e9")

	assert.Equal(t, composed, Normalize(decomposed))
	assert.True(t, EqualValues(decomposed, composed))
	assert.Equal(t, IRInt(1), Normalize(IRInt(1)))
}

func TestEqualValues(t *testing.T) {
	assert.True(t, EqualValues(IRNull{}, IRNull{}))
	assert.True(t, EqualValues(IRInt(2), IRInt(2)))
	assert.False(t, EqualValues(IRInt(2), IRString("2")))
	assert.False(t, EqualValues(IRBool(true), IRNull{}))
}
