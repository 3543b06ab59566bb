package architecture

import (
	"encoding/json"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{name: "empty and empty", a: Empty(), b: Empty(), want: true},
		{name: "empty and blank text", a: Empty(), b: Text(""), want: true},
		{name: "empty and text", a: Empty(), b: Text("uint8"), want: false},
		{name: "empty and zero", a: Empty(), b: Int(0), want: false},
		{name: "same text", a: Text("uint8"), b: Text("uint8"), want: true},
		{name: "different text", a: Text("uint8"), b: Text("uint16"), want: false},
		{name: "text is case sensitive", a: Text("UART"), b: Text("uart"), want: false},
		{name: "numbers", a: Int(8), b: Number(8.0), want: true},
		{name: "number and numeric text", a: Int(8), b: Text("8.0"), want: true},
		{name: "numeric texts", a: Text("010"), b: Text("10"), want: true},
		{name: "different numbers", a: Int(8), b: Int(16), want: false},
		{name: "number and text", a: Int(8), b: Text("eight"), want: false},
		{name: "integers past 2^53", a: Text("9007199254740993"), b: Text("9007199254740992"), want: false},
		{name: "integer past 2^53 and number", a: Text("9007199254740993"), b: Number(9007199254740992), want: false},
		{name: "same integer past 2^53", a: Text("9007199254740993"), b: Text("9007199254740993.0"), want: true},
		{name: "decimal text and number", a: Number(0.1), b: Text("0.10"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, KindEmpty, ParseValue("  ").Kind())
	assert.Equal(t, KindNumber, ParseValue("42").Kind())
	assert.Equal(t, KindNumber, ParseValue("-1.5").Kind())
	assert.Equal(t, KindString, ParseValue("uint8_t").Kind())
	assert.Equal(t, KindString, ParseValue("NaN").Kind())
	assert.Equal(t, "42", ParseValue("42").String())
	assert.Equal(t, "1.5", Number(1.5).String())

	large := ParseValue("9007199254740993")
	assert.Equal(t, KindString, large.Kind(), "integers a float64 cannot hold stay text")
	assert.Equal(t, "9007199254740993", large.String())
	assert.Equal(t, KindNumber, ParseValue("9007199254740992").Kind())
	assert.Equal(t, KindNumber, ParseValue("0.1").Kind())
}

func TestValueYAML(t *testing.T) {
	cells := map[string]Value{
		"Type":       Text("uint16"),
		"Confidence": Int(87),
		"Ratio":      Number(0.25),
		"Pin":        Text("42"),
	}

	data, err := yaml.Marshal(cells)
	require.NoError(t, err)

	var decoded map[string]Value
	require.NoError(t, yaml.Unmarshal(data, &decoded))

	assert.Equal(t, KindString, decoded["Type"].Kind())
	assert.Equal(t, "uint16", decoded["Type"].String())
	assert.Equal(t, KindNumber, decoded["Confidence"].Kind())
	assert.Equal(t, "87", decoded["Confidence"].String())
	assert.Equal(t, KindNumber, decoded["Ratio"].Kind())
	assert.True(t, decoded["Pin"].Equal(Int(42)))
}

func TestValueJSON(t *testing.T) {
	data, err := json.Marshal([]Value{Text("uint8"), Int(3), Empty()})
	require.NoError(t, err)
	assert.JSONEq(t, `["uint8", 3, null]`, string(data))

	var decoded []Value
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 3)
	assert.Equal(t, KindString, decoded[0].Kind())
	assert.Equal(t, KindNumber, decoded[1].Kind())
	assert.True(t, decoded[2].IsEmpty())

	t.Run("large integers keep their digits", func(t *testing.T) {
		var v Value
		require.NoError(t, json.Unmarshal([]byte("9007199254740993"), &v))
		assert.Equal(t, "9007199254740993", v.String())
		assert.False(t, v.Equal(Text("9007199254740992")))

		require.NoError(t, yaml.Unmarshal([]byte("18446744073709551615"), &v))
		assert.Equal(t, "18446744073709551615", v.String())
	})
}
