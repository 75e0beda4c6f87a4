package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldValue_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want FieldValue
	}{
		{name: "integer", in: `100000`, want: IntValue(100000)},
		{name: "negative", in: `-1500`, want: IntValue(-1500)},
		{name: "float", in: `12.5`, want: FloatValue(12.5)},
		{name: "string", in: `"N/A"`, want: StringValue("N/A")},
		{name: "comma_string", in: `"1,000,000"`, want: StringValue("1,000,000")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v FieldValue
			require.NoError(t, json.Unmarshal([]byte(tt.in), &v))
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestFieldValue_UnmarshalJSON_Rejects(t *testing.T) {
	for _, in := range []string{`null`, `[1]`, `{"a":1}`, `true`} {
		var v FieldValue
		assert.Error(t, json.Unmarshal([]byte(in), &v), "input %s", in)
	}
}

func TestFieldValue_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(IntValue(1000000))
	require.NoError(t, err)
	assert.Equal(t, `1000000`, string(out))

	out, err = json.Marshal(FloatValue(12.5))
	require.NoError(t, err)
	assert.Equal(t, `12.5`, string(out))

	out, err = json.Marshal(NA())
	require.NoError(t, err)
	assert.Equal(t, `"N/A"`, string(out))
}

func TestFieldEntry_UnmarshalScalar(t *testing.T) {
	var e FieldEntry
	require.NoError(t, json.Unmarshal([]byte(`"N/A"`), &e))
	assert.True(t, e.Value.IsNA())
	assert.Empty(t, e.From)

	require.NoError(t, json.Unmarshal([]byte(`250000`), &e))
	v, ok := e.Value.Int()
	require.True(t, ok)
	assert.EqualValues(t, 250000, v)
}

func TestRecord_Normalize(t *testing.T) {
	rec := FinancialRecord{
		"Revenue": {Value: StringValue("1,000,000")},
		"Cost":    {Value: IntValue(500)},
	}
	rec.Normalize()

	v, ok := rec["Revenue"].Value.Int()
	require.True(t, ok)
	assert.EqualValues(t, 1000000, v)

	// Every schema field exists after normalization; missing ones are N/A.
	for _, f := range SchemaFields {
		entry, ok := rec[f]
		require.True(t, ok, "schema field %q missing", f)
		if f != "Revenue" && f != "Cost" {
			assert.True(t, entry.Value.IsNA(), "field %q", f)
		}
	}
}

func TestRecord_NormalizeKeepsNonNumericStrings(t *testing.T) {
	rec := FinancialRecord{"Revenue": {Value: StringValue("about 1,000 or so")}}
	rec.Normalize()
	assert.Equal(t, "about 1,000 or so", rec["Revenue"].Value.String())
}

func TestRecord_ValidateSchema(t *testing.T) {
	rec := FinancialRecord{"Revenue": {Value: IntValue(1)}}
	rec.Normalize()
	assert.NoError(t, rec.ValidateSchema())

	rec["EBITDA"] = FieldEntry{Value: IntValue(2)}
	err := rec.ValidateSchema()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EBITDA")
}
