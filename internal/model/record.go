package model

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// SchemaFields lists the income-statement line items every recovered
// record must carry. Fields the document does not disclose are filled
// with "N/A" rather than dropped.
var SchemaFields = []string{
	"Revenue",
	"Cost",
	"Gross Profit",
	"Operating Expenses",
	"Operating Income",
	"Net Income",
}

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
)

// FieldValue is a scalar recovered for one line item: an integer
// amount, a floating-point amount, or a string such as "N/A".
type FieldValue struct {
	kind valueKind
	i    int64
	f    float64
	s    string
}

// IntValue returns a FieldValue holding an integer amount.
func IntValue(v int64) FieldValue { return FieldValue{kind: kindInt, i: v} }

// FloatValue returns a FieldValue holding a floating-point amount.
func FloatValue(v float64) FieldValue { return FieldValue{kind: kindFloat, f: v} }

// StringValue returns a FieldValue holding a string.
func StringValue(v string) FieldValue { return FieldValue{kind: kindString, s: v} }

// NA is the placeholder value for line items the document does not disclose.
func NA() FieldValue { return StringValue("N/A") }

// Int returns the integer amount and whether the value holds one.
func (v FieldValue) Int() (int64, bool) { return v.i, v.kind == kindInt }

// Float returns the floating-point amount and whether the value holds one.
func (v FieldValue) Float() (float64, bool) { return v.f, v.kind == kindFloat }

// IsNA reports whether the value is the "N/A" placeholder.
func (v FieldValue) IsNA() bool { return v.kind == kindString && v.s == "N/A" }

// String renders the value for logs and plain-text output.
func (v FieldValue) String() string {
	switch v.kind {
	case kindInt:
		return strconv.FormatInt(v.i, 10)
	case kindFloat:
		return strconv.FormatFloat(v.f, 'f', -1, 64)
	default:
		return v.s
	}
}

// MarshalJSON emits the value as a JSON number or string.
func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case kindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case kindFloat:
		return json.Marshal(v.f)
	default:
		return json.Marshal(v.s)
	}
}

// UnmarshalJSON accepts a JSON number or string. Anything else (null,
// arrays, objects) is rejected so a malformed candidate fails fast and
// the extraction cascade can move on.
func (v *FieldValue) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return eris.New("model: empty field value")
	}
	if s[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return eris.Wrap(err, "model: unmarshal string value")
		}
		*v = StringValue(str)
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*v = IntValue(i)
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*v = FloatValue(f)
		return nil
	}
	return eris.Errorf("model: field value %q is neither number nor string", s)
}

// normalized coerces string values carrying thousand-separator commas
// (e.g. "1,000,000") to integers. Other values pass through unchanged.
func (v FieldValue) normalized() FieldValue {
	if v.kind != kindString || !strings.Contains(v.s, ",") {
		return v
	}
	stripped := strings.ReplaceAll(v.s, ",", "")
	if i, err := strconv.ParseInt(stripped, 10, 64); err == nil {
		return IntValue(i)
	}
	return v
}

// FieldEntry is one line item in a recovered record: a value plus the
// reporting period it covers, when the document states one.
type FieldEntry struct {
	Value FieldValue `json:"value"`
	From  string     `json:"from,omitempty"`
	To    string     `json:"to,omitempty"`
}

// UnmarshalJSON accepts either the canonical {"value": ..., "from":
// ..., "to": ...} object or a bare scalar, which the completion
// service sometimes emits for undisclosed items ("Revenue": "N/A").
func (e *FieldEntry) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return eris.New("model: empty field entry")
	}
	if trimmed[0] == '{' {
		type alias FieldEntry
		var a alias
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		*e = FieldEntry(a)
		return nil
	}
	var v FieldValue
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	*e = FieldEntry{Value: v}
	return nil
}

// FinancialRecord maps line-item names to recovered entries. Keys the
// service returns outside the fixed schema are preserved as-is; see
// ValidateSchema for the optional strict mode.
type FinancialRecord map[string]FieldEntry

// Normalize cleans recovered scalars in place and synthesizes "N/A"
// entries for schema fields the extraction did not capture. It never
// removes keys.
func (r FinancialRecord) Normalize() {
	for k, e := range r {
		e.Value = e.Value.normalized()
		r[k] = e
	}
	for _, f := range SchemaFields {
		if _, ok := r[f]; !ok {
			r[f] = FieldEntry{Value: NA()}
		}
	}
}

// ValidateSchema rejects keys outside the fixed schema. Lenient
// pass-through of unknown keys is the default behavior; this is the
// opt-in stricter mode.
func (r FinancialRecord) ValidateSchema() error {
	known := make(map[string]bool, len(SchemaFields))
	for _, f := range SchemaFields {
		known[f] = true
	}
	var extra []string
	for k := range r {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return eris.Errorf("model: record contains unknown fields: %s", strings.Join(extra, ", "))
	}
	return nil
}
