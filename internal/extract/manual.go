package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/model"
)

var (
	fieldSpanRe = regexp.MustCompile(`"([^"]+)":\s*\{([^}]+)\}`)
	valueRe     = regexp.MustCompile(`"value":\s*([^,"\n]+(?:,[^,"\n]+)*)`)
	fromRe      = regexp.MustCompile(`"from":\s*([^,\n]+)`)
	toRe        = regexp.MustCompile(`"to":\s*([^,\n]+)`)
)

// recoverFields is the last-resort strategy: scan the text for
// "<field>": { ... } spans one field at a time and pull value/from/to
// out of each span with targeted patterns. Recovery succeeds if at
// least one field is captured.
func recoverFields(text string) (model.FinancialRecord, bool) {
	rec := model.FinancialRecord{}

	for _, span := range fieldSpanRe.FindAllStringSubmatch(text, -1) {
		name, body := span[1], span[2]

		vm := valueRe.FindStringSubmatch(body)
		if vm == nil {
			continue
		}

		entry := model.FieldEntry{Value: coerceValue(vm[1])}
		if fm := fromRe.FindStringSubmatch(body); fm != nil {
			entry.From = trimQuotes(fm[1])
		}
		if tm := toRe.FindStringSubmatch(body); tm != nil {
			entry.To = trimQuotes(tm[1])
		}
		rec[name] = entry
	}

	return rec, len(rec) > 0
}

// coerceValue turns a captured value token into an integer if possible,
// else a float, else a bare dequoted string. Thousand-separator commas
// are removed before the numeric attempts so the full number survives.
func coerceValue(raw string) model.FieldValue {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, ",")
	s = strings.ReplaceAll(s, ",", "")

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return model.IntValue(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return model.FloatValue(f)
	}
	return model.StringValue(trimQuotes(s))
}

func trimQuotes(s string) string {
	return strings.Trim(strings.TrimSpace(s), `"'`)
}
