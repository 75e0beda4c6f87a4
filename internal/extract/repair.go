package extract

import (
	"regexp"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/model"
)

var (
	trailingCommaObjRe = regexp.MustCompile(`,\s*}`)
	trailingCommaArrRe = regexp.MustCompile(`,\s*]`)
	singleQuotedKeyRe  = regexp.MustCompile(`'([^']*)':`)
	singleQuotedValRe  = regexp.MustCompile(`:\s*'([^']*)'`)
	thousandsValueRe   = regexp.MustCompile(`("value":\s*)(\d{1,3}(?:,\d{3})+)`)
	bareFromDateRe     = regexp.MustCompile(`("from":\s*)(\d{4}-\d{2}-\d{2})`)
	bareToDateRe       = regexp.MustCompile(`("to":\s*)(\d{4}-\d{2}-\d{2})`)
)

// applyRepairs runs the fixed repair sequence over a candidate that
// failed strict parsing: trailing commas, single-quoted keys and
// values, thousand-separated numeric values, unquoted ISO dates. The
// caller reparses once after all repairs are applied.
func applyRepairs(s string) string {
	s = trailingCommaObjRe.ReplaceAllString(s, "}")
	s = trailingCommaArrRe.ReplaceAllString(s, "]")

	s = singleQuotedKeyRe.ReplaceAllString(s, `"$1":`)
	s = singleQuotedValRe.ReplaceAllString(s, `: "$1"`)

	s = thousandsValueRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := thousandsValueRe.FindStringSubmatch(m)
		return parts[1] + strings.ReplaceAll(parts[2], ",", "")
	})

	s = bareFromDateRe.ReplaceAllString(s, `$1"$2"`)
	s = bareToDateRe.ReplaceAllString(s, `$1"$2"`)

	return s
}

// repairStrategy locates a candidate, applies the repair sequence, and
// reparses once.
func repairStrategy(text string) (model.FinancialRecord, bool) {
	cand, ok := locateCandidate(text)
	if !ok {
		return nil, false
	}
	return parseRecord(applyRepairs(cand))
}

// libraryRepairStrategy hands the candidate to the jsonrepair library
// for shapes the fixed repair sequence does not cover (unquoted keys,
// truncated objects). Only fenced candidates are eligible: a fence
// marks author-intended JSON, while a brace span pulled out of prose
// would let the aggressive repair invent a record from plain sentences
// and shadow the field-by-field recovery below it.
func libraryRepairStrategy(text string) (model.FinancialRecord, bool) {
	cand, ok := locateFencedJSON(text)
	if !ok {
		cand, ok = locateFenced(text)
	}
	if !ok {
		return nil, false
	}
	repaired, err := jsonrepair.JSONRepair(cand)
	if err != nil {
		return nil, false
	}
	return parseRecord(repaired)
}
