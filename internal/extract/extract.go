// Package extract recovers a structured financial record from the
// free-form reply of the completion service. The reply is expected to
// embed a JSON object but is frequently malformed, so recovery runs as
// an ordered cascade of strategies of decreasing strictness.
package extract

import (
	"encoding/json"
	"regexp"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/model"
)

// ErrNoParsableStructure is returned when every cascade strategy fails.
// It is the pipeline's only hard failure; sparse records with "N/A"
// fields are successes.
var ErrNoParsableStructure = eris.New("extract: no parsable JSON structure in text")

var (
	fencedJSONRe = regexp.MustCompile("```json\\s*({[\\s\\S]*?})\\s*```")
	fencedRe     = regexp.MustCompile("```\\s*({[\\s\\S]*?})\\s*```")
	braceRe      = regexp.MustCompile(`({[\s\S]*?})`)
)

// Strategy is one parsing attempt in the cascade: a pure function from
// raw text to a record, reporting whether it recovered anything.
type Strategy struct {
	Name string
	Run  func(text string) (model.FinancialRecord, bool)
}

// Extractor runs the strategy cascade over raw reply text.
type Extractor struct {
	strategies []Strategy
	strict     bool
}

// Option configures the extractor.
type Option func(*Extractor)

// WithStrictSchema rejects records carrying keys outside the fixed
// schema. The default is lenient pass-through of unknown keys.
func WithStrictSchema() Option {
	return func(e *Extractor) { e.strict = true }
}

// New creates an extractor with the default strategy cascade.
func New(opts ...Option) *Extractor {
	e := &Extractor{strategies: defaultStrategies()}
	for _, o := range opts {
		o(e)
	}
	return e
}

func defaultStrategies() []Strategy {
	return []Strategy{
		{Name: "fenced-json", Run: strictParse(locateFencedJSON)},
		{Name: "fenced", Run: strictParse(locateFenced)},
		{Name: "brace-scan", Run: strictParse(locateBrace)},
		{Name: "repair", Run: repairStrategy},
		{Name: "jsonrepair", Run: libraryRepairStrategy},
		{Name: "manual", Run: recoverFields},
	}
}

// Extract runs the cascade and returns the first record any strategy
// recovers, normalized. It returns ErrNoParsableStructure only when
// every strategy fails.
func (e *Extractor) Extract(raw string) (model.FinancialRecord, error) {
	for _, s := range e.strategies {
		rec, ok := s.Run(raw)
		if !ok || len(rec) == 0 {
			continue
		}
		rec.Normalize()
		if e.strict {
			if err := rec.ValidateSchema(); err != nil {
				return nil, eris.Wrap(err, "extract: strict schema validation")
			}
		}
		zap.L().Debug("extraction strategy succeeded",
			zap.String("strategy", s.Name),
			zap.Int("fields", len(rec)),
		)
		return rec, nil
	}
	return nil, ErrNoParsableStructure
}

// locateFencedJSON finds a fenced code block explicitly tagged as JSON.
func locateFencedJSON(text string) (string, bool) {
	return firstGroup(fencedJSONRe, text)
}

// locateFenced finds a fenced code block with no tag.
func locateFenced(text string) (string, bool) {
	return firstGroup(fencedRe, text)
}

// locateBrace finds the first non-greedy {...} span anywhere in the
// text. For nested objects this stops at the first closing brace, so
// the candidate often needs the repair or manual strategies downstream.
func locateBrace(text string) (string, bool) {
	return firstGroup(braceRe, text)
}

// locateCandidate tries the three locators in order of strictness.
func locateCandidate(text string) (string, bool) {
	for _, loc := range []func(string) (string, bool){locateFencedJSON, locateFenced, locateBrace} {
		if cand, ok := loc(text); ok {
			return cand, true
		}
	}
	return "", false
}

func firstGroup(re *regexp.Regexp, text string) (string, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// strictParse wraps a candidate locator with a strict JSON parse.
func strictParse(locate func(string) (string, bool)) func(string) (model.FinancialRecord, bool) {
	return func(text string) (model.FinancialRecord, bool) {
		cand, ok := locate(text)
		if !ok {
			return nil, false
		}
		return parseRecord(cand)
	}
}

func parseRecord(candidate string) (model.FinancialRecord, bool) {
	var rec model.FinancialRecord
	if err := json.Unmarshal([]byte(candidate), &rec); err != nil {
		return nil, false
	}
	return rec, len(rec) > 0
}
