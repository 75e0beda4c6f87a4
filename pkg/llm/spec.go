package llm

// Purpose identifies which fixed instruction template a completion call
// carries. Both purposes share one client implementation; they differ
// only in template, temperature, and output budget.
type Purpose string

const (
	// PurposeParse asks for a markdown overview of the document.
	PurposeParse Purpose = "parse"
	// PurposeAnalysis asks for the income statement as JSON.
	PurposeAnalysis Purpose = "analysis"
)

// RequestSpec is an immutable description of one completion call. Build
// one via ParseRequest or AnalysisRequest; never mutate it afterwards.
type RequestSpec struct {
	Purpose      Purpose
	SystemPrompt string
	UserText     string
	Temperature  float64
	MaxTokens    int
	Stream       bool
}

// ParseRequest builds the spec for the document-parsing purpose.
func ParseRequest(text string) RequestSpec {
	return RequestSpec{
		Purpose:      PurposeParse,
		SystemPrompt: parseSystemPrompt,
		UserText:     text,
		Temperature:  0.3,
		MaxTokens:    1500,
	}
}

// AnalysisRequest builds the spec for the financial-analysis purpose.
func AnalysisRequest(text string) RequestSpec {
	return RequestSpec{
		Purpose:      PurposeAnalysis,
		SystemPrompt: analysisSystemPrompt,
		UserText:     text,
		Temperature:  0.3,
		MaxTokens:    2000,
	}
}
