package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRequest(t *testing.T) {
	spec := ParseRequest("some text")

	assert.Equal(t, PurposeParse, spec.Purpose)
	assert.Equal(t, "some text", spec.UserText)
	assert.InEpsilon(t, 0.3, spec.Temperature, 1e-9)
	assert.Equal(t, 1500, spec.MaxTokens)
	assert.False(t, spec.Stream)
	assert.Contains(t, spec.SystemPrompt, "markdown format")
}

func TestAnalysisRequest(t *testing.T) {
	spec := AnalysisRequest("some text")

	assert.Equal(t, PurposeAnalysis, spec.Purpose)
	assert.InEpsilon(t, 0.3, spec.Temperature, 1e-9)
	assert.Equal(t, 2000, spec.MaxTokens)
	assert.False(t, spec.Stream)
	assert.Contains(t, spec.SystemPrompt, "income statement")
	// The template pins the exact record shape the extractor expects.
	assert.Contains(t, spec.SystemPrompt, `"Revenue"`)
	assert.Contains(t, spec.SystemPrompt, `"Net Income"`)
}
