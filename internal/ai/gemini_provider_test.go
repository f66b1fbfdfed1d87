package ai

import (
	"testing"

	"resumelens/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

func attrMap(attrs []attribute.KeyValue) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, kv := range attrs {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestAnalyzeOutputAttributes(t *testing.T) {
	output := types.AnalyzeResumeOutput{
		Content:    "solid resume",
		Strengths:  []string{"clear layout", "quantified impact"},
		Weaknesses: []string{"missing summary"},
	}

	attrs := attrMap(analyzeOutputAttributes(output))

	if got := attrs["output.content_length"].AsInt64(); got != int64(len(output.Content)) {
		t.Errorf("Expected content_length %d, got %d", len(output.Content), got)
	}
	if got := attrs["output.strengths_count"].AsInt64(); got != 2 {
		t.Errorf("Expected strengths_count 2, got %d", got)
	}
	if got := attrs["output.weaknesses_count"].AsInt64(); got != 1 {
		t.Errorf("Expected weaknesses_count 1, got %d", got)
	}
}

func TestAskOutputAttributes(t *testing.T) {
	output := types.AskQuestionOutput{Answer: "five years of Go experience"}

	attrs := attrMap(askOutputAttributes(output))

	if got := attrs["output.answer_length"].AsInt64(); got != int64(len(output.Answer)) {
		t.Errorf("Expected answer_length %d, got %d", len(output.Answer), got)
	}
}

func TestExtractTokenUsageNilSafe(t *testing.T) {
	if extractTokenUsage(nil) != nil {
		t.Error("Expected nil usage for nil response")
	}
}
