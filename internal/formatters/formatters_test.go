package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"resumelens/internal/types"
)

func TestJSONFormatterHandlesAnyType(t *testing.T) {
	registry := NewFormatterRegistry()

	result := types.ExtractionResult{
		Text:      "Jane Doe\njane@example.com",
		PageCount: 1,
		Method:    types.ExtractionMethodTextLayer,
		Fields:    types.ResumeFields{Name: "Jane Doe", Email: "jane@example.com"},
	}

	output, err := registry.Format(result, "json")
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded["method"] != "text-layer" {
		t.Errorf("Expected method 'text-layer', got %v", decoded["method"])
	}
}

func TestExtractionTextFormatterListsAllFields(t *testing.T) {
	registry := NewFormatterRegistry()

	result := types.ExtractionResult{
		Text:      "some resume text",
		PageCount: 2,
		Method:    types.ExtractionMethodOCR,
		Fields:    types.ResumeFields{Email: "jane@example.com"},
	}

	output, err := registry.Format(result, "text")
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	for _, label := range []string{"Name", "Email", "Phone", "Education", "Skills", "Experience"} {
		if !strings.Contains(output, label+":") {
			t.Errorf("Expected output to contain field label %q", label)
		}
	}
	if !strings.Contains(output, "(not detected)") {
		t.Error("Expected empty fields to render as '(not detected)'")
	}
	if !strings.Contains(output, "jane@example.com") {
		t.Error("Expected detected email in output")
	}
}

func TestAnalysisMarkdownFormatterMarksManualResults(t *testing.T) {
	registry := NewFormatterRegistry()

	analysis := types.AnalyzeResumeOutput{
		AnalysisType: types.AnalysisIssues,
		Content:      "Check your formatting.",
		Weaknesses:   []string{"inconsistent dates"},
		Manual:       true,
	}

	output, err := registry.Format(analysis, "markdown")
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}

	if !strings.Contains(output, "# Issues Analysis") {
		t.Errorf("Expected mode heading, got:\n%s", output)
	}
	if !strings.Contains(output, "Manual guidance") {
		t.Error("Expected manual guidance marker for manual results")
	}
	if !strings.Contains(output, "- inconsistent dates") {
		t.Error("Expected weaknesses list entry")
	}
}

func TestAnswerFormatters(t *testing.T) {
	registry := NewFormatterRegistry()
	answer := types.AskQuestionOutput{Answer: "Three years of Go experience."}

	for _, format := range []string{"text", "markdown"} {
		output, err := registry.Format(answer, format)
		if err != nil {
			t.Fatalf("Format(%s) returned error: %v", format, err)
		}
		if !strings.Contains(output, "Three years of Go experience.") {
			t.Errorf("Format(%s) lost the answer text", format)
		}
		if strings.Contains(output, "Manual guidance") || strings.Contains(output, "manual guidance") {
			t.Errorf("Format(%s) marked a non-manual answer as manual", format)
		}
	}
}

func TestFormatRejectsUnknownFormat(t *testing.T) {
	registry := NewFormatterRegistry()

	_, err := registry.Format(types.AskQuestionOutput{Answer: "x"}, "yaml")
	if err == nil {
		t.Fatal("Expected error for unsupported format")
	}
}
