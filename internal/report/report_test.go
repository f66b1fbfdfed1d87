package report

import (
	"bytes"
	"log/slog"
	"testing"

	"resumelens/internal/errors"
	"resumelens/internal/types"
)

var testLogger = errors.NewLogger(slog.LevelError)

func TestRenderWithEmptyFields(t *testing.T) {
	gen := NewGenerator(testLogger)

	// An entirely empty extraction still yields a readable document
	data, err := gen.Render(types.ReportData{})
	if err != nil {
		t.Fatalf("Render failed for empty report data: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Expected non-empty PDF output")
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("Output does not look like a PDF, starts with %q", data[:min(len(data), 8)])
	}
}

func TestRenderWithAnalyses(t *testing.T) {
	gen := NewGenerator(testLogger)

	data, err := gen.Render(types.ReportData{
		FileName: "resume.pdf",
		Fields: types.ResumeFields{
			Name:  "Jane Doe",
			Email: "jane@example.com",
		},
		Analyses: []types.AnalyzeResumeOutput{
			{
				AnalysisType: types.AnalysisComplete,
				Content:      "[STRENGTH] Clear structure\n[WEAKNESS] Missing metrics",
				Strengths:    []string{"[STRENGTH] Strong Go background"},
				Weaknesses:   []string{"No quantified results"},
			},
			{
				AnalysisType: types.AnalysisQuickOverview,
				Content:      "Solid mid-level profile.",
				Manual:       true,
			},
		},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("Output does not look like a PDF")
	}
}

func TestCleanAnalysisText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "strength marker", in: "[STRENGTH] Good summary", want: "Good summary"},
		{name: "weakness marker", in: "[WEAKNESS] Vague titles", want: "Vague titles"},
		{name: "markdown noise", in: "**Skills** section", want: "Skills section"},
		{name: "bullet normalized", in: "• item", want: "- item"},
		{name: "plain text untouched", in: "nothing to strip", want: "nothing to strip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanAnalysisText(tt.in); got != tt.want {
				t.Errorf("cleanAnalysisText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanAnalysisLines(t *testing.T) {
	lines := cleanAnalysisLines("[STRENGTH] one\n\n   \n[WEAKNESS] two")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d: %v", len(lines), lines)
	}
	if lines[0] != "one" || lines[1] != "two" {
		t.Errorf("Unexpected cleaned lines: %v", lines)
	}

	empty := cleanAnalysisLines("[STRENGTH][WEAKNESS]")
	if len(empty) != 1 || empty[0] != "No analysis content." {
		t.Errorf("Expected placeholder for empty content, got %v", empty)
	}
}
