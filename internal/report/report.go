package report

import (
	"bytes"
	"strings"
	"time"

	"resumelens/internal/errors"
	"resumelens/internal/types"

	"github.com/go-pdf/fpdf"
)

// Field rows always rendered, in display order. Empty values still get a row
// so an empty extraction produces a readable report.
var fieldRows = []struct {
	Label string
	Value func(types.ResumeFields) string
}{
	{"Name", func(f types.ResumeFields) string { return f.Name }},
	{"Email", func(f types.ResumeFields) string { return f.Email }},
	{"Phone", func(f types.ResumeFields) string { return f.Phone }},
	{"Education", func(f types.ResumeFields) string { return f.Education }},
	{"Skills", func(f types.ResumeFields) string { return f.Skills }},
	{"Experience", func(f types.ResumeFields) string { return f.Experience }},
}

// Generator renders analysis reports as PDF documents
type Generator struct {
	logger *errors.Logger
}

// NewGenerator creates a PDF report generator
func NewGenerator(logger *errors.Logger) *Generator {
	return &Generator{logger: logger}
}

// Render produces the PDF report bytes for the given data
func (g *Generator) Render(data types.ReportData) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	// Title
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, tr("Resume Analysis Report"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	subtitle := time.Now().Format("January 2, 2006")
	if data.FileName != "" {
		subtitle = data.FileName + "  |  " + subtitle
	}
	pdf.CellFormat(0, 6, tr(subtitle), "", 1, "C", false, 0, "")
	pdf.Ln(4)
	pdf.SetTextColor(0, 0, 0)

	g.renderFields(pdf, tr, data.Fields)

	for _, analysis := range data.Analyses {
		g.renderAnalysis(pdf, tr, analysis)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeReportFailed,
			"Failed to render PDF report", err)
	}

	g.logger.Debug("Report rendered",
		"file_name", data.FileName,
		"analyses", len(data.Analyses),
		"size_bytes", buf.Len())

	return buf.Bytes(), nil
}

// renderFields draws the parsed-fields table. All six rows are always drawn.
func (g *Generator) renderFields(pdf *fpdf.Fpdf, tr func(string) string, fields types.ResumeFields) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 9, tr("Extracted Fields"), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	for _, row := range fieldRows {
		value := strings.TrimSpace(row.Value(fields))
		if value == "" {
			value = "Not detected"
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 6, tr(row.Label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, tr(value), "", "L", false)
		pdf.Ln(1)
	}
	pdf.Ln(4)
}

// renderAnalysis draws one analysis section with cleaned body text
func (g *Generator) renderAnalysis(pdf *fpdf.Fpdf, tr func(string) string, analysis types.AnalyzeResumeOutput) {
	pdf.SetFont("Helvetica", "B", 13)
	title := analysis.AnalysisType.Label()
	if analysis.Manual {
		title += " (manual guidance)"
	}
	pdf.CellFormat(0, 9, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Helvetica", "", 10)
	for _, line := range cleanAnalysisLines(analysis.Content) {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}

	if len(analysis.Strengths) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, tr("Strengths"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, s := range analysis.Strengths {
			pdf.MultiCell(0, 5, tr("- "+cleanAnalysisText(s)), "", "L", false)
		}
	}
	if len(analysis.Weaknesses) > 0 {
		pdf.Ln(2)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(0, 6, tr("Areas for Improvement"), "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, w := range analysis.Weaknesses {
			pdf.MultiCell(0, 5, tr("- "+cleanAnalysisText(w)), "", "L", false)
		}
	}
	pdf.Ln(5)
}

var markerReplacer = strings.NewReplacer(
	"[STRENGTH]", "",
	"[WEAKNESS]", "",
	"**", "",
	"##", "",
	"•", "-",
)

// cleanAnalysisText strips model output markers and bullet noise
func cleanAnalysisText(s string) string {
	return strings.TrimSpace(markerReplacer.Replace(s))
}

// cleanAnalysisLines cleans content line by line, dropping lines that end up
// empty after marker removal.
func cleanAnalysisLines(content string) []string {
	var lines []string
	for _, raw := range strings.Split(content, "\n") {
		line := cleanAnalysisText(raw)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = []string{"No analysis content."}
	}
	return lines
}
