package formatters

import (
	"encoding/json"
	"fmt"
	"strings"

	"resumelens/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "ExtractionResult", &ExtractionTextFormatter{})
	registry.RegisterFormatter("markdown", "ExtractionResult", &ExtractionMarkdownFormatter{})
	registry.RegisterFormatter("text", "AnalyzeResumeOutput", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalyzeResumeOutput", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", "AskQuestionOutput", &AnswerTextFormatter{})
	registry.RegisterFormatter("markdown", "AskQuestionOutput", &AnswerMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ExtractionResult:
		return "ExtractionResult"
	case types.AnalyzeResumeOutput:
		return "AnalyzeResumeOutput"
	case types.AskQuestionOutput:
		return "AskQuestionOutput"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// ExtractionTextFormatter handles text formatting for extraction results
type ExtractionTextFormatter struct{}

func (etf *ExtractionTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ExtractionResult)
	if !ok {
		return "", fmt.Errorf("expected ExtractionResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== EXTRACTION SUMMARY ===\n")
	output.WriteString(fmt.Sprintf("Method: %s\n", result.Method))
	output.WriteString(fmt.Sprintf("Pages: %d\n", result.PageCount))
	output.WriteString(fmt.Sprintf("Words: %d\n", len(strings.Fields(result.Text))))
	output.WriteString(fmt.Sprintf("Characters: %d\n\n", len(result.Text)))

	output.WriteString("=== DETECTED FIELDS ===\n")
	for _, field := range fieldRows(result.Fields) {
		value := field.value
		if value == "" {
			value = "(not detected)"
		}
		output.WriteString(fmt.Sprintf("%s: %s\n", field.label, value))
	}
	output.WriteString("\n")

	output.WriteString("=== RESUME TEXT ===\n")
	output.WriteString(result.Text)
	output.WriteString("\n")

	return output.String(), nil
}

func (etf *ExtractionTextFormatter) SupportedType() string {
	return "ExtractionResult"
}

// ExtractionMarkdownFormatter handles markdown formatting for extraction results
type ExtractionMarkdownFormatter struct{}

func (emf *ExtractionMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.ExtractionResult)
	if !ok {
		return "", fmt.Errorf("expected ExtractionResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Resume Extraction\n\n")
	output.WriteString(fmt.Sprintf("**Method:** %s\n\n", result.Method))
	output.WriteString(fmt.Sprintf("**Pages:** %d\n\n", result.PageCount))
	output.WriteString(fmt.Sprintf("**Words:** %d\n\n", len(strings.Fields(result.Text))))

	output.WriteString("## Detected Fields\n\n")
	for _, field := range fieldRows(result.Fields) {
		value := field.value
		if value == "" {
			value = "_not detected_"
		}
		output.WriteString(fmt.Sprintf("- **%s:** %s\n", field.label, value))
	}
	output.WriteString("\n")

	output.WriteString("## Resume Text\n\n")
	output.WriteString(result.Text)
	output.WriteString("\n")

	return output.String(), nil
}

func (emf *ExtractionMarkdownFormatter) SupportedType() string {
	return "ExtractionResult"
}

type fieldRow struct {
	label string
	value string
}

func fieldRows(fields types.ResumeFields) []fieldRow {
	return []fieldRow{
		{"Name", fields.Name},
		{"Email", fields.Email},
		{"Phone", fields.Phone},
		{"Education", fields.Education},
		{"Skills", fields.Skills},
		{"Experience", fields.Experience},
	}
}

// AnalysisTextFormatter handles text formatting for analysis results
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalyzeResumeOutput)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeResumeOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("=== %s ===\n", strings.ToUpper(result.AnalysisType.Label())))
	if result.Manual {
		output.WriteString("(manual guidance, AI unavailable)\n")
	}
	output.WriteString("\n")
	output.WriteString(result.Content)
	output.WriteString("\n")

	if len(result.Strengths) > 0 {
		output.WriteString("\n=== STRENGTHS ===\n")
		for _, strength := range result.Strengths {
			output.WriteString(fmt.Sprintf("- %s\n", strength))
		}
	}

	if len(result.Weaknesses) > 0 {
		output.WriteString("\n=== WEAKNESSES ===\n")
		for _, weakness := range result.Weaknesses {
			output.WriteString(fmt.Sprintf("- %s\n", weakness))
		}
	}

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalyzeResumeOutput"
}

// AnalysisMarkdownFormatter handles markdown formatting for analysis results
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalyzeResumeOutput)
	if !ok {
		return "", fmt.Errorf("expected AnalyzeResumeOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString(fmt.Sprintf("# %s\n\n", result.AnalysisType.Label()))
	if result.Manual {
		output.WriteString("_Manual guidance, AI unavailable._\n\n")
	}
	output.WriteString(result.Content)
	output.WriteString("\n")

	if len(result.Strengths) > 0 {
		output.WriteString("\n## Strengths\n\n")
		for _, strength := range result.Strengths {
			output.WriteString(fmt.Sprintf("- %s\n", strength))
		}
	}

	if len(result.Weaknesses) > 0 {
		output.WriteString("\n## Weaknesses\n\n")
		for _, weakness := range result.Weaknesses {
			output.WriteString(fmt.Sprintf("- %s\n", weakness))
		}
	}

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalyzeResumeOutput"
}

// AnswerTextFormatter handles text formatting for question answers
type AnswerTextFormatter struct{}

func (atf *AnswerTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AskQuestionOutput)
	if !ok {
		return "", fmt.Errorf("expected AskQuestionOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== ANSWER ===\n")
	if result.Manual {
		output.WriteString("(manual guidance, AI unavailable)\n")
	}
	output.WriteString("\n")
	output.WriteString(result.Answer)
	output.WriteString("\n")

	return output.String(), nil
}

func (atf *AnswerTextFormatter) SupportedType() string {
	return "AskQuestionOutput"
}

// AnswerMarkdownFormatter handles markdown formatting for question answers
type AnswerMarkdownFormatter struct{}

func (amf *AnswerMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AskQuestionOutput)
	if !ok {
		return "", fmt.Errorf("expected AskQuestionOutput, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# Answer\n\n")
	if result.Manual {
		output.WriteString("_Manual guidance, AI unavailable._\n\n")
	}
	output.WriteString(result.Answer)
	output.WriteString("\n")

	return output.String(), nil
}

func (amf *AnswerMarkdownFormatter) SupportedType() string {
	return "AskQuestionOutput"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
