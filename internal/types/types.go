package types

// ExtractionMethod identifies which route produced the resume text
type ExtractionMethod string

const (
	ExtractionMethodOCR       ExtractionMethod = "ocr"
	ExtractionMethodTextLayer ExtractionMethod = "text-layer"
)

// ResumeFields holds the structured fields parsed from resume text.
// Every field is always present in JSON output, empty when not detected.
type ResumeFields struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Education  string `json:"education"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
}

// ExtractionResult represents the full outcome of processing a resume PDF
type ExtractionResult struct {
	Text      string           `json:"text"`
	PageTexts []string         `json:"pageTexts,omitempty"`
	PageCount int              `json:"pageCount"`
	Method    ExtractionMethod `json:"method"`
	Fields    ResumeFields     `json:"fields"`
	Previews  [][]byte         `json:"-"`
}

// AnalysisType selects one of the built-in resume analysis modes
type AnalysisType string

const (
	AnalysisQuickOverview AnalysisType = "quick_overview"
	AnalysisIssues        AnalysisType = "issues"
	AnalysisEnhancement   AnalysisType = "enhancement"
	AnalysisJobMatch      AnalysisType = "job_match"
	AnalysisComplete      AnalysisType = "complete"
)

// AnalysisTypes lists all supported analysis modes
var AnalysisTypes = []AnalysisType{
	AnalysisQuickOverview,
	AnalysisIssues,
	AnalysisEnhancement,
	AnalysisJobMatch,
	AnalysisComplete,
}

// Valid reports whether t names a supported analysis mode
func (t AnalysisType) Valid() bool {
	for _, known := range AnalysisTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Label returns the human-readable name of the analysis mode
func (t AnalysisType) Label() string {
	switch t {
	case AnalysisQuickOverview:
		return "Quick Overview"
	case AnalysisIssues:
		return "Issues Analysis"
	case AnalysisEnhancement:
		return "Enhancement Tips"
	case AnalysisJobMatch:
		return "Job Matching"
	case AnalysisComplete:
		return "Complete Analysis"
	default:
		return string(t)
	}
}

// AnalyzeResumeInput represents the input for analyzing a resume
type AnalyzeResumeInput struct {
	ResumeText   string       `json:"resumeText"`
	AnalysisType AnalysisType `json:"analysisType"`
	JobContext   string       `json:"jobContext,omitempty"`
}

// AnalyzeResumeOutput represents the result of a resume analysis
type AnalyzeResumeOutput struct {
	AnalysisType AnalysisType `json:"analysisType"`
	Content      string       `json:"content"`
	Strengths    []string     `json:"strengths,omitempty"`
	Weaknesses   []string     `json:"weaknesses,omitempty"`
	Manual       bool         `json:"manual"`
}

// ChatTurn is a single exchange entry in a resume Q&A conversation
type ChatTurn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// AskQuestionInput represents the input for a free-form resume question
type AskQuestionInput struct {
	ResumeText string     `json:"resumeText"`
	Question   string     `json:"question"`
	JobContext string     `json:"jobContext,omitempty"`
	History    []ChatTurn `json:"history,omitempty"`
}

// AskQuestionOutput represents the answer to a resume question
type AskQuestionOutput struct {
	Answer string `json:"answer"`
	Manual bool   `json:"manual"`
}

// ReportData collects everything the PDF report renders
type ReportData struct {
	FileName string                `json:"fileName"`
	Fields   ResumeFields          `json:"fields"`
	Analyses []AnalyzeResumeOutput `json:"analyses,omitempty"`
}
