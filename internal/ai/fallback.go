package ai

import (
	"strings"

	"resumelens/internal/types"
)

// manualAnalysisTips holds the offline guidance returned when the AI backend
// is unavailable. Mirrors the analysis modes so every request still gets a
// usable answer.
var manualAnalysisTips = map[types.AnalysisType]string{
	types.AnalysisQuickOverview: `Your resume has been uploaded and processed successfully.
Here are some general guidelines to review:
- Your contact information is prominent and current.
- Your experience is listed in reverse chronological order.
- Your skills section matches the job requirements.
- Look for quantifiable achievements and results.`,

	types.AnalysisIssues: `Common resume issues to check manually:
- Formatting problems: Inconsistent fonts, sizes, or spacing.
- Content issues: Typos, vague job descriptions, missing achievements.
- Structure problems: No clear summary, poor organization.`,

	types.AnalysisEnhancement: `Focus on these improvement areas:
- Add quantifiable achievements.
- Use action verbs to start bullet points.
- Customize your resume for each job application.
- Include relevant keywords from the job posting.`,

	types.AnalysisJobMatch: `To manually assess job matching:
- Compare your resume against the job posting.
- Highlight matching skills and experience.
- Identify gaps: Missing technical skills, lack of industry experience.`,
}

const manualAnswerGuidance = `The AI service is temporarily unavailable, so your question could not be answered automatically.
In the meantime:
- Review the extracted resume fields for accuracy.
- Compare your resume against the job posting manually.
- Try your question again in a few minutes.`

// ManualAnalysis returns offline analysis guidance for the given mode, marked
// so callers and clients can distinguish it from AI-generated output. Modes
// without dedicated guidance fall back to the quick overview text.
func ManualAnalysis(analysisType types.AnalysisType) types.AnalyzeResumeOutput {
	tips, ok := manualAnalysisTips[analysisType]
	if !ok {
		tips = manualAnalysisTips[types.AnalysisQuickOverview]
	}

	return types.AnalyzeResumeOutput{
		AnalysisType: analysisType,
		Content:      strings.TrimSpace(tips),
		Manual:       true,
	}
}

// ManualAnswer returns the offline Q&A guidance, marked as manual output
func ManualAnswer() types.AskQuestionOutput {
	return types.AskQuestionOutput{
		Answer: manualAnswerGuidance,
		Manual: true,
	}
}
