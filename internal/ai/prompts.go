package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"resumelens/internal/config"
	"resumelens/internal/types"
)

// Input truncation limits applied before prompt assembly. Keeps requests
// within model context limits even for long resumes.
const (
	maxResumeChars     = 4000
	maxJobContextChars = 1000
)

// SystemPrompts contains all system-level instructions for AI interactions
type SystemPrompts struct {
	AnalyzeResume string
	AskQuestion   string
}

// UserPrompts contains user-level prompts with placeholders for dynamic content
type UserPrompts struct {
	AnalyzeResume string
	AskQuestion   string
}

// DefaultSystemPrompts provides the default system instructions
var DefaultSystemPrompts = SystemPrompts{
	AnalyzeResume: `You are a professional resume analyzer and career counselor.
Provide detailed, actionable feedback. Use clear formatting with bullet points.
For strengths, start bullet points with [STRENGTH].
For weaknesses, start bullet points with [WEAKNESS].
Be specific and provide concrete examples.`,

	AskQuestion: `You are a professional resume consultant. Answer the user's question based ONLY on the provided resume content.
Be specific, actionable, and helpful. Use examples from the resume when possible.`,
}

// DefaultUserPrompts provides the default user prompt templates
var DefaultUserPrompts = UserPrompts{
	AnalyzeResume: `%s

**Resume Content:**
-----
%s
-----

**Job Description:**
-----
%s
-----

Please provide detailed analysis with specific examples and actionable recommendations.`,

	AskQuestion: `Answer the user's question based ONLY on the following resume content.

**Resume Content:**
-----
%s
-----

**Job Context (if provided):**
%s

**Previous Conversation:**
%s

**User Question:** %s

Provide a detailed, professional response with specific recommendations.`,
}

// analysisInstructions holds the mode-specific instructions prepended to the
// analyze user prompt.
var analysisInstructions = map[types.AnalysisType]string{
	types.AnalysisQuickOverview: `Provide a comprehensive overview of this resume including key strengths and notable areas for improvement.
Focus on the candidate's experience, skills, and overall presentation.`,

	types.AnalysisIssues: `Analyze this resume and identify specific issues, weaknesses, and areas that need improvement.
For each issue identified, mark it with [WEAKNESS] and provide specific suggestions for enhancement.`,

	types.AnalysisEnhancement: `Provide specific, actionable tips to enhance this resume.
Mark positive aspects with [STRENGTH] and improvement suggestions with [WEAKNESS].
Include formatting, content, and presentation recommendations.`,

	types.AnalysisJobMatch: `Compare this resume against the job description and analyze the match.
Mark matching qualifications with [STRENGTH] and gaps with [WEAKNESS].
Provide a match percentage and specific recommendations.`,

	types.AnalysisComplete: `Provide a complete analysis of this resume, covering all aspects including strengths, weaknesses, and job matching.
Mark positive aspects with [STRENGTH] and improvement suggestions with [WEAKNESS].`,
}

// AnalysisInstructions returns the mode-specific instruction block for an
// analysis type, falling back to the quick overview instructions for unknown
// modes.
func AnalysisInstructions(analysisType types.AnalysisType) string {
	if instructions, ok := analysisInstructions[analysisType]; ok {
		return instructions
	}
	return analysisInstructions[types.AnalysisQuickOverview]
}

// PromptConfig holds configuration for customizable prompts
type PromptConfig struct {
	SystemPrompts SystemPrompts `json:"systemPrompts"`
	UserPrompts   UserPrompts   `json:"userPrompts"`
}

// GetDefaultPromptConfig returns the default prompt configuration
func GetDefaultPromptConfig() PromptConfig {
	return PromptConfig{
		SystemPrompts: DefaultSystemPrompts,
		UserPrompts:   DefaultUserPrompts,
	}
}

// buildAnalyzePrompts returns the system prompt and formatted user prompt for
// a resume analysis request. Shared by all provider backends.
func buildAnalyzePrompts(cfg *config.OperationAIConfig, input types.AnalyzeResumeInput) (string, string) {
	systemPrompt := getSystemPrompt(cfg, "analyze")
	userPrompt := getUserPrompt(cfg, "analyze")

	formattedUserPrompt := fmt.Sprintf(userPrompt,
		AnalysisInstructions(input.AnalysisType),
		truncateInput(input.ResumeText, maxResumeChars),
		formatJobContext(input.JobContext))

	return systemPrompt, formattedUserPrompt
}

// buildAskPrompts returns the system prompt and formatted user prompt for a
// resume Q&A request. Shared by all provider backends.
func buildAskPrompts(cfg *config.OperationAIConfig, input types.AskQuestionInput) (string, string) {
	systemPrompt := getSystemPrompt(cfg, "ask")
	userPrompt := getUserPrompt(cfg, "ask")

	formattedUserPrompt := fmt.Sprintf(userPrompt,
		truncateInput(input.ResumeText, maxResumeChars),
		formatJobContext(input.JobContext),
		formatChatHistory(input.History),
		input.Question)

	return systemPrompt, formattedUserPrompt
}

// getSystemPrompt returns the appropriate system prompt for an operation
func getSystemPrompt(cfg *config.OperationAIConfig, promptType string) string {
	loadedPrompts := config.GetPromptsForOperation(promptType)
	configSystemPrompts := &cfg.CustomPrompts.SystemPrompts

	switch promptType {
	case "analyze":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.AnalyzeResume,
			configSystemPrompts.AnalyzeResume,
			DefaultSystemPrompts.AnalyzeResume,
		)
	case "ask":
		return resolvePrompt(
			loadedPrompts.SystemPrompts.AskQuestion,
			configSystemPrompts.AskQuestion,
			DefaultSystemPrompts.AskQuestion,
		)
	default:
		return ""
	}
}

// getUserPrompt returns the appropriate user prompt template for an operation
func getUserPrompt(cfg *config.OperationAIConfig, promptType string) string {
	loadedPrompts := config.GetPromptsForOperation(promptType)
	configUserPrompts := &cfg.CustomPrompts.UserPrompts

	switch promptType {
	case "analyze":
		return resolvePrompt(
			loadedPrompts.UserPrompts.AnalyzeResume,
			configUserPrompts.AnalyzeResume,
			DefaultUserPrompts.AnalyzeResume,
		)
	case "ask":
		return resolvePrompt(
			loadedPrompts.UserPrompts.AskQuestion,
			configUserPrompts.AskQuestion,
			DefaultUserPrompts.AskQuestion,
		)
	default:
		return ""
	}
}

// resolvePrompt selects the correct prompt string based on a clear priority order:
// 1. A prompt loaded from a file.
// 2. A prompt defined directly in the configuration.
// 3. A hardcoded default prompt.
// This helper function centralizes the decision logic, making it DRY and easy to maintain.
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}

// truncateInput limits a prompt input to at most max bytes, cutting at a rune
// boundary so multi-byte characters are never split.
func truncateInput(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	for len(cut) > 0 {
		r, size := utf8.DecodeLastRuneInString(cut)
		if r != utf8.RuneError || size != 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut
}

// formatJobContext renders the job context block, substituting a placeholder
// when no job description was supplied.
func formatJobContext(jobContext string) string {
	jobContext = strings.TrimSpace(jobContext)
	if jobContext == "" {
		return "No specific job provided"
	}
	return truncateInput(jobContext, maxJobContextChars)
}

// formatChatHistory renders previous conversation turns for inclusion in the
// ask prompt.
func formatChatHistory(history []types.ChatTurn) string {
	if len(history) == 0 {
		return "No previous conversation"
	}

	var sb strings.Builder
	for _, turn := range history {
		role := turn.Role
		if role == "" {
			role = "user"
		}
		fmt.Fprintf(&sb, "%s: %s\n", role, turn.Content)
	}
	return strings.TrimRight(sb.String(), "\n")
}
