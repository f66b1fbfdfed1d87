package ai

import (
	"context"

	"resumelens/internal/types"
)

// AIProvider interface for different AI implementations
// All methods return token usage information - callers can ignore it if not needed
type AIProvider interface {
	AnalyzeResume(ctx context.Context, input types.AnalyzeResumeInput) (types.AnalyzeResumeOutput, *TokenUsage, error)
	AskQuestion(ctx context.Context, input types.AskQuestionInput) (types.AskQuestionOutput, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// PromptBuilder interface for building AI prompts
type PromptBuilder interface {
	BuildAnalyzePrompt(resumeText, jobContext string, analysisType types.AnalysisType) string
	BuildAskPrompt(resumeText, question string, history []types.ChatTurn) string
}
