package ai

import (
	"context"
	"fmt"

	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/types"
)

// Service handles AI operations for resume processing
type Service struct {
	Provider AIProvider // Exported for access from server package
	config   *config.OperationAIConfig
	logger   *errors.Logger
}

// NewService creates a new AI service instance with configuration for a specific operation
func NewService(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (*Service, error) {
	var provider AIProvider
	var err error

	// Debug logging for service initialization
	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries,
		"use_system_prompts", *cfg.UseSystemPrompts)

	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, operationType, logger)
	case "openai":
		provider, err = NewOpenAIProvider(cfg, operationType, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider: provider,
		config:   cfg,
		logger:   logger,
	}, nil
}

// AnalyzeResume runs a resume analysis, falling back to offline guidance when
// the AI backend is unavailable. Callers can detect the fallback through the
// Manual flag on the output.
func (s *Service) AnalyzeResume(ctx context.Context, input types.AnalyzeResumeInput) (types.AnalyzeResumeOutput, *TokenUsage, error) {
	output, tokenUsage, err := s.Provider.AnalyzeResume(ctx, input)
	if err != nil {
		if ctx.Err() != nil {
			return types.AnalyzeResumeOutput{}, nil, err
		}

		s.logger.Warn("Analysis failed, serving manual guidance",
			"analysis_type", string(input.AnalysisType),
			"error", err.Error())
		return ManualAnalysis(input.AnalysisType), nil, nil
	}

	return output, tokenUsage, nil
}

// AskQuestion answers a resume question, falling back to offline guidance
// when the AI backend is unavailable.
func (s *Service) AskQuestion(ctx context.Context, input types.AskQuestionInput) (types.AskQuestionOutput, *TokenUsage, error) {
	output, tokenUsage, err := s.Provider.AskQuestion(ctx, input)
	if err != nil {
		if ctx.Err() != nil {
			return types.AskQuestionOutput{}, nil, err
		}

		s.logger.Warn("Question answering failed, serving manual guidance",
			"error", err.Error())
		return ManualAnswer(), nil, nil
	}

	return output, tokenUsage, nil
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) any {
	return s.Provider.GetModelInfo(ctx)
}

// CircuitBreakerStatser is implemented by providers that expose breaker stats
type CircuitBreakerStatser interface {
	GetCircuitBreakerStats() map[string]any
}

// GetCircuitBreakerStats returns breaker statistics when the provider exposes them
func (s *Service) GetCircuitBreakerStats() map[string]any {
	if statser, ok := s.Provider.(CircuitBreakerStatser); ok {
		return statser.GetCircuitBreakerStats()
	}
	return map[string]any{"enabled": false}
}
