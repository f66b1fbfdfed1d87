package ai

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"resumelens/internal/config"
	resumelensErrors "resumelens/internal/errors"
	"resumelens/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// defaultOpenAIBaseURL is used when no baseURL is configured. Any
// OpenAI-compatible endpoint works, e.g. Groq or a local gateway.
const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider implements AIProvider for OpenAI-compatible chat completion APIs
type OpenAIProvider struct {
	baseURL        string
	httpClient     *http.Client
	config         *config.OperationAIConfig
	circuitBreaker *AICircuitBreaker[*chatCompletionResponse]
	logger         *resumelensErrors.Logger
}

// Ensure OpenAIProvider implements AIProvider
var _ AIProvider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a new OpenAI-compatible provider instance for a specific operation
func NewOpenAIProvider(cfg *config.OperationAIConfig, operationType string, logger *resumelensErrors.Logger) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, resumelensErrors.NewConfigError(resumelensErrors.ErrCodeMissingAPIKey,
			"API key is required for the openai provider", nil)
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	// Initialize circuit breaker with operation-specific configuration
	circuitBreaker := NewAICircuitBreaker[*chatCompletionResponse](operationType, cfg, logger)

	return &OpenAIProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
		config:         cfg,
		circuitBreaker: circuitBreaker,
		logger:         logger,
	}, nil
}

// chatMessage is a single message in a chat completion request or response
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionRequest is the request body for /chat/completions
type chatCompletionRequest struct {
	Model          string              `json:"model"`
	Messages       []chatMessage       `json:"messages"`
	MaxTokens      int                 `json:"max_tokens,omitempty"`
	Temperature    *float32            `json:"temperature,omitempty"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

// chatResponseFormat selects plain text or JSON object output
type chatResponseFormat struct {
	Type string `json:"type"`
}

// chatCompletionResponse is the response body from /chat/completions
type chatCompletionResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage"`
}

// chatChoice is a single completion candidate
type chatChoice struct {
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// chatUsage reports token consumption for a completion
type chatUsage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// apiStatusError carries the HTTP status of a failed API call so retry logic
// can distinguish transient from permanent failures
type apiStatusError struct {
	StatusCode int
	Body       string
}

func (e *apiStatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.Body)
}

// GetModelInfo checks the readiness and availability of the configured model
func (o *OpenAIProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      o.config.Model,
		Available: false,
	}

	// Create a timeout context for the model check
	timeout := getAIModelCheckTimeout()
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet,
		o.baseURL+"/models/"+o.config.Model, nil)
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to build model check request: %v", err)
		return modelInfo
	}
	req.Header.Set("Authorization", "Bearer "+o.config.APIKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)

		// Log the error for debugging
		o.logger.Warn("Model availability check failed",
			"model", o.config.Model,
			"provider", o.config.Provider,
			"error", err.Error())
		return modelInfo
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		modelInfo.Error = fmt.Sprintf("Model check returned status %d", resp.StatusCode)
		o.logger.Warn("Model availability check failed",
			"model", o.config.Model,
			"provider", o.config.Provider,
			"status", resp.StatusCode)
		return modelInfo
	}

	modelInfo.Available = true

	// Log successful check
	o.logger.Debug("Model availability check successful",
		"model", o.config.Model,
		"provider", o.config.Provider)

	return modelInfo
}

// doChatCompletion performs a single chat completion request
func (o *OpenAIProvider) doChatCompletion(ctx context.Context, messages []chatMessage, jsonOutput bool) (*chatCompletionResponse, error) {
	request := chatCompletionRequest{
		Model:    o.config.Model,
		Messages: messages,
	}
	if o.config.MaxTokens != nil && *o.config.MaxTokens > 0 {
		request.MaxTokens = *o.config.MaxTokens
	}
	if *o.config.Temperature > 0 {
		request.Temperature = o.config.Temperature
	}
	if jsonOutput {
		request.ResponseFormat = &chatResponseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read chat completion response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apiStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, fmt.Errorf("failed to decode chat completion response: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	return &completion, nil
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (o *OpenAIProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*chatCompletionResponse, error)) (*chatCompletionResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= *o.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Log retry attempt
			o.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *o.config.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			// Use crypto/rand for secure random jitter
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			// Cap maximum backoff at 30 seconds
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				o.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !o.isRetryableError(err) {
			o.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	// Log final failure
	o.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *o.config.MaxRetries+1)

	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, *o.config.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func (o *OpenAIProvider) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Check for network errors (timeouts, connection issues)
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Check for API errors with retryable HTTP status codes
	var apiErr *apiStatusError
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// executeChatOperation runs a chat completion with common tracing, circuit breaker, and retry logic
func (o *OpenAIProvider) executeChatOperation(
	ctx context.Context,
	operationName string,
	systemPrompt string,
	userPrompt string,
	jsonOutput bool,
	spanAttributes ...attribute.KeyValue,
) (*chatCompletionResponse, *TokenUsage, error) {
	tracer := otel.Tracer("resumelens.ai.openai")
	ctx, span := tracer.Start(ctx, "openai."+operationName)
	defer span.End()

	// Set base attributes
	span.SetAttributes(
		attribute.String("ai.provider", "openai"),
		attribute.String("ai.model", o.config.Model),
		attribute.Float64("ai.temperature", float64(*o.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	messages := make([]chatMessage, 0, 2)
	if *o.config.UseSystemPrompts && systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})

	result, err := o.circuitBreaker.Execute(func() (*chatCompletionResponse, error) {
		return o.executeWithRetry(ctx, operationName, func() (*chatCompletionResponse, error) {
			return o.doChatCompletion(ctx, messages, jsonOutput)
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, nil, resumelensErrors.NewAIError(resumelensErrors.ErrCodeAIServiceFailed, "Failed to generate content for "+operationName, err)
	}

	tokenUsage := extractChatTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return result, tokenUsage, nil
}

// analyzeJSONInstruction is appended to the analyze prompt so JSON output mode
// produces the expected object shape.
const analyzeJSONInstruction = `

Respond with a JSON object containing:
- "content": the full analysis text
- "strengths": an array of identified strengths
- "weaknesses": an array of identified weaknesses`

// AnalyzeResume implements AIProvider interface for resume analysis
func (o *OpenAIProvider) AnalyzeResume(ctx context.Context, input types.AnalyzeResumeInput) (types.AnalyzeResumeOutput, *TokenUsage, error) {
	systemPrompt, userPrompt := buildAnalyzePrompts(o.config, input)

	result, tokenUsage, err := o.executeChatOperation(
		ctx,
		"analyze_resume",
		systemPrompt,
		userPrompt+analyzeJSONInstruction,
		true,
		attribute.String("input.analysis_type", string(input.AnalysisType)),
		attribute.Int("input.resume_length", len(input.ResumeText)),
		attribute.Int("input.job_context_length", len(input.JobContext)),
	)
	if err != nil {
		return types.AnalyzeResumeOutput{}, nil, err
	}

	var output types.AnalyzeResumeOutput
	if err := json.Unmarshal([]byte(result.Choices[0].Message.Content), &output); err != nil {
		return types.AnalyzeResumeOutput{}, nil, resumelensErrors.NewAIError("AI_RESPONSE_PARSE_FAILED",
			"Failed to parse AI response for analyze_resume", err)
	}

	output.AnalysisType = input.AnalysisType

	return output, tokenUsage, nil
}

// AskQuestion implements AIProvider interface for resume Q&A
func (o *OpenAIProvider) AskQuestion(ctx context.Context, input types.AskQuestionInput) (types.AskQuestionOutput, *TokenUsage, error) {
	systemPrompt, userPrompt := buildAskPrompts(o.config, input)

	result, tokenUsage, err := o.executeChatOperation(
		ctx,
		"ask_question",
		systemPrompt,
		userPrompt,
		false,
		attribute.Int("input.resume_length", len(input.ResumeText)),
		attribute.Int("input.question_length", len(input.Question)),
		attribute.Int("input.history_turns", len(input.History)),
	)
	if err != nil {
		return types.AskQuestionOutput{}, nil, err
	}

	answer := strings.TrimSpace(result.Choices[0].Message.Content)
	if answer == "" {
		return types.AskQuestionOutput{}, nil, resumelensErrors.NewAIError("AI_RESPONSE_PARSE_FAILED",
			"Received an empty answer for ask_question", nil)
	}

	return types.AskQuestionOutput{Answer: answer}, tokenUsage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (o *OpenAIProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations": o.circuitBreaker.GetStats(),
	}
	stats["overall_healthy"] = o.circuitBreaker.IsHealthy()
	return stats
}

// Close implements AIProvider interface
func (o *OpenAIProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

// extractChatTokenUsage extracts token usage information from a chat completion response
func extractChatTokenUsage(result *chatCompletionResponse) *TokenUsage {
	if result == nil || result.Usage == nil {
		return nil
	}

	return &TokenUsage{
		InputTokens:  result.Usage.PromptTokens,
		OutputTokens: result.Usage.CompletionTokens,
		TotalTokens:  result.Usage.TotalTokens,
	}
}
