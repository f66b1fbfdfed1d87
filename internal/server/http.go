package server

import (
	"time"

	"resumelens/internal/config"
	resumelensErrors "resumelens/internal/errors"
	"resumelens/internal/extract"
	"resumelens/internal/report"
	"resumelens/internal/session"
	"resumelens/internal/types"
)

// UploadResponse summarizes a processed resume upload
type UploadResponse struct {
	SessionID string                 `json:"sessionId"`
	FileName  string                 `json:"fileName"`
	Method    types.ExtractionMethod `json:"method"`
	PageCount int                    `json:"pageCount"`
	WordCount int                    `json:"wordCount"`
	CharCount int                    `json:"charCount"`
	Fields    types.ResumeFields     `json:"fields"`
	Previews  []string               `json:"previews,omitempty"` // base64-encoded page images
}

// AnalyzeRequest is the request body for the analyze endpoint
type AnalyzeRequest struct {
	SessionID      string `json:"sessionId"`
	AnalysisType   string `json:"analysisType"`
	JobDescription string `json:"jobDescription,omitempty"`
}

// AskRequest is the request body for the ask endpoint
type AskRequest struct {
	SessionID string `json:"sessionId"`
	Question  string `json:"question"`
}

// AskResponse carries the assistant answer plus the updated chat history
type AskResponse struct {
	Answer  string           `json:"answer"`
	Manual  bool             `json:"manual"`
	History []types.ChatTurn `json:"history"`
}

// ExportRequest is the request body for the export endpoint
type ExportRequest struct {
	SessionID string `json:"sessionId"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration and services for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Domain services
	Extractor *extract.Service
	Sessions  *session.Store
	Reports   *report.Generator

	// Hot reload of custom prompt files
	PromptWatcher *config.PromptWatcher

	// Logger
	Logger *resumelensErrors.Logger
}

// NewServer creates a new Server instance from the application configuration
func NewServer(appCfg *config.Config, version string, logger *resumelensErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range appCfg.Server.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if appCfg.Server.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			appCfg.Server.RateLimit.RequestsPerMin,
			appCfg.Server.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           appCfg.Server.Host,
		Port:           appCfg.Server.Port,
		Version:        version,
		AppConfig:      appCfg,
		APIKeys:        apiKeyMap,
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxRequestSize: appCfg.App.MaxFileSize,
		RateLimit:      &appCfg.Server.RateLimit,
		RateLimiter:    rateLimiter,
		Extractor:      extract.NewService(appCfg, logger),
		Sessions:       session.NewStore(appCfg.Session, logger),
		Reports:        report.NewGenerator(logger),
		PromptWatcher:  config.NewPromptWatcher(appCfg, 0, logger),
		Logger:         logger,
	}
}
