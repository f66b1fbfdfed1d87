package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"resumelens/internal/ai"
	resumelensErrors "resumelens/internal/errors"
	"resumelens/internal/observability"
	"resumelens/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createUploadHandler wraps the resume upload handler with observability
func (s *Server) createUploadHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.upload")
		defer span.End()

		if err := r.ParseMultipartForm(s.MaxRequestSize); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid upload", "multipart form with a 'resume' file is required", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("resume")
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume file", "resume file field is required", http.StatusBadRequest)
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				s.Logger.Warn("Failed to close uploaded file", "error", err)
			}
		}()

		if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
			err := fmt.Errorf("unsupported file type: %s", header.Filename)
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Unsupported file type", "only PDF resumes are accepted", http.StatusBadRequest)
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Failed to read resume file", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("request.file_name", header.Filename),
			attribute.Int("request.file_size", len(data)),
			attribute.String("operation", "upload"),
		)

		metrics := om.GetMetrics()
		start := time.Now()
		result, err := s.Extractor.ProcessPDF(ctx, data)
		metrics.RecordExtractionDuration(ctx, time.Since(start).Seconds(), om,
			attribute.String("method", string(result.Method)),
			attribute.Bool("success", err == nil))

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "extraction"))
			metrics.RecordBusinessMetric(ctx, "resume_processed", false, om,
				attribute.String("error", err.Error()))
			writeErrorResponse(w, "Failed to process resume", err.Error(), statusForError(err))
			return
		}

		created := s.Sessions.Create(header.Filename, result)

		metrics.RecordBusinessMetric(ctx, "resume_processed", true, om,
			attribute.String("method", string(result.Method)),
			attribute.Int("page_count", result.PageCount),
			attribute.Int("text_length", len(result.Text)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("session.id", created.ID),
			attribute.String("extraction.method", string(result.Method)),
			attribute.Int("extraction.page_count", result.PageCount),
		)

		writeJSONResponse(w, s.Logger, UploadResponse{
			SessionID: created.ID,
			FileName:  created.FileName,
			Method:    result.Method,
			PageCount: result.PageCount,
			WordCount: len(strings.Fields(result.Text)),
			CharCount: len(result.Text),
			Fields:    result.Fields,
			Previews:  encodePreviews(result.Previews),
		})
	}
}

// createAnalyzeHandler wraps the analyze handler with observability
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		analysisType := types.AnalysisType(req.AnalysisType)
		if req.AnalysisType == "" {
			analysisType = types.AnalysisQuickOverview
		}
		if !analysisType.Valid() {
			err := fmt.Errorf("unknown analysis type: %s", req.AnalysisType)
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Unknown analysis type", err.Error(), http.StatusBadRequest)
			return
		}

		sess, err := s.Sessions.Get(req.SessionID)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "session"))
			writeErrorResponse(w, "Session not found", err.Error(), statusForError(err))
			return
		}

		jobContext := sess.JobContext
		if strings.TrimSpace(req.JobDescription) != "" {
			jobContext = req.JobDescription
			if err := s.Sessions.SetJobContext(req.SessionID, jobContext); err != nil {
				span.RecordError(err)
				writeErrorResponse(w, "Session not found", err.Error(), statusForError(err))
				return
			}
		}

		span.SetAttributes(
			attribute.String("analysis.type", string(analysisType)),
			attribute.Int("request.resume_length", len(sess.ResumeText)),
			attribute.Int("request.job_length", len(jobContext)),
			attribute.String("operation", "analyze"),
		)

		analyzeConfig := s.AppConfig.GetAnalyzeConfig()
		aiService, err := ai.NewService(&analyzeConfig, "analyze", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		input := types.AnalyzeResumeInput{
			ResumeText:   sess.ResumeText,
			AnalysisType: analysisType,
			JobContext:   jobContext,
		}

		metrics := om.GetMetrics()
		var result types.AnalyzeResumeOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "analyze", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.AnalyzeResume(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resume_analyzed", false, om,
				attribute.String("analysis_type", string(analysisType)),
				attribute.String("error", err.Error()))
			writeErrorResponse(w, "Failed to analyze resume", err.Error(), http.StatusInternalServerError)
			return
		}

		if err := s.Sessions.SetAnalysis(req.SessionID, result); err != nil {
			s.Logger.Warn("Failed to store analysis on session",
				"session_id", req.SessionID, "error", err)
		}

		metrics.RecordBusinessMetric(ctx, "resume_analyzed", true, om,
			attribute.String("analysis_type", string(analysisType)),
			attribute.Bool("manual", result.Manual),
			attribute.Int("output.content_length", len(result.Content)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("manual", result.Manual),
			attribute.Int("response.content_length", len(result.Content)),
		)

		writeJSONResponse(w, s.Logger, result)
	}
}

// createAskHandler wraps the ask handler with observability
func (s *Server) createAskHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.ask")
		defer span.End()

		var req AskRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Question) == "" {
			err := fmt.Errorf("missing question")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing question", "question field is required", http.StatusBadRequest)
			return
		}

		sess, err := s.Sessions.Get(req.SessionID)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "session"))
			writeErrorResponse(w, "Session not found", err.Error(), statusForError(err))
			return
		}

		span.SetAttributes(
			attribute.Int("request.question_length", len(req.Question)),
			attribute.Int("request.history_turns", len(sess.ChatHistory)),
			attribute.String("operation", "ask"),
		)

		askConfig := s.AppConfig.GetAskConfig()
		aiService, err := ai.NewService(&askConfig, "ask", s.Logger)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "service_creation"))
			writeErrorResponse(w, "Failed to create AI service", err.Error(), http.StatusInternalServerError)
			return
		}

		input := types.AskQuestionInput{
			ResumeText: sess.ResumeText,
			Question:   req.Question,
			JobContext: sess.JobContext,
			History:    sess.ChatHistory,
		}

		metrics := om.GetMetrics()
		var result types.AskQuestionOutput
		err = metrics.TrackAIOperationWithTokens(ctx, "ask", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := aiService.AskQuestion(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "question_answered", false, om,
				attribute.String("error", err.Error()))
			writeErrorResponse(w, "Failed to answer question", err.Error(), http.StatusInternalServerError)
			return
		}

		if err := s.Sessions.AppendChat(req.SessionID, req.Question, result.Answer); err != nil {
			s.Logger.Warn("Failed to append chat turn to session",
				"session_id", req.SessionID, "error", err)
		}

		history := append(sess.ChatHistory,
			types.ChatTurn{Role: "user", Content: req.Question},
			types.ChatTurn{Role: "assistant", Content: result.Answer},
		)

		metrics.RecordBusinessMetric(ctx, "question_answered", true, om,
			attribute.Bool("manual", result.Manual),
			attribute.Int("output.answer_length", len(result.Answer)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("manual", result.Manual),
			attribute.Int("response.answer_length", len(result.Answer)),
		)

		writeJSONResponse(w, s.Logger, AskResponse{
			Answer:  result.Answer,
			Manual:  result.Manual,
			History: history,
		})
	}
}

// createExportHandler wraps the PDF export handler with observability
func (s *Server) createExportHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.export")
		defer span.End()

		var req ExportRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		sess, err := s.Sessions.Get(req.SessionID)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "session"))
			writeErrorResponse(w, "Session not found", err.Error(), statusForError(err))
			return
		}

		span.SetAttributes(
			attribute.Int("report.analysis_count", len(sess.Analyses)),
			attribute.String("operation", "export"),
		)

		reportData := types.ReportData{
			FileName: sess.FileName,
			Fields:   sess.Fields,
			Analyses: orderedAnalyses(sess.Analyses),
		}

		metrics := om.GetMetrics()
		pdfBytes, err := s.Reports.Render(reportData)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "report"))
			metrics.RecordBusinessMetric(ctx, "report_generated", false, om,
				attribute.String("error", err.Error()))
			writeErrorResponse(w, "Failed to generate report", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics.RecordBusinessMetric(ctx, "report_generated", true, om,
			attribute.Int("report.size_bytes", len(pdfBytes)),
			attribute.Int("report.analysis_count", len(sess.Analyses)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.size_bytes", len(pdfBytes)),
		)

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="resume_analysis_report.pdf"`)
		if _, err := w.Write(pdfBytes); err != nil {
			s.Logger.Warn("Failed to write report response", "error", err)
		}
	}
}

// orderedAnalyses returns session analyses in the canonical mode order
func orderedAnalyses(analyses map[types.AnalysisType]types.AnalyzeResumeOutput) []types.AnalyzeResumeOutput {
	ordered := make([]types.AnalyzeResumeOutput, 0, len(analyses))
	for _, analysisType := range types.AnalysisTypes {
		if analysis, ok := analyses[analysisType]; ok {
			ordered = append(ordered, analysis)
		}
	}
	return ordered
}

// encodePreviews base64-encodes preview page images for JSON transport
func encodePreviews(previews [][]byte) []string {
	if len(previews) == 0 {
		return nil
	}
	encoded := make([]string, 0, len(previews))
	for _, preview := range previews {
		encoded = append(encoded, base64.StdEncoding.EncodeToString(preview))
	}
	return encoded
}

// statusForError maps application error codes to HTTP status codes
func statusForError(err error) int {
	var appErr *resumelensErrors.AppError
	if !goerrors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case resumelensErrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case resumelensErrors.ErrCodeFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case resumelensErrors.ErrCodeInvalidPDF,
		resumelensErrors.ErrCodeInvalidRequest,
		resumelensErrors.ErrCodeInvalidFormat,
		resumelensErrors.ErrCodeNoTextExtracted:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// writeJSONResponse encodes v as the JSON response body
func writeJSONResponse(w http.ResponseWriter, logger *resumelensErrors.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
