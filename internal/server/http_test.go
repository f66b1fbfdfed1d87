package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLogger = errors.NewLogger(slog.LevelError)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Host = "localhost"
	cfg.Server.Port = "8080"
	cfg.App.MaxFileSize = 1024 * 1024
	cfg.Session.TTL = 30 * time.Minute
	cfg.Session.MaxSessions = 10
	cfg.Session.MaxChatTurns = 10

	return NewServer(cfg, "test", testLogger)
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t)
	srv.APIKeys = map[string]bool{"valid-key-12345": true}

	handler := srv.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("MissingKey", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodPost, "/api/upload", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("InvalidKey", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
		req.Header.Set("X-API-Key", "wrong-key")
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ValidHeaderKey", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
		req.Header.Set("X-API-Key", "valid-key-12345")
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ValidBearerToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/upload", nil)
		req.Header.Set("Authorization", "Bearer valid-key-12345")
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("NoKeysConfiguredSkipsAuth", func(t *testing.T) {
		open := newTestServer(t)
		openHandler := open.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		rec := httptest.NewRecorder()
		openHandler(rec, httptest.NewRequest(http.MethodPost, "/api/upload", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	srv := newTestServer(t)
	srv.RateLimit = &config.RateLimitConfig{
		Enabled:        true,
		RequestsPerMin: 60,
		BurstCapacity:  2,
		ByIP:           true,
	}
	srv.RateLimiter = NewRateLimiter(60, 2, testLogger)
	defer srv.RateLimiter.Close()

	handler := srv.rateLimitMiddleware()(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/ask", nil)
	req.RemoteAddr = "10.0.0.1:5000"

	// Burst capacity allows the first two requests, the third is rejected
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimiterKeyedIndependently(t *testing.T) {
	limiter := NewRateLimiter(60, 1, testLogger)
	defer limiter.Close()

	assert.True(t, limiter.Allow("ip:10.0.0.1"))
	assert.False(t, limiter.Allow("ip:10.0.0.1"))
	assert.True(t, limiter.Allow("ip:10.0.0.2"))
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{
			name:       "RemoteAddrOnly",
			remoteAddr: "192.168.1.10:8332",
			expected:   "192.168.1.10",
		},
		{
			name:       "XForwardedFor",
			remoteAddr: "10.0.0.1:1000",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"},
			expected:   "203.0.113.5",
		},
		{
			name:       "XRealIP",
			remoteAddr: "10.0.0.1:1000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			expected:   "198.51.100.7",
		},
		{
			name:       "InvalidForwardedForFallsThrough",
			remoteAddr: "10.0.0.1:1000",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			expected:   "10.0.0.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"SessionNotFound", errors.NewValidationError(errors.ErrCodeSessionNotFound, "gone", nil), http.StatusNotFound},
		{"FileTooLarge", errors.NewValidationError(errors.ErrCodeFileTooLarge, "too big", nil), http.StatusRequestEntityTooLarge},
		{"InvalidPDF", errors.NewExtractionError(errors.ErrCodeInvalidPDF, "corrupt", nil), http.StatusBadRequest},
		{"InternalError", errors.NewInternalError(errors.ErrCodeReportFailed, "boom", nil), http.StatusInternalServerError},
		{"PlainError", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusForError(tt.err))
		})
	}
}

func TestParseJSONRequestContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantErr     bool
	}{
		{"Exact", "application/json", false},
		{"WithCharset", "application/json; charset=utf-8", false},
		{"Text", "text/plain", true},
		{"Missing", "", true},
		{"Malformed", "application/json; charset", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(`{"question":"hi"}`))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			var payload struct {
				Question string `json:"question"`
			}
			err := parseJSONRequest(req, &payload)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "hi", payload.Question)
			}
		})
	}
}

func TestSessionHandlerNotFound(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/session/unknown-id", nil)
	req.SetPathValue("id", "unknown-id")
	rec := httptest.NewRecorder()

	srv.sessionHandler(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionHandlerReturnsSnapshot(t *testing.T) {
	srv := newTestServer(t)

	created := srv.Sessions.Create("resume.pdf", types.ExtractionResult{
		Text:      "Jane Doe",
		PageCount: 1,
		Method:    types.ExtractionMethodTextLayer,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/session/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	rec := httptest.NewRecorder()

	srv.sessionHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.ID)
	assert.Contains(t, rec.Body.String(), "resume.pdf")
}

func TestOrderedAnalyses(t *testing.T) {
	analyses := map[types.AnalysisType]types.AnalyzeResumeOutput{
		types.AnalysisJobMatch:      {AnalysisType: types.AnalysisJobMatch},
		types.AnalysisQuickOverview: {AnalysisType: types.AnalysisQuickOverview},
	}

	ordered := orderedAnalyses(analyses)

	require.Len(t, ordered, 2)
	assert.Equal(t, types.AnalysisQuickOverview, ordered[0].AnalysisType)
	assert.Equal(t, types.AnalysisJobMatch, ordered[1].AnalysisType)
}

func TestEncodePreviews(t *testing.T) {
	assert.Nil(t, encodePreviews(nil))

	encoded := encodePreviews([][]byte{[]byte("img1"), []byte("img2")})
	require.Len(t, encoded, 2)
	assert.Equal(t, "aW1nMQ==", encoded[0])
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "12345678****", maskAPIKey("1234567890abcdef"))
}
