package extract

import (
	"bytes"
	"context"
	goerrors "errors"
	"log/slog"
	"testing"

	"resumelens/internal/config"
	"resumelens/internal/errors"
)

var testLogger = errors.NewLogger(slog.LevelError)

func newTestService(maxFileSize int64) *Service {
	cfg := &config.Config{
		Extract: config.ExtractConfig{
			OCR:          config.OCRConfig{Enabled: false},
			PreviewPages: 2,
		},
		App: config.AppConfig{MaxFileSize: maxFileSize},
	}
	return NewService(cfg, testLogger)
}

func TestProcessPDFRejectsInvalidInput(t *testing.T) {
	svc := newTestService(1024)

	tests := []struct {
		name     string
		data     []byte
		wantCode string
	}{
		{
			name:     "empty upload",
			data:     nil,
			wantCode: errors.ErrCodeInvalidRequest,
		},
		{
			name:     "oversized upload",
			data:     bytes.Repeat([]byte("a"), 2048),
			wantCode: errors.ErrCodeFileTooLarge,
		},
		{
			name:     "not a pdf",
			data:     []byte("plain text pretending to be a resume"),
			wantCode: errors.ErrCodeInvalidPDF,
		},
		{
			name:     "corrupt pdf header",
			data:     []byte("%PDF-1.7\ngarbage that is not a pdf body"),
			wantCode: errors.ErrCodeInvalidPDF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ProcessPDF(context.Background(), tt.data)
			if err == nil {
				t.Fatal("Expected error for invalid input")
			}

			var appErr *errors.AppError
			if !goerrors.As(err, &appErr) {
				t.Fatalf("Expected AppError, got %T: %v", err, err)
			}
			if appErr.Code != tt.wantCode {
				t.Errorf("Expected error code %s, got %s", tt.wantCode, appErr.Code)
			}
		})
	}
}

func TestJoinPages(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  string
	}{
		{name: "no pages", pages: nil, want: ""},
		{name: "single page", pages: []string{"hello"}, want: "hello"},
		{name: "two pages", pages: []string{"page one", "page two"}, want: "page one\n\npage two"},
		{name: "empty pages trimmed", pages: []string{"", "content", ""}, want: "content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := joinPages(tt.pages); got != tt.want {
				t.Errorf("joinPages(%q) = %q, want %q", tt.pages, got, tt.want)
			}
		})
	}
}

func TestCollectPreviews(t *testing.T) {
	images := []pageImage{
		{PageNr: 1, Data: []byte("p1")},
		{PageNr: 1, Data: []byte("p1-second-asset")},
		{PageNr: 2, Data: []byte("p2")},
		{PageNr: 3, Data: []byte("p3")},
	}

	previews := collectPreviews(images, 2)
	if len(previews) != 2 {
		t.Fatalf("Expected 2 previews, got %d", len(previews))
	}
	if string(previews[0]) != "p1" || string(previews[1]) != "p2" {
		t.Errorf("Unexpected preview contents: %q, %q", previews[0], previews[1])
	}

	if got := collectPreviews(images, 0); got != nil {
		t.Errorf("Expected no previews when disabled, got %d", len(got))
	}
}
