package extract

import (
	"bytes"
	"context"
	"strings"

	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/types"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Service runs the resume extraction pipeline: PDF validation, OCR or
// text-layer text extraction, field heuristics, and page previews.
type Service struct {
	cfg         config.ExtractConfig
	maxFileSize int64
	ocr         *OCREngine
	logger      *errors.Logger
}

// NewService creates an extraction service from application configuration
func NewService(cfg *config.Config, logger *errors.Logger) *Service {
	return &Service{
		cfg:         cfg.Extract,
		maxFileSize: cfg.App.MaxFileSize,
		ocr:         NewOCREngine(cfg.Extract.OCR.Language, logger),
		logger:      logger,
	}
}

// OCRAvailable reports whether the OCR route can be used
func (s *Service) OCRAvailable() bool {
	return s.cfg.OCR.Enabled && s.ocr.Available()
}

// ProcessPDF runs the full extraction pipeline over raw PDF bytes.
// Empty extracted text is a degraded result with empty fields, not an error.
func (s *Service) ProcessPDF(ctx context.Context, data []byte) (types.ExtractionResult, error) {
	tracer := otel.Tracer("resumelens.extract")
	ctx, span := tracer.Start(ctx, "extract.process_pdf")
	defer span.End()

	span.SetAttributes(attribute.Int("input.size_bytes", len(data)))

	if err := s.validatePDF(data); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return types.ExtractionResult{}, err
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pageCount, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return types.ExtractionResult{}, errors.NewExtractionError(errors.ErrCodeInvalidPDF,
			"Failed to determine page count", err)
	}
	if s.cfg.MaxPages > 0 && pageCount > s.cfg.MaxPages {
		s.logger.Warn("PDF exceeds page limit, truncating extraction",
			"pages", pageCount,
			"max_pages", s.cfg.MaxPages)
		pageCount = s.cfg.MaxPages
	}

	result := types.ExtractionResult{
		PageCount: pageCount,
	}

	var images []pageImage
	if s.OCRAvailable() {
		images, err = extractPageImages(data, s.cfg.MaxPages)
		if err != nil {
			s.logger.Warn("Page image extraction failed, falling back to text layer",
				"error", err.Error())
		}
	}

	if len(images) > 0 {
		pageTexts, ocrErr := s.runOCRRoute(ctx, images, pageCount)
		if ocrErr != nil {
			s.logger.Warn("OCR route failed, falling back to text layer",
				"error", ocrErr.Error())
		} else {
			result.PageTexts = pageTexts
			result.Method = types.ExtractionMethodOCR
		}
	}

	if result.Method == "" {
		pageTexts, layerErr := extractTextLayer(data, s.cfg.MaxPages)
		if layerErr != nil {
			span.RecordError(layerErr)
			span.SetAttributes(attribute.Bool("success", false))
			return types.ExtractionResult{}, layerErr
		}
		result.PageTexts = pageTexts
		result.Method = types.ExtractionMethodTextLayer
	}

	result.Text = joinPages(result.PageTexts)
	result.Fields = ParseFields(result.Text)
	result.Previews = collectPreviews(images, s.cfg.PreviewPages)

	if strings.TrimSpace(result.Text) == "" {
		s.logger.Warn("No text extracted from PDF",
			"pages", pageCount,
			"method", string(result.Method))
	}

	span.SetAttributes(
		attribute.Int("output.page_count", result.PageCount),
		attribute.String("output.method", string(result.Method)),
		attribute.Int("output.text_length", len(result.Text)),
		attribute.Bool("success", true),
	)

	return result, nil
}

// validatePDF checks size limits and structural validity of the upload
func (s *Service) validatePDF(data []byte) error {
	if len(data) == 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"Uploaded file is empty", nil)
	}
	if s.maxFileSize > 0 && int64(len(data)) > s.maxFileSize {
		return errors.NewValidationError(errors.ErrCodeFileTooLarge,
			"Uploaded file exceeds the size limit", nil)
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.Validate(bytes.NewReader(data), conf); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidPDF,
			"Uploaded file is not a readable PDF", err)
	}

	return nil
}

// runOCRRoute recognizes the page images and folds multiple image assets on
// the same page into a single page text.
func (s *Service) runOCRRoute(ctx context.Context, images []pageImage, pageCount int) ([]string, error) {
	texts, err := s.ocr.RecognizePages(ctx, images)
	if err != nil {
		return nil, err
	}

	byPage := make(map[int][]string, pageCount)
	for i, img := range images {
		text := strings.TrimSpace(texts[i])
		if text != "" {
			byPage[img.PageNr] = append(byPage[img.PageNr], text)
		}
	}

	pageTexts := make([]string, pageCount)
	for nr, parts := range byPage {
		if nr >= 1 && nr <= pageCount {
			pageTexts[nr-1] = strings.Join(parts, "\n")
		}
	}

	return pageTexts, nil
}

// joinPages concatenates page texts with blank lines between pages
func joinPages(pageTexts []string) string {
	return strings.TrimSpace(strings.Join(pageTexts, "\n\n"))
}

// collectPreviews returns the image bytes for the first preview pages
func collectPreviews(images []pageImage, previewPages int) [][]byte {
	if previewPages <= 0 {
		return nil
	}

	var previews [][]byte
	seen := make(map[int]bool, previewPages)
	for _, img := range images {
		if img.PageNr > previewPages || seen[img.PageNr] {
			continue
		}
		seen[img.PageNr] = true
		previews = append(previews, img.Data)
	}
	return previews
}
