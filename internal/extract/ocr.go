package extract

import (
	"bytes"
	"context"
	"io"
	"sort"
	"sync"

	"resumelens/internal/errors"

	"github.com/otiai10/gosseract/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// OCREngine wraps gosseract with availability probing. The engine mirrors
// the text pipeline's primary route: page image assets out of the PDF, then
// Tesseract over each image in page order.
type OCREngine struct {
	language string
	logger   *errors.Logger

	probeOnce sync.Once
	available bool
}

// NewOCREngine creates a Tesseract-backed OCR engine for the given language
func NewOCREngine(language string, logger *errors.Logger) *OCREngine {
	if language == "" {
		language = "eng"
	}
	return &OCREngine{
		language: language,
		logger:   logger,
	}
}

// Available reports whether the Tesseract engine is usable with the
// configured language. Probed once and cached.
func (e *OCREngine) Available() bool {
	e.probeOnce.Do(func() {
		defer func() {
			// gosseract panics when the native library misbehaves
			if r := recover(); r != nil {
				e.logger.Warn("OCR availability probe panicked", "reason", r)
				e.available = false
			}
		}()

		client := gosseract.NewClient()
		defer func() { _ = client.Close() }()

		if err := client.SetLanguage(e.language); err != nil {
			e.logger.Warn("OCR engine unavailable",
				"language", e.language,
				"error", err.Error())
			e.available = false
			return
		}

		e.available = true
		e.logger.Debug("OCR engine available",
			"language", e.language,
			"tesseract_version", gosseract.Version())
	})
	return e.available
}

// pageImage is one image asset pulled out of the PDF, tagged with its page
type pageImage struct {
	PageNr int
	Data   []byte
}

// extractPageImages pulls raw image assets out of the PDF in page order.
// Scanned resumes carry one full-page image per page, which is exactly what
// the OCR pass needs.
func extractPageImages(data []byte, maxPages int) ([]pageImage, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	extracted, err := api.ExtractImagesRaw(bytes.NewReader(data), nil, conf)
	if err != nil {
		return nil, errors.NewExtractionError(errors.ErrCodeInvalidPDF,
			"Failed to extract page images", err)
	}

	var images []pageImage
	for _, pageMap := range extracted {
		for _, img := range pageMap {
			if maxPages > 0 && img.PageNr > maxPages {
				continue
			}
			raw, err := io.ReadAll(img)
			if err != nil {
				return nil, errors.NewExtractionError(errors.ErrCodeInvalidPDF,
					"Failed to read page image data", err)
			}
			images = append(images, pageImage{PageNr: img.PageNr, Data: raw})
		}
	}

	sort.Slice(images, func(i, j int) bool { return images[i].PageNr < images[j].PageNr })

	return images, nil
}

// RecognizePages runs OCR over the given page images and returns per-page
// text in order. A single client instance is reused across pages.
func (e *OCREngine) RecognizePages(ctx context.Context, images []pageImage) ([]string, error) {
	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(e.language); err != nil {
		return nil, errors.NewExtractionError(errors.ErrCodeOCRUnavailable,
			"Failed to configure OCR language", err)
	}
	// Single uniform block of text, same segmentation the original pipeline used
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, errors.NewExtractionError(errors.ErrCodeOCRUnavailable,
			"Failed to configure OCR segmentation mode", err)
	}

	texts := make([]string, 0, len(images))
	for _, img := range images {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := client.SetImageFromBytes(img.Data); err != nil {
			return nil, errors.NewExtractionError(errors.ErrCodeOCRUnavailable,
				"Failed to load page image into OCR engine", err)
		}
		text, err := client.Text()
		if err != nil {
			return nil, errors.NewExtractionError(errors.ErrCodeOCRUnavailable,
				"OCR recognition failed", err)
		}
		texts = append(texts, text)
	}

	return texts, nil
}
