package extract

import (
	"bytes"
	"strings"

	"resumelens/internal/errors"

	"github.com/ledongthuc/pdf"
)

// extractTextLayer reads the embedded text layer page by page. This is the
// fallback route for born-digital PDFs when OCR is disabled or fails.
func extractTextLayer(data []byte, maxPages int) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.NewExtractionError(errors.ErrCodeInvalidPDF,
			"Failed to open PDF for text extraction", err)
	}

	pageCount := reader.NumPage()
	if maxPages > 0 && pageCount > maxPages {
		pageCount = maxPages
	}

	texts := make([]string, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Unreadable pages degrade to empty text instead of failing the run
			texts = append(texts, "")
			continue
		}
		texts = append(texts, strings.TrimSpace(text))
	}

	return texts, nil
}
