package pdfextract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"gopherai-pdfqa/internal/rag"
)

// Extractor reads PDF files into one segment per page.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

// Extract returns the text of every page that has any, in page order.
// An empty file yields no segments and no error.
func (e *Extractor) Extract(ctx context.Context, path string) ([]rag.Segment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf failed: %w", err)
	}
	defer f.Close()
	return ExtractPages(ctx, f)
}

// ExtractPages reads the entire content of r and extracts plain text per page.
func ExtractPages(ctx context.Context, r io.Reader) (segments []rag.Segment, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf failed: %w", err)
	}
	if len(b) == 0 {
		return nil, nil
	}

	// the pdf reader panics on some malformed inputs
	defer func() {
		if p := recover(); p != nil {
			segments = nil
			err = fmt.Errorf("parse pdf failed: %v", p)
		}
	}()

	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, fmt.Errorf("parse pdf failed: %w", err)
	}

	total := pdfReader.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d failed: %w", i, err)
		}
		text = cleanText(text)
		if strings.TrimSpace(text) == "" {
			continue
		}
		segments = append(segments, rag.Segment{Text: text, Page: i})
	}
	return segments, nil
}

// cleanText drops byte sequences that are not valid UTF-8, which some fonts
// with custom encodings produce.
func cleanText(text string) string {
	return strings.ToValidUTF8(text, "")
}
