package document

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
)

// minReadableText is the threshold below which extracted text is treated as
// unreadable (e.g. a scanned PDF with no text layer).
const minReadableText = 50

// ExtractText pulls the text layer out of a PDF, page by page.
// Pages are separated by "[Page N]" markers so chunk provenance survives
// cleaning and splitting.
func ExtractText(ctx context.Context, r io.ReaderAt, size int64) (string, error) {
	loader := documentloaders.NewPDF(r, size)

	pages, err := loader.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	var b strings.Builder
	for i, page := range pages {
		text := strings.TrimSpace(page.PageContent)
		if text == "" {
			continue
		}
		fmt.Fprintf(&b, "\n[Page %d]\n%s\n", i+1, text)
	}

	text := b.String()
	if len(strings.TrimSpace(text)) < minReadableText {
		return "", ErrNoText
	}
	return text, nil
}

// CleanText normalizes extracted text: collapses runs of whitespace into
// single spaces and drops non-printable characters that PDF extraction
// sometimes leaks.
func CleanText(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := false
	for _, r := range text {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		case r < 0x20 || r == 0x7f:
			// Control characters: skip entirely.
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}

	return strings.TrimSpace(b.String())
}
