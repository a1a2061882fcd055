package knowledge

import (
	"fmt"
	"strings"

	"rsc.io/pdf"
)

// PageError records a page whose text could not be extracted.
type PageError struct {
	Page int
	Err  error
}

func (e PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

// ExtractPDFText returns the text of every readable page of the PDF at
// path, one page per line group. Pages that fail to decode are skipped and
// reported in the returned slice; only failing to open the file is an
// error.
func ExtractPDFText(path string) (string, []PageError, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("open pdf: %w", err)
	}

	var (
		b       strings.Builder
		skipped []PageError
	)
	for i := 1; i <= doc.NumPage(); i++ {
		text, err := pageText(doc, i)
		if err != nil {
			skipped = append(skipped, PageError{Page: i, Err: err})
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), skipped, nil
}

// pageText extracts one page. The pdf package panics on malformed content
// streams, so panics are converted to errors.
func pageText(doc *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page: %v", r)
		}
	}()

	p := doc.Page(n)
	if p.V.IsNull() {
		return "", fmt.Errorf("page is null")
	}

	content := p.Content()
	var (
		b     strings.Builder
		lastY float64
	)
	for i, t := range content.Text {
		if i > 0 && t.Y != lastY {
			b.WriteString("\n")
		}
		b.WriteString(t.S)
		lastY = t.Y
	}
	return b.String(), nil
}
