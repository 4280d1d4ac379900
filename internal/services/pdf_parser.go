package services

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	resumeMaxPages = 6
	resumeMaxRunes = 24000
)

// PDFParserService reads resume text. Only the first pages are read and the
// text is capped so the screening prompt stays bounded.
type PDFParserService interface {
	ExtractText(filePath string) (string, error)
}

type pdfParserService struct {
	maxPages int
	maxRunes int
}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{maxPages: resumeMaxPages, maxRunes: resumeMaxRunes}
}

func (p *pdfParserService) ExtractText(filePath string) (string, error) {
	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("failed to stat resume: %w", err)
	}

	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("%w: not a readable PDF", ErrInvalidResumeFile)
	}
	defer f.Close()

	pages := min(reader.NumPage(), p.maxPages)

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		sb.WriteString(content)
		sb.WriteString("\n")
	}

	text := CleanText(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: resume has no extractable text", ErrInvalidResumeFile)
	}

	if runes := []rune(text); len(runes) > p.maxRunes {
		text = string(runes[:p.maxRunes])
	}

	return text, nil
}

// CleanText drops blank lines and trims the rest.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	cleaned := lines[:0]

	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
