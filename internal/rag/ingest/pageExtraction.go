package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

type docType string

const (
	docTypePDF docType = "pdf"
	docTypeDoc docType = "doc"
	docTypeErr docType = "err"
)

func getDocType(docPath string) docType {
	switch strings.ToLower(filepath.Ext(docPath)) {
	case ".pdf":
		return docTypePDF
	case ".docx", ".odt", ".txt", ".rtf", ".md":
		return docTypeDoc
	default:
		return docTypeErr
	}
}

func extractText(path string, contentType docType) (string, error) {
	switch contentType {
	case docTypePDF:
		return extractPDF(path)
	case docTypeDoc:
		return cat.File(path)
	default:
		return "", fmt.Errorf("unsupported content type: %s", contentType)
	}
}

func extractPDF(path string) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var b strings.Builder
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			logger.Error("Error parsing pdf page", "page", i, "error", err)
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// protectExtract guards against the pdf library hanging on malformed pages.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("pdf page extraction timed out")
	}
}
