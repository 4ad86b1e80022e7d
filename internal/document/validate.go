// Package document pre-validates uploaded resume files before the
// gateway spends a round trip on the matcher service.
package document

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/yourusername/resumematch-web/internal/model"
)

// Validation failures carry user-facing sentences; handlers surface
// them verbatim with a 4xx status.
var (
	ErrUnsupportedType = fmt.Errorf("only PDF and DOCX files are supported")
	ErrCorruptFile     = fmt.Errorf("this file looks corrupted or is not what its extension claims")
	ErrNoText          = fmt.Errorf("very little text could be read from this file; it may be a scanned image")
)

var pdfMagic = []byte("%PDF")
var zipMagic = []byte("PK\x03\x04")

// Validate checks an uploaded resume: extension allowlist, size cap,
// magic bytes, and a readability probe through the same libraries the
// extraction side of the ecosystem uses.
func Validate(doc model.Document, maxBytes int64) error {
	if len(doc.Data) == 0 {
		return fmt.Errorf("the uploaded file is empty")
	}
	if maxBytes > 0 && int64(len(doc.Data)) > maxBytes {
		return fmt.Errorf("file too large; maximum size is %dMB", maxBytes/(1024*1024))
	}

	switch ext := strings.ToLower(filepath.Ext(doc.Filename)); ext {
	case ".pdf":
		return validatePDF(doc.Data)
	case ".docx":
		return validateDOCX(doc.Data)
	default:
		return ErrUnsupportedType
	}
}

func validatePDF(data []byte) error {
	if len(data) < 4 || !bytes.HasPrefix(data, pdfMagic) {
		return ErrCorruptFile
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ErrCorruptFile
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		// Enough to prove the document is text-based
		if len(strings.TrimSpace(sb.String())) >= 50 {
			return nil
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return ErrNoText
	}
	return nil
}

func validateDOCX(data []byte) error {
	if len(data) < 4 || !bytes.HasPrefix(data, zipMagic) {
		return ErrCorruptFile
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ErrCorruptFile
	}
	defer doc.Close()

	if strings.TrimSpace(doc.Editable().GetContent()) == "" {
		return ErrNoText
	}
	return nil
}
