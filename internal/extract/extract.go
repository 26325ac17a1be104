package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
)

const (
	MimePDF   = "application/pdf"
	MimeDOCX  = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDOC   = "application/msword"
	MimePlain = "text/plain"

	mimeZip = "application/zip"
)

// Result is the payload returned to clients of the extract-text endpoint.
type Result struct {
	Text     string `json:"text"`
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
}

// ExtractTextFromBytes converts an in-memory document to trimmed plain text.
// The type is taken from mimeType alone; fileName is informational.
// Libraries used: github.com/ledongthuc/pdf (PDF) and github.com/nguyenthenguyen/docx (DOCX, DOC).
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	normalized := NormalizeMimeType(mimeType, data)
	if !supported(normalized) {
		return "", &UnsupportedTypeError{MediaType: normalized}
	}
	if len(data) == 0 {
		return "", ErrEmptyContent
	}

	var (
		text string
		err  error
	)
	switch normalized {
	case MimePlain:
		text = strings.ToValidUTF8(string(data), "�")
	case MimePDF:
		text, err = extractPDF(data)
	case MimeDOCX, MimeDOC:
		text, err = extractDOCX(data)
	}
	if err != nil {
		return "", &ConversionError{MediaType: normalized, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyContent
	}
	return text, nil
}

// NormalizeMimeType strips parameters and lower-cases the declared type.
// A declared zip whose archive holds word/document.xml is treated as DOCX.
// Any other type is returned as declared; the file name is never consulted.
func NormalizeMimeType(mimeType string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	if clean == mimeZip {
		if mapped := mapOOXMLFromZip(data); mapped != "" {
			return mapped
		}
	}
	return clean
}

func supported(mimeType string) bool {
	switch mimeType {
	case MimePlain, MimePDF, MimeDOCX, MimeDOC:
		return true
	}
	return false
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return MimeDOCX
		}
	}
	return ""
}
