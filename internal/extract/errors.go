package extract

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyContent    = errors.New("no text content found in document")
	ErrConversion      = errors.New("document conversion failed")
)

// UnsupportedTypeError names the media type that no extractor handles.
type UnsupportedTypeError struct {
	MediaType string
}

func (e *UnsupportedTypeError) Error() string {
	return "unsupported mime type: " + e.MediaType
}

func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// ConversionError wraps a failure inside a PDF or Word reader.
type ConversionError struct {
	MediaType string
	Err       error
}

func (e *ConversionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("convert %s", e.MediaType)
	}
	return fmt.Sprintf("convert %s: %v", e.MediaType, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

func (e *ConversionError) Is(target error) bool {
	return target == ErrConversion
}

// UserMessage turns an extraction error into text suitable for an API client.
func UserMessage(err error) string {
	var unsupported *UnsupportedTypeError
	var conv *ConversionError
	switch {
	case errors.As(err, &unsupported):
		return "Unsupported file type. Please upload PDF, DOCX, DOC, or TXT files."
	case errors.Is(err, ErrEmptyContent):
		return "No text content could be found in the uploaded file."
	case errors.As(err, &conv):
		switch conv.MediaType {
		case MimePDF:
			detail := "unknown error"
			if conv.Err != nil {
				detail = conv.Err.Error()
			}
			return fmt.Sprintf("Could not extract text from PDF file: %s. Please try a DOCX file instead.", detail)
		case MimeDOC:
			return "Could not extract text from DOC file. Please save as DOCX or PDF format."
		default:
			return "Could not extract text from DOCX file. Please try a PDF file instead."
		}
	default:
		return "Could not extract text from the uploaded file."
	}
}
