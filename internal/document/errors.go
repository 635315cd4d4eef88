package document

import "errors"

var (
	// ErrNoText indicates the PDF contained no readable text. Scanned PDFs
	// without a text layer fall into this category.
	ErrNoText = errors.New("no readable text found in document")

	// ErrNotPDF indicates the file is not a PDF.
	ErrNotPDF = errors.New("only PDF files are supported")

	// ErrTooLarge indicates the upload exceeds the configured size limit.
	ErrTooLarge = errors.New("file exceeds maximum upload size")

	// ErrEmptyFilename indicates the filename was empty after sanitization.
	ErrEmptyFilename = errors.New("filename is empty or invalid")
)
