package document

import (
	"regexp"
	"strings"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// SanitizeFilename strips path components and characters outside
// [a-zA-Z0-9._-] from a client-supplied filename.
func SanitizeFilename(filename string) (string, error) {
	// Drop any path prefix the client sent.
	if idx := strings.LastIndexAny(filename, `/\`); idx >= 0 {
		filename = filename[idx+1:]
	}

	cleaned := unsafeFilenameChars.ReplaceAllString(filename, "")
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return "", ErrEmptyFilename
	}
	return cleaned, nil
}

// ValidatePDFName checks that the sanitized filename has a .pdf extension.
func ValidatePDFName(filename string) error {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return ErrNotPDF
	}
	return nil
}

// ValidateSize checks the upload size against the configured limit.
func ValidateSize(size, maxSize int64) error {
	if maxSize > 0 && size > maxSize {
		return ErrTooLarge
	}
	return nil
}
