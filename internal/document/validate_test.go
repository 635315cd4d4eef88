package document

import (
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"plain name", "report.pdf", "report.pdf", nil},
		{"spaces removed", "my report.pdf", "myreport.pdf", nil},
		{"unix path stripped", "/tmp/uploads/report.pdf", "report.pdf", nil},
		{"windows path stripped", `C:\Users\me\report.pdf`, "report.pdf", nil},
		{"traversal stripped", "../../etc/passwd", "passwd", nil},
		{"unicode removed", "resumé.pdf", "resum.pdf", nil},
		{"allowed punctuation kept", "q3_report-final.v2.pdf", "q3_report-final.v2.pdf", nil},
		{"leading dots trimmed", "...hidden.pdf", "hidden.pdf", nil},
		{"empty", "", "", ErrEmptyFilename},
		{"only unsafe chars", "???***", "", ErrEmptyFilename},
		{"only dots", "....", "", ErrEmptyFilename},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := SanitizeFilename(tt.input)
			if err != tt.wantErr {
				t.Fatalf("SanitizeFilename(%q) error = %v, want %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidatePDFName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		wantErr  error
	}{
		{"lowercase extension", "report.pdf", nil},
		{"uppercase extension", "REPORT.PDF", nil},
		{"mixed case", "Report.Pdf", nil},
		{"text file", "notes.txt", ErrNotPDF},
		{"no extension", "report", ErrNotPDF},
		{"pdf in middle", "report.pdf.exe", ErrNotPDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := ValidatePDFName(tt.filename); err != tt.wantErr {
				t.Errorf("ValidatePDFName(%q) = %v, want %v", tt.filename, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		size    int64
		maxSize int64
		wantErr error
	}{
		{"under limit", 100, 1000, nil},
		{"at limit", 1000, 1000, nil},
		{"over limit", 1001, 1000, ErrTooLarge},
		{"zero max disables check", 1 << 40, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if err := ValidateSize(tt.size, tt.maxSize); err != tt.wantErr {
				t.Errorf("ValidateSize(%d, %d) = %v, want %v", tt.size, tt.maxSize, err, tt.wantErr)
			}
		})
	}
}
