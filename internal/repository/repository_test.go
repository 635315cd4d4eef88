package repository

import (
	"errors"
	"testing"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"pg error code", errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`), true},
		{"unique keyword", errors.New("unique constraint violated"), true},
		{"unrelated error", errors.New("connection refused"), false},
		{"not found", errors.New("no rows in result set"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestContains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		s      string
		substr string
		want   bool
	}{
		{"found", "error 23505 occurred", "23505", true},
		{"at start", "23505: dup", "23505", true},
		{"at end", "code 23505", "23505", true},
		{"not found", "error 23503", "23505", false},
		{"empty substr", "anything", "", true},
		{"substr longer than s", "ab", "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := contains(tt.s, tt.substr); got != tt.want {
				t.Errorf("contains(%q, %q) = %v, want %v", tt.s, tt.substr, got, tt.want)
			}
		})
	}
}

func TestConvertToMigrateURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"postgres scheme", "postgres://u:p@localhost:5432/db", "pgx5://u:p@localhost:5432/db", false},
		{"postgresql scheme", "postgresql://u:p@localhost:5432/db", "pgx5://u:p@localhost:5432/db", false},
		{"uppercase scheme", "POSTGRES://u:p@localhost:5432/db", "pgx5://u:p@localhost:5432/db", false},
		{"mysql scheme", "mysql://u:p@localhost:3306/db", "", true},
		{"no scheme", "localhost:5432/db", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := convertToMigrateURL(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("convertToMigrateURL(%q) should fail", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("convertToMigrateURL(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("convertToMigrateURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
