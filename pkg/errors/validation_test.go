package errors

import (
	"strings"
	"testing"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative file", "repos.csv", false},
		{"nested file", "data/catalog.json", false},
		{"absolute file", "/srv/catalog/repos.toml", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
		{"directory", "data/", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		schemes []string
		wantErr bool
	}{
		{"https", "https://api.github.com", nil, false},
		{"http", "http://localhost:8080", nil, false},
		{"mongodb", "mongodb://localhost:27017", []string{"mongodb", "mongodb+srv"}, false},
		{"mongodb srv", "mongodb+srv://cluster.example", []string{"mongodb", "mongodb+srv"}, false},

		{"empty", "", nil, true},
		{"ftp", "ftp://example.com", nil, true},
		{"no scheme", "api.github.com", nil, true},
		{"http for mongo", "http://localhost", []string{"mongodb"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url, tt.schemes...)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateChoice(t *testing.T) {
	if err := ValidateChoice("cache backend", "bolt", "file", "bolt", "redis"); err != nil {
		t.Errorf("ValidateChoice() error = %v", err)
	}
	err := ValidateChoice("cache backend", "sqlite", "file", "bolt", "redis")
	if !Is(err, ErrCodeInvalidConfig) {
		t.Fatalf("ValidateChoice() error = %v, want INVALID_CONFIG", err)
	}
	if !strings.Contains(err.Error(), "file, bolt, redis") {
		t.Errorf("message = %q", err.Error())
	}
}
