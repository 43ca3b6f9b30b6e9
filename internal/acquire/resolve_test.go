// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdiddy/ontoextract/pkg/types"
)

func TestNormalizePMID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"bare", "35396543", "35396543", false},
		{"prefixed", "PMID:35396543", "35396543", false},
		{"lower with space", "pmid 123", "123", false},
		{"whitespace", "  42  ", "42", false},
		{"letters", "PMC12345", "", true},
		{"empty", "", "", true},
		{"too long", "1234567890", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePMID(tt.input)
			if tt.wantErr {
				if !errors.Is(err, types.ErrInvalidArgument) {
					t.Errorf("NormalizePMID(%q) error = %v, want ErrInvalidArgument", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizePMID(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizePMID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"https://example.org/recipe", false},
		{"http://example.org", false},
		{"ftp://example.org", true},
		{"example.org/page", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := NormalizeURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("NormalizeURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestResolveCandidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "urls.txt")
	content := "https://recipes.example/pancakes\nhttps://recipes.example/banana-bread\nhttps://recipes.example/bread-pudding\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		needle  string
		want    string
		wantErr bool
	}{
		{"exactly one", "pancakes", "https://recipes.example/pancakes", false},
		{"none", "lasagna", "", true},
		{"several", "bread", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveCandidate(path, tt.needle)
			if tt.wantErr {
				if !errors.Is(err, types.ErrInvalidArgument) {
					t.Errorf("ResolveCandidate(%q) error = %v, want ErrInvalidArgument", tt.needle, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveCandidate(%q): %v", tt.needle, err)
			}
			if got != tt.want {
				t.Errorf("ResolveCandidate(%q) = %q, want %q", tt.needle, got, tt.want)
			}
		})
	}
}
