package transform

import "testing"

func TestSanitizeSlug(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello-world", "hello-world"},
		{"Hello World", "hello-world"},
		{"À propos & Contact", "a-propos-contact"},
		{"Über uns", "uber-uns"},
		{"crème brûlée!!", "creme-brulee"},
		{"--already--weird--", "already-weird"},
		{"page_with_underscores", "page-with-underscores"},
		{"2024 Roadmap", "2024-roadmap"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := SanitizeSlug(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeSlug(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsPathSafe(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"hello-world", true},
		{"a", true},
		{"a-propos-contact", true},
		{"", false},
		{"Hello-World", false},
		{"hello world", false},
		{"-leading", false},
		{"trailing-", false},
		{"double--hyphen", false},
		{"café", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := IsPathSafe(tt.input); got != tt.expected {
				t.Errorf("IsPathSafe(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}
