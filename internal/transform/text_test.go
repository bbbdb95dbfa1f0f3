package transform

import "testing"

func TestDecodeEntities(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"ampersand", "Fish &amp; Chips", "Fish & Chips"},
		{"numeric", "It&#8217;s fine", "It’s fine"},
		{"accented", "&Agrave; propos", "À propos"},
		{"plain", "no entities here", "no entities here"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeEntities(tt.input); got != tt.expected {
				t.Errorf("DecodeEntities(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

// Decoding an already-decoded string must be a no-op.
func TestDecodeEntitiesIdempotent(t *testing.T) {
	inputs := []string{
		"Fish &amp; Chips",
		"It&#8217;s fine",
		"plain title",
	}
	for _, input := range inputs {
		once := DecodeEntities(input)
		twice := DecodeEntities(once)
		if once != twice {
			t.Errorf("double decode of %q changed %q to %q", input, once, twice)
		}
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"paragraph", "<p>Hello   <b>world</b></p>", "Hello world"},
		{"nested", "<div><span>a</span>\n<span>b</span></div>", "a b"},
		{"no tags", "plain", "plain"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripTags(tt.input); got != tt.expected {
				t.Errorf("StripTags(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short enough", "hello world", 20, "hello world"},
		{"cut at word", "one two three four", 9, "one two"},
		{"exact fit", "one two", 7, "one two"},
		{"no space before cut", "abcdefghij", 5, "abcde"},
		{"empty", "", 10, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.max)
			if got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, expected %q", tt.input, tt.max, got, tt.expected)
			}
			if len([]rune(got)) > tt.max {
				t.Errorf("Truncate(%q, %d) = %q exceeds limit", tt.input, tt.max, got)
			}
		})
	}
}
