package cmd

import (
	"testing"
)

func TestHyperlink(t *testing.T) {
	// Test runs never have a terminal on stdout, so the plain form is used
	got := hyperlink("https://github.com/pycontribs/tender/pull/1", "#1")
	want := "#1 (https://github.com/pycontribs/tender/pull/1)"
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestHyperlinkWithoutURL(t *testing.T) {
	if got := hyperlink("", "#1"); got != "#1" {
		t.Errorf("Expected bare text, got %q", got)
	}
}

func TestShortSHA(t *testing.T) {
	tests := []struct {
		sha  string
		want string
	}{
		{"0123456789abcdef0123456789abcdef01234567", "0123456"},
		{"0123456", "0123456"},
		{"abc", "abc"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := shortSHA(tt.sha); got != tt.want {
			t.Errorf("shortSHA(%q) = %q, want %q", tt.sha, got, tt.want)
		}
	}
}
