package cmd

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// shortSHA abbreviates a commit SHA to seven characters, leaving anything
// shorter untouched
func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// hyperlink renders text as an OSC 8 terminal hyperlink when stdout is a
// terminal, and falls back to "text (url)" otherwise
func hyperlink(url, text string) string {
	if url == "" {
		return text
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Sprintf("\x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\", url, text)
	}
	return fmt.Sprintf("%s (%s)", text, url)
}
