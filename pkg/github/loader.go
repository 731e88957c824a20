package github

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SourceLoader resolves repository configuration files (labels.yml,
// release-drafter.yml) from the working tree, falling back to the
// organization's shared meta repository and finally the pycontribs one.
type SourceLoader struct {
	// Org is the repository owner, used to build the meta repository URL
	Org string

	// HTTPClient is used for remote fallbacks. Defaults to a client with a
	// 30 second timeout.
	HTTPClient *http.Client
}

// NewSourceLoader creates a loader for the given organization
func NewSourceLoader(org string) *SourceLoader {
	return &SourceLoader{
		Org:        org,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Locations returns the candidate locations for path in resolution order,
// with duplicates removed
func (l *SourceLoader) Locations(path string) []string {
	candidates := []string{
		expandUser(path),
		fmt.Sprintf("https://raw.githubusercontent.com/%s/meta/master/%s", l.Org, path),
		fmt.Sprintf("https://raw.githubusercontent.com/pycontribs/meta/master/%s", path),
	}

	seen := make(map[string]bool)
	var unique []string
	for _, candidate := range candidates {
		if !seen[candidate] {
			seen[candidate] = true
			unique = append(unique, candidate)
		}
	}
	return unique
}

// Load reads the first available candidate for path and returns its content
// together with the location it was loaded from
func (l *SourceLoader) Load(path string) ([]byte, string, error) {
	for _, location := range l.Locations(path) {
		var data []byte
		var err error

		if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
			data, err = l.fetch(location)
		} else {
			data, err = os.ReadFile(location)
		}

		if err != nil {
			continue
		}
		return data, location, nil
	}

	return nil, "", fmt.Errorf("unable to load %s from any location (tried %s)",
		path, strings.Join(l.Locations(path), ", "))
}

// fetch retrieves a remote candidate, treating non-200 responses as misses
func (l *SourceLoader) fetch(url string) ([]byte, error) {
	client := l.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

// expandUser expands a leading ~ to the user's home directory
func expandUser(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
