package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/ini.v1"
)

// Remote identifies a GitHub repository parsed from a git remote URL
type Remote struct {
	Owner string
	Repo  string
}

// String returns the owner/repo form
func (r Remote) String() string {
	return r.Owner + "/" + r.Repo
}

// scp-like syntax, e.g. git@github.com:owner/repo.git
var scpRemotePattern = regexp.MustCompile(`^(?:[\w.-]+@)?([\w.-]+):(.+)$`)

// DetectRemote reads the origin remote URL from the repository's .git/config
// and parses it. dir is the repository root.
func DetectRemote(dir string) (*Remote, error) {
	configPath := filepath.Join(dir, ".git", "config")

	cfg, err := ini.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	section := cfg.Section(`remote "origin"`)
	url := section.Key("url").String()
	if url == "" {
		return nil, fmt.Errorf("no origin remote found in %s", configPath)
	}

	remote, err := ParseRemoteURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse origin remote %q: %w", url, err)
	}

	return remote, nil
}

// ParseRemoteURL parses a git remote URL in https, ssh or scp-like form
// into its owner and repository components
func ParseRemoteURL(url string) (*Remote, error) {
	path := ""

	switch {
	case strings.HasPrefix(url, "https://"), strings.HasPrefix(url, "http://"),
		strings.HasPrefix(url, "ssh://"), strings.HasPrefix(url, "git://"):
		trimmed := url[strings.Index(url, "://")+3:]
		// Drop user@ prefix for ssh URLs
		if at := strings.Index(trimmed, "@"); at >= 0 && at < strings.Index(trimmed+"/", "/") {
			trimmed = trimmed[at+1:]
		}
		slash := strings.Index(trimmed, "/")
		if slash < 0 {
			return nil, fmt.Errorf("remote URL has no path")
		}
		path = trimmed[slash+1:]
	default:
		matches := scpRemotePattern.FindStringSubmatch(url)
		if matches == nil {
			return nil, fmt.Errorf("unrecognized remote URL format")
		}
		path = matches[2]
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("expected owner/repo path, got %q", path)
	}

	return &Remote{Owner: parts[0], Repo: parts[1]}, nil
}
