package github

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pycontribs/tender/pkg/config"
)

func TestAuthManager_GetToken_Precedence(t *testing.T) {
	am := NewAuthManager()
	cfg := &config.Config{GitHub: config.GitHubConfig{Token: "config-token"}}

	t.Setenv("GITHUB_TOKEN", "env-token")
	t.Setenv("HOMEBREW_GITHUB_API_TOKEN", "homebrew-token")

	token, err := am.GetToken(cfg)
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)

	// HOMEBREW_GITHUB_API_TOKEN is honored when GITHUB_TOKEN is unset
	t.Setenv("GITHUB_TOKEN", "")
	token, err = am.GetToken(cfg)
	require.NoError(t, err)
	assert.Equal(t, "homebrew-token", token)

	// Config file token comes last
	t.Setenv("HOMEBREW_GITHUB_API_TOKEN", "")
	token, err = am.GetToken(cfg)
	require.NoError(t, err)
	assert.Equal(t, "config-token", token)
}

func TestAuthManager_GetToken_TrimsWhitespace(t *testing.T) {
	am := NewAuthManager()

	t.Setenv("GITHUB_TOKEN", "  padded-token\n")

	token, err := am.GetToken(nil)
	require.NoError(t, err)
	assert.Equal(t, "padded-token", token)
}

func TestAuthManager_GetToken_NoToken(t *testing.T) {
	am := NewAuthManager()

	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("HOMEBREW_GITHUB_API_TOKEN", "")

	_, err := am.GetToken(&config.Config{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no GitHub token found")
}

func TestAuthManager_Authenticate(t *testing.T) {
	am := NewAuthManager()

	err := am.Authenticate("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be empty")

	err = am.Authenticate("some-token")
	require.NoError(t, err)
	assert.NotNil(t, am.GetClient())
}

func TestAuthManager_ValidateToken_NotAuthenticated(t *testing.T) {
	am := NewAuthManager()

	_, err := am.ValidateToken(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not authenticated")
}

func TestGetAuthInstructions(t *testing.T) {
	instructions := GetAuthInstructions()

	assert.Contains(t, instructions, "GITHUB_TOKEN")
	assert.Contains(t, instructions, "~/.tender/config.yaml")
	assert.Contains(t, instructions, "repo")
}
