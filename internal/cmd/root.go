package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pycontribs/tender/pkg/config"
	"github.com/pycontribs/tender/pkg/github"
)

var (
	debugFlag bool
	fixFlag   bool
	orgFlag   string
	repoFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "tender",
	Short: "Keep GitHub labels in sync and draft release notes from merged pull requests",
	Long: `Tender is a command-line tool for repository maintainers. It reconciles
repository labels with the declarative definition in .github/labels.yml,
audits pull requests for required category labels, and drafts release notes
from pull requests merged since the last release tag, grouped into sections
by the categories in .github/release-drafter.yml.

The target repository is taken from the --org/--repo flags, or detected from
the origin remote of the current git checkout. Without a subcommand tender
generates release notes, which makes it usable as a self-checking pre-commit
hook.`,
	SilenceUsage: true,
	RunE:         runDraft,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVarP(&fixFlag, "fix", "f", false, "Fix problems instead of only reporting them")
	rootCmd.PersistentFlags().StringVarP(&orgFlag, "org", "o", "", "GitHub organization or user (detected from git remote if omitted)")
	rootCmd.PersistentFlags().StringVarP(&repoFlag, "repo", "r", "", "GitHub repository name (detected from git remote if omitted)")

	rootCmd.AddCommand(labelsCmd)
	rootCmd.AddCommand(pullsCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(versionCmd)
}

// appContext bundles everything a subcommand needs to talk to GitHub
type appContext struct {
	cfg    *config.Config
	client github.APIClient
	owner  string
	repo   string
	loader *github.SourceLoader
}

// newAppContext resolves the target repository, authenticates against
// GitHub and prepares the configuration loader
func newAppContext(cmd *cobra.Command) (*appContext, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load tender config: %w", err)
	}

	owner, repo := orgFlag, repoFlag
	if owner == "" && cfg.GitHub.Organization != "" {
		owner = cfg.GitHub.Organization
	}
	if owner == "" || repo == "" {
		remote, err := config.DetectRemote(".")
		if err != nil {
			return nil, fmt.Errorf("repository not specified and detection failed: %w (use --org and --repo)", err)
		}
		if owner == "" {
			owner = remote.Owner
		}
		if repo == "" {
			repo = remote.Repo
		}
		debugf("Detected %s/%s from git remote", owner, repo)
	}

	authManager := github.NewAuthManager()
	tokenInfo, err := authManager.AuthenticateFromConfig(cmd.Context(), cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Authentication failed: %v\n\n", err)
		fmt.Fprintf(os.Stderr, "%s\n", github.GetAuthInstructions())
		return nil, err
	}

	debugf("Authenticated as %s", tokenInfo.User)

	token, err := authManager.GetToken(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get GitHub token: %w", err)
	}

	return &appContext{
		cfg:    cfg,
		client: github.NewClient(token),
		owner:  owner,
		repo:   repo,
		loader: github.NewSourceLoader(owner),
	}, nil
}

// loadDrafterConfig loads and parses .github/release-drafter.yml using the
// local/meta-repository fallback chain
func (a *appContext) loadDrafterConfig() (*github.DrafterConfig, error) {
	data, location, err := a.loader.Load(".github/release-drafter.yml")
	if err != nil {
		return nil, fmt.Errorf("failed to load release drafter config: %w", err)
	}
	debugf("Loaded %s", location)

	return github.LoadDrafterConfig(data)
}

// loadLabelSet loads and parses .github/labels.yml using the
// local/meta-repository fallback chain
func (a *appContext) loadLabelSet() (*github.LabelSet, error) {
	data, location, err := a.loader.Load(".github/labels.yml")
	if err != nil {
		return nil, fmt.Errorf("failed to load label config: %w", err)
	}
	debugf("Loaded %s", location)

	return github.LoadLabelSet(data)
}

// debugf prints a debug line to stderr when --debug is set
func debugf(format string, args ...any) {
	if debugFlag {
		fmt.Fprintf(os.Stderr, "DEBUG    "+format+"\n", args...)
	}
}
