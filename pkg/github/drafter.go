package github

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultExcludeLabels are skipped in release notes when the drafter
// configuration does not define its own exclude list.
var DefaultExcludeLabels = []string{"skip-changelog"}

// Category maps a set of labels to a release notes section
type Category struct {
	Title  string   `yaml:"title"`
	Labels []string `yaml:"labels"`
}

// DrafterConfig represents the .github/release-drafter.yml configuration
type DrafterConfig struct {
	Categories    []Category `yaml:"categories"`
	ExcludeLabels []string   `yaml:"exclude-labels"`
}

// Validate validates the drafter configuration
func (c *DrafterConfig) Validate() error {
	var validationErrors ValidationErrors

	if len(c.Categories) == 0 {
		validationErrors.Add("categories", "", "at least one category is required")
	}

	titles := make(map[string]bool)
	for i, category := range c.Categories {
		field := fmt.Sprintf("categories[%d]", i)

		if category.Title == "" {
			validationErrors.Add(field+".title", "", "category title is required")
		} else if titles[category.Title] {
			validationErrors.Add(field+".title", category.Title, "duplicate category title")
		}
		titles[category.Title] = true

		if len(category.Labels) == 0 {
			validationErrors.Add(field+".labels", "", "category must map at least one label")
		}
	}

	if validationErrors.HasErrors() {
		return &GitHubError{
			Type:      ErrorTypeValidation,
			Message:   validationErrors.Error(),
			Cause:     validationErrors,
			Retryable: false,
		}
	}

	return nil
}

// SectionMap returns the label to section title mapping. When a label is
// listed under multiple categories the first category wins.
func (c *DrafterConfig) SectionMap() map[string]string {
	sections := make(map[string]string)
	for _, category := range c.Categories {
		for _, label := range category.Labels {
			if _, exists := sections[label]; !exists {
				sections[label] = category.Title
			}
		}
	}
	return sections
}

// RequiredLabels returns the labels a pull request must carry at least one
// of, in category declaration order
func (c *DrafterConfig) RequiredLabels() []string {
	var required []string
	seen := make(map[string]bool)
	for _, category := range c.Categories {
		for _, label := range category.Labels {
			if !seen[label] {
				seen[label] = true
				required = append(required, label)
			}
		}
	}
	return required
}

// Excluded returns the set of labels that exclude a pull request from
// release notes
func (c *DrafterConfig) Excluded() map[string]bool {
	labels := c.ExcludeLabels
	if labels == nil {
		labels = DefaultExcludeLabels
	}

	excluded := make(map[string]bool, len(labels))
	for _, label := range labels {
		excluded[label] = true
	}
	return excluded
}

// HasRequiredLabel reports whether the pull request carries at least one
// required label, and returns the first match in category order
func (c *DrafterConfig) HasRequiredLabel(pr *PullRequest) (string, bool) {
	for _, label := range c.RequiredLabels() {
		if pr.HasLabel(label) {
			return label, true
		}
	}
	return "", false
}

// LoadDrafterConfig parses a release-drafter configuration
func LoadDrafterConfig(data []byte) (*DrafterConfig, error) {
	var config DrafterConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("drafter configuration validation failed: %w", err)
	}

	return &config, nil
}

// DescribeCategories returns a short human-readable summary of the label to
// section mapping, used in debug output
func (c *DrafterConfig) DescribeCategories() string {
	var parts []string
	for _, category := range c.Categories {
		parts = append(parts, fmt.Sprintf("%s (%s)", category.Title, strings.Join(category.Labels, ", ")))
	}
	return strings.Join(parts, "; ")
}
