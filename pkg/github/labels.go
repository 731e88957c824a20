package github

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// LabelSet represents the desired set of labels for a repository,
// as defined in .github/labels.yml
type LabelSet struct {
	Labels []Label
}

var validColor = regexp.MustCompile(`^[0-9a-fA-F]{6}$`)

// NormalizeColor strips an optional leading '#' and lowercases a hex color
func NormalizeColor(color string) string {
	return strings.ToLower(strings.TrimPrefix(color, "#"))
}

// Validate validates the label set against GitHub constraints
func (s *LabelSet) Validate() error {
	var validationErrors ValidationErrors

	if len(s.Labels) == 0 {
		validationErrors.Add("labels", "", "at least one label must be defined")
	}

	seen := make(map[string]string)
	for i, label := range s.Labels {
		field := fmt.Sprintf("labels[%d]", i)

		if label.Name == "" {
			validationErrors.Add(field+".name", "", "label name is required")
		} else if len(label.Name) > 50 {
			validationErrors.Add(field+".name", label.Name, "label name must be 50 characters or less")
		}

		// GitHub treats label names case-insensitively
		key := strings.ToLower(label.Name)
		if first, dup := seen[key]; dup {
			validationErrors.Add(field+".name", label.Name, fmt.Sprintf("duplicate label name (already defined as %q)", first))
		} else {
			seen[key] = label.Name
		}

		if !validColor.MatchString(NormalizeColor(label.Color)) {
			validationErrors.Add(field+".color", label.Color, "label color must be a 6 character hex code")
		}

		if len(label.Description) > 100 {
			validationErrors.Add(field+".description", label.Description, "label description must be 100 characters or less")
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

// Find returns the configured label matching name, case-insensitively
func (s *LabelSet) Find(name string) *Label {
	for i := range s.Labels {
		if strings.EqualFold(s.Labels[i].Name, name) {
			return &s.Labels[i]
		}
	}
	return nil
}

// LoadLabelSet parses a label definition file. The format is a plain YAML
// list of {name, color, description} entries, matching github-labeler and
// release-drafter conventions.
func LoadLabelSet(data []byte) (*LabelSet, error) {
	var labels []Label
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	set := &LabelSet{Labels: labels}
	if err := set.Validate(); err != nil {
		return nil, fmt.Errorf("label configuration validation failed: %w", err)
	}

	return set, nil
}
