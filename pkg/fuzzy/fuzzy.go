// Package fuzzy provides interactive option selection for fix mode,
// with an fzf-backed finder and a plain numbered fallback.
package fuzzy

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Option represents a selectable option
type Option struct {
	Value       string
	Description string
}

// Finder is a simple numbered selector used when fzf is unavailable
type Finder struct {
	prompt  string
	options []Option
}

// New creates a new finder with the given prompt
func New(prompt string) *Finder {
	return &Finder{
		prompt:  prompt,
		options: make([]Option, 0),
	}
}

// AddOption adds an option to the finder
func (f *Finder) AddOption(value, description string) {
	f.options = append(f.options, Option{
		Value:       value,
		Description: description,
	})
}

// GetOptions returns all available options
func (f *Finder) GetOptions() []Option {
	return f.options
}

// SetPrompt updates the prompt message
func (f *Finder) SetPrompt(prompt string) {
	f.prompt = prompt
}

// Select displays options and lets the user pick one by number
func (f *Finder) Select() (string, error) {
	if len(f.options) == 0 {
		return "", fmt.Errorf("no options available")
	}

	fmt.Println(f.prompt)
	fmt.Println(strings.Repeat("-", len(f.prompt)))

	for i, option := range f.options {
		fmt.Printf("%d. %s", i+1, option.Value)
		if option.Description != "" {
			fmt.Printf(" - %s", option.Description)
		}
		fmt.Println()
	}

	fmt.Printf("\nSelect option (1-%d): ", len(f.options))

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	selection, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		return "", fmt.Errorf("invalid selection: %s", strings.TrimSpace(input))
	}

	if selection < 1 || selection > len(f.options) {
		return "", fmt.Errorf("selection out of range: %d", selection)
	}

	return f.options[selection-1].Value, nil
}

// SelectWithFilter provides selection with substring filtering
func (f *Finder) SelectWithFilter() (string, error) {
	if len(f.options) == 0 {
		return "", fmt.Errorf("no options available")
	}

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Println(f.prompt)
		fmt.Println("Type to filter options, or enter a number to select:")
		fmt.Println(strings.Repeat("-", 50))

		fmt.Print("Filter/Select: ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if selection, err := strconv.Atoi(input); err == nil {
			if selection >= 1 && selection <= len(f.options) {
				return f.options[selection-1].Value, nil
			}
			fmt.Printf("Selection %d is out of range (1-%d)\n\n", selection, len(f.options))
			continue
		}

		filtered := f.filterOptions(input)
		if len(filtered) == 0 {
			fmt.Printf("No options match filter: %s\n\n", input)
			continue
		}

		fmt.Printf("\nFiltered options (matching '%s'):\n", input)
		for i, option := range filtered {
			fmt.Printf("%d. %s", i+1, option.Value)
			if option.Description != "" {
				fmt.Printf(" - %s", option.Description)
			}
			fmt.Println()
		}

		if len(filtered) == 1 {
			fmt.Printf("\nAuto-selecting: %s\n", filtered[0].Value)
			return filtered[0].Value, nil
		}

		fmt.Printf("\nSelect from filtered options (1-%d), or press Enter to filter again: ", len(filtered))
		selectionInput, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read selection: %w", err)
		}

		selectionInput = strings.TrimSpace(selectionInput)
		if selectionInput == "" {
			fmt.Println()
			continue
		}

		selection, err := strconv.Atoi(selectionInput)
		if err != nil {
			fmt.Printf("Invalid selection: %s\n\n", selectionInput)
			continue
		}

		if selection < 1 || selection > len(filtered) {
			fmt.Printf("Selection %d is out of range (1-%d)\n\n", selection, len(filtered))
			continue
		}

		return filtered[selection-1].Value, nil
	}
}

// filterOptions returns the options whose value or description contains
// the filter string
func (f *Finder) filterOptions(filter string) []Option {
	filter = strings.ToLower(filter)
	var filtered []Option

	for _, option := range f.options {
		if strings.Contains(strings.ToLower(option.Value), filter) ||
			strings.Contains(strings.ToLower(option.Description), filter) {
			filtered = append(filtered, option)
		}
	}

	return filtered
}
