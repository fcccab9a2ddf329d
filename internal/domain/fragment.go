package domain

import (
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// FragmentDefinition mirrors one file under the fragments directory.
type FragmentDefinition struct {
	Name        string              `yaml:"name"`
	Description string              `yaml:"description,omitempty"`
	Wrappers    []WrapperDefinition `yaml:"wrappers"`

	// Source is the file the definition was read from.
	Source string `yaml:"-"`
}

// WrapperDefinition declares a convenience function around an external tool.
type WrapperDefinition struct {
	Name        string   `yaml:"name"`
	Command     string   `yaml:"command"`
	Args        string   `yaml:"args,omitempty"`
	Description string   `yaml:"description,omitempty"`
	Aliases     []string `yaml:"aliases,omitempty"`
}

// Wrapper is a registered, ready-to-invoke wrapper function.
type Wrapper struct {
	Name        string
	Fragment    string
	Command     string
	Args        []string
	Aliases     []string
	Description string
}

// FragmentState is the load flag of one fragment.
type FragmentState struct {
	Name     string
	Loaded   bool
	LoadedAt time.Time
}

// LoadReport summarizes one pass of fragment loading.
type LoadReport struct {
	Loaded    []string
	Skipped   []string
	Disabled  []string
	Redefined []string
}

// FragmentNameFromFile derives a fragment name from its file name:
// "10-git.yaml" becomes "git".
func FragmentNameFromFile(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	trimmed := strings.TrimLeftFunc(base, unicode.IsDigit)
	if trimmed != base {
		trimmed = strings.TrimLeft(trimmed, "-_.")
	}
	if trimmed == "" {
		return base
	}
	return trimmed
}
