package config

import (
	"strings"

	"github.com/google/go-cmp/cmp"

	"gopkg.in/yaml.v3"
)

// Diff renders a line diff between two configs for reload logging.
// Returns "" when they are identical.
func Diff(previous, current *Config) string {
	prev, err := yaml.Marshal(previous)
	if err != nil {
		return ""
	}
	curr, err := yaml.Marshal(current)
	if err != nil {
		return ""
	}
	return DiffSerialized(prev, curr)
}

// DiffSerialized returns a diff between two serialized config payloads.
func DiffSerialized(previous, current []byte) string {
	return cmp.Diff(splitLines(previous), splitLines(current))
}

func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return []string{""}
	}
	return strings.Split(text, "\n")
}
