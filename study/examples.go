package study

import (
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed examples/*.yaml
var exampleFS embed.FS

// LoadExample reads a bundled example study by name.
func LoadExample(name string) (*Study, error) {
	data, err := exampleFS.ReadFile("examples/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("example %q not found (available: %s): %w",
			name, strings.Join(ListExamples(), ", "), err)
	}
	s, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("example %q: %w", name, err)
	}
	if s.Name == "" {
		s.Name = name
	}

	return s, nil
}

// ListExamples returns the names of all bundled example studies, sorted.
func ListExamples() []string {
	entries, _ := exampleFS.ReadDir("examples")
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
		}
	}
	sort.Strings(names)

	return names
}
