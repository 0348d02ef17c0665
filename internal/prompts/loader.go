// Package prompts holds the model prompts. Each embedded JSON file maps a
// prompt key to its template text.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"sync"
)

//go:embed *.json
var files embed.FS

// Set is the parsed contents of one prompt file
type Set struct {
	name    string
	prompts map[string]string
}

var loaded sync.Map // filename -> *Set

// Load parses an embedded prompt file. Results are memoized per file.
func Load(filename string) (*Set, error) {
	if s, ok := loaded.Load(filename); ok {
		return s.(*Set), nil
	}

	data, err := files.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}

	var prompts map[string]string
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	s, _ := loaded.LoadOrStore(filename, &Set{name: filename, prompts: prompts})
	return s.(*Set), nil
}

// NewSet builds a Set from in-memory templates
func NewSet(name string, prompts map[string]string) *Set {
	return &Set{name: name, prompts: prompts}
}

// MustLoad is Load for files that ship with the binary
func MustLoad(filename string) *Set {
	s, err := Load(filename)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompts: %v", err))
	}
	return s
}

// Get returns the raw template for key
func (s *Set) Get(key string) (string, error) {
	prompt, ok := s.prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, s.name)
	}
	return prompt, nil
}

// Render returns the template for key with its {{.Name}} placeholders filled from vars
func (s *Set) Render(key string, vars map[string]string) (string, error) {
	prompt, err := s.Get(key)
	if err != nil {
		return "", err
	}
	return Format(prompt, vars), nil
}

// Keys lists the prompt keys in sorted order
func (s *Set) Keys() []string {
	keys := make([]string, 0, len(s.prompts))
	for k := range s.prompts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Format replaces {{.Name}} placeholders. Unknown placeholders are left as is
// so resume text containing braces passes through untouched.
func Format(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{{."+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}
