package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// A separation template file holds the system instruction, a delimiter line,
// and the user message with a transcript placeholder:
//
//	<system instruction>
//	---
//	<user message containing {{TRANSCRIPTION}}>
const (
	Delimiter   = "\n---\n"
	Placeholder = "{{TRANSCRIPTION}}"
)

var (
	ErrMissingDelimiter   = errors.New("template missing --- delimiter between system and user sections")
	ErrEmptySection       = errors.New("template system or user section is empty")
	ErrMissingPlaceholder = errors.New("template user section missing " + Placeholder + " placeholder")
)

// Template is a loaded separation prompt.
type Template struct {
	System string
	User   string
}

// Load reads and validates a separation prompt template file.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	return Parse(string(data))
}

// Parse splits raw template text into its system and user sections.
func Parse(raw string) (*Template, error) {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	idx := strings.Index(raw, Delimiter)
	if idx < 0 {
		return nil, ErrMissingDelimiter
	}

	system := strings.TrimSpace(raw[:idx])
	user := strings.TrimSpace(raw[idx+len(Delimiter):])
	if system == "" || user == "" {
		return nil, ErrEmptySection
	}
	if !strings.Contains(user, Placeholder) {
		return nil, ErrMissingPlaceholder
	}

	return &Template{System: system, User: user}, nil
}

// UserMessage substitutes the transcript into the user section.
func (t *Template) UserMessage(transcription string) string {
	return strings.ReplaceAll(t.User, Placeholder, transcription)
}
