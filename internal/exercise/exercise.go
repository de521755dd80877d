// Package exercise turns raw text into exercise records.
//
// An Exercise is immutable and always has a non-empty title and solution;
// the only way to build one is New. Parsing is behind the Parser interface
// so the placeholder StubParser and the document parsers are
// interchangeable, and FallbackParser chains them.
package exercise

import (
	"encoding/json"
	"fmt"
	"strings"

	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
)

// Exercise is a parsed exercise record.
type Exercise struct {
	title       string
	solution    string
	instruction string
}

// New builds an Exercise. Title and solution must contain non-space text.
func New(title, solution string) (Exercise, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Exercise{}, plxerrors.InvalidInput("exercise title is empty")
	}
	if strings.TrimSpace(solution) == "" {
		return Exercise{}, plxerrors.InvalidInput("exercise %q has an empty solution", title)
	}
	return Exercise{title: title, solution: solution}, nil
}

// WithInstruction returns a copy of e with the given instruction text.
func (e Exercise) WithInstruction(instruction string) Exercise {
	e.instruction = strings.TrimSpace(instruction)
	return e
}

// Title returns the exercise title.
func (e Exercise) Title() string { return e.title }

// Solution returns the solution text.
func (e Exercise) Solution() string { return e.solution }

// Instruction returns the optional exercise statement.
func (e Exercise) Instruction() string { return e.instruction }

// IsZero reports whether e was not built by New.
func (e Exercise) IsZero() bool { return e.title == "" }

// String renders the record the way the parse command reports it.
func (e Exercise) String() string {
	return fmt.Sprintf("title = '%s' and solution = '%s'", e.title, e.solution)
}

// MarshalJSON implements json.Marshaler.
func (e Exercise) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Title       string `json:"title"`
		Solution    string `json:"solution"`
		Instruction string `json:"instruction,omitempty"`
	}{e.title, e.solution, e.instruction})
}
