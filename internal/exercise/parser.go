package exercise

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
	"github.com/bebsworthy/plxdemo/internal/logging"
)

// Parser converts raw text into an Exercise.
//
// Implementations return an INVALID_INPUT error for empty input and never
// return a zero Exercise together with a nil error.
type Parser interface {
	Parse(raw string) (Exercise, error)
	Name() string
}

// checkInput rejects only the empty string. Whitespace is input like any
// other and still yields a record through the fallback.
func checkInput(raw string) error {
	if raw == "" {
		return plxerrors.InvalidInput("nothing to parse: input is empty")
	}
	return nil
}

// StubParser returns the same record for every valid input.
type StubParser struct {
	record Exercise
}

// NewStubParser creates a StubParser that always returns title and solution.
func NewStubParser(title, solution string) (*StubParser, error) {
	record, err := New(title, solution)
	if err != nil {
		return nil, err
	}
	return &StubParser{record: record}, nil
}

// Parse implements Parser.
func (p *StubParser) Parse(raw string) (Exercise, error) {
	if err := checkInput(raw); err != nil {
		return Exercise{}, err
	}
	return p.record, nil
}

// Name implements Parser.
func (p *StubParser) Name() string { return "stub" }

// document is the exercise description shared by exo.toml and exo.yaml.
// Unknown keys are accepted and dropped. Checks only matter to LoadDir.
type document struct {
	Name        string  `toml:"name" yaml:"name"`
	Title       string  `toml:"title" yaml:"title"`
	Instruction string  `toml:"instruction" yaml:"instruction"`
	Solution    string  `toml:"solution" yaml:"solution"`
	Checks      []Check `toml:"checks" yaml:"checks"`
}

func (d document) title() string {
	if strings.TrimSpace(d.Name) != "" {
		return d.Name
	}
	return d.Title
}

// Format selects the document encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

func decodeDocument(format Format, data []byte) (document, error) {
	var doc document
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		return doc, plxerrors.InvalidInput("unknown document format %q", format)
	}
	if err != nil {
		return doc, plxerrors.ParseError(plxerrors.CodeParseFailed,
			fmt.Sprintf("input is not a %s exercise document", format), err)
	}
	return doc, nil
}

// DocumentParser parses an exercise document with name, solution and an
// optional instruction.
type DocumentParser struct {
	format Format
}

// NewTOMLParser returns a parser for TOML exercise documents.
func NewTOMLParser() *DocumentParser {
	return &DocumentParser{format: FormatTOML}
}

// NewYAMLParser returns a parser for YAML exercise documents.
func NewYAMLParser() *DocumentParser {
	return &DocumentParser{format: FormatYAML}
}

// Parse implements Parser.
func (p *DocumentParser) Parse(raw string) (Exercise, error) {
	if err := checkInput(raw); err != nil {
		return Exercise{}, err
	}

	doc, err := decodeDocument(p.format, []byte(raw))
	if err != nil {
		return Exercise{}, err
	}

	record, err := New(doc.title(), doc.Solution)
	if err != nil {
		// A decodable document without the required fields is still a parse
		// failure, not bad user input.
		return Exercise{}, plxerrors.ParseError(plxerrors.CodeParseFailed,
			"exercise document needs both name and solution", err)
	}
	return record.WithInstruction(doc.Instruction), nil
}

// Name implements Parser.
func (p *DocumentParser) Name() string { return string(p.format) }

// FallbackParser tries Primary and falls back to Fallback when Primary cannot
// parse the input. Invalid input is reported as-is and never falls back.
type FallbackParser struct {
	Primary  Parser
	Fallback Parser
	Logger   *logging.Logger
}

// Parse implements Parser.
func (p *FallbackParser) Parse(raw string) (Exercise, error) {
	if err := checkInput(raw); err != nil {
		return Exercise{}, err
	}

	record, err := p.Primary.Parse(raw)
	if err == nil {
		return record, nil
	}
	if !plxerrors.IsCode(err, plxerrors.CodeParseFailed) {
		return Exercise{}, err
	}

	if p.Logger != nil {
		p.Logger.Warn("Primary parser failed, using fallback",
			slog.String("primary", p.Primary.Name()),
			slog.String("fallback", p.Fallback.Name()),
			slog.String("error", err.Error()),
		)
	}
	return p.Fallback.Parse(raw)
}

// Name implements Parser.
func (p *FallbackParser) Name() string {
	return p.Primary.Name() + "+" + p.Fallback.Name()
}

// NewParser builds the parser named by kind. With fallback set, document
// parsers fall back to a stub built from stubTitle and stubSolution.
func NewParser(kind string, fallback bool, stubTitle, stubSolution string, logger *logging.Logger) (Parser, error) {
	stub, err := NewStubParser(stubTitle, stubSolution)
	if err != nil {
		return nil, err
	}

	var primary Parser
	switch kind {
	case "stub":
		return stub, nil
	case "toml":
		primary = NewTOMLParser()
	case "yaml":
		primary = NewYAMLParser()
	default:
		return nil, plxerrors.InvalidInput("unknown parser kind %q", kind)
	}

	if !fallback {
		return primary, nil
	}
	return &FallbackParser{Primary: primary, Fallback: stub, Logger: logger}, nil
}
