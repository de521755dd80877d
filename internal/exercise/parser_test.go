package exercise

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bebsworthy/plxdemo/internal/config"
	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
	"github.com/bebsworthy/plxdemo/internal/logging"
)

const (
	stubTitle    = "Hello world"
	stubSolution = `printf("Hello world\n");`
)

func newStub(t *testing.T) *StubParser {
	t.Helper()
	p, err := NewStubParser(stubTitle, stubSolution)
	require.NoError(t, err)
	return p
}

func TestStubParser(t *testing.T) {
	p := newStub(t)

	for _, raw := range []string{"anything", "name = 'x'", "{{{", "é"} {
		e, err := p.Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, stubTitle, e.Title())
		assert.Equal(t, stubSolution, e.Solution())
	}

	_, err := NewStubParser("", "x")
	assert.Error(t, err)
}

func TestParsersRejectEmptyInput(t *testing.T) {
	parsers := []Parser{
		newStub(t),
		NewTOMLParser(),
		NewYAMLParser(),
		&FallbackParser{Primary: NewTOMLParser(), Fallback: newStub(t)},
	}

	for _, p := range parsers {
		_, err := p.Parse("")
		assert.True(t, plxerrors.IsCode(err, plxerrors.CodeInvalidInput),
			"%s parser: %v", p.Name(), err)
	}
}

func TestParsersOnWhitespaceInput(t *testing.T) {
	fallback := &FallbackParser{Primary: NewTOMLParser(), Fallback: newStub(t)}

	for _, raw := range []string{" ", "   ", "\t", "\n", "\n\t"} {
		e, err := newStub(t).Parse(raw)
		require.NoError(t, err, "%q", raw)
		assert.Equal(t, stubTitle, e.Title())

		e, err = fallback.Parse(raw)
		require.NoError(t, err, "%q", raw)
		assert.Equal(t, stubTitle, e.Title())
		assert.Equal(t, stubSolution, e.Solution())

		// Whitespace is not a document, so strict parsers fail to parse it
		// rather than calling it invalid.
		for _, p := range []Parser{NewTOMLParser(), NewYAMLParser()} {
			_, err := p.Parse(raw)
			assert.True(t, plxerrors.IsCode(err, plxerrors.CodeParseFailed),
				"%s parser on %q: %v", p.Name(), raw, err)
		}
	}
}

func TestTOMLParser(t *testing.T) {
	p := NewTOMLParser()

	e, err := p.Parse(`
name = "Week days"
instruction = "Print the name of day n"
solution = "printf(\"Le jour %d est %s\\n\", n, name);"

[[checks]]
name = "day 3"
args = ["3"]
`)
	require.NoError(t, err)
	assert.Equal(t, "Week days", e.Title())
	assert.Equal(t, `printf("Le jour %d est %s\n", n, name);`, e.Solution())
	assert.Equal(t, "Print the name of day n", e.Instruction())

	e, err = p.Parse("title = 'Alias'\nsolution = 'x'")
	require.NoError(t, err)
	assert.Equal(t, "Alias", e.Title())
}

func TestDocumentParserFailures(t *testing.T) {
	tests := []struct {
		name   string
		parser Parser
		raw    string
	}{
		{"toml_not_a_document", NewTOMLParser(), "Hello world"},
		{"toml_missing_solution", NewTOMLParser(), "name = 'x'"},
		{"toml_missing_name", NewTOMLParser(), "solution = 'x'"},
		{"yaml_scalar", NewYAMLParser(), "Hello world"},
		{"yaml_missing_solution", NewYAMLParser(), "name: x"},
		{"yaml_broken", NewYAMLParser(), "name: [unterminated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := tt.parser.Parse(tt.raw)
			require.Error(t, err)
			assert.True(t, plxerrors.IsCode(err, plxerrors.CodeParseFailed), "got %v", err)
			assert.True(t, e.IsZero())
		})
	}
}

func TestYAMLParser(t *testing.T) {
	e, err := NewYAMLParser().Parse("name: Crash debug\nsolution: |\n  int *p = NULL;\n")
	require.NoError(t, err)
	assert.Equal(t, "Crash debug", e.Title())
	assert.Equal(t, "int *p = NULL;\n", e.Solution())
}

func TestFallbackParser(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewLoggerWithWriter(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
	require.NoError(t, err)

	p := &FallbackParser{Primary: NewTOMLParser(), Fallback: newStub(t), Logger: logger}
	assert.Equal(t, "toml+stub", p.Name())

	e, err := p.Parse("name = 'Real'\nsolution = 'ok'")
	require.NoError(t, err)
	assert.Equal(t, "Real", e.Title())
	assert.Empty(t, buf.String())

	e, err = p.Parse("Hello world")
	require.NoError(t, err)
	assert.Equal(t, stubTitle, e.Title())
	assert.Contains(t, buf.String(), "Primary parser failed")
}

// Every non-empty input yields a record with non-empty fields.
func TestDefaultParserNeverReturnsEmptyRecord(t *testing.T) {
	p, err := NewParser("toml", true, stubTitle, stubSolution, nil)
	require.NoError(t, err)

	inputs := []string{"x", "Hello world", "name = 'a'", "= =", "[[", "solution = 'y'", "\x00", " ", "\n\t"}
	for _, raw := range inputs {
		e, err := p.Parse(raw)
		require.NoError(t, err, raw)
		assert.NotEmpty(t, e.Title())
		assert.NotEmpty(t, e.Solution())
	}
}

func TestNewParser(t *testing.T) {
	tests := []struct {
		kind     string
		fallback bool
		name     string
		wantErr  bool
	}{
		{"stub", true, "stub", false},
		{"toml", false, "toml", false},
		{"toml", true, "toml+stub", false},
		{"yaml", true, "yaml+stub", false},
		{"json", false, "", true},
	}

	for _, tt := range tests {
		p, err := NewParser(tt.kind, tt.fallback, stubTitle, stubSolution, nil)
		if tt.wantErr {
			assert.True(t, plxerrors.IsCode(err, plxerrors.CodeInvalidInput))
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.name, p.Name())
	}
}
