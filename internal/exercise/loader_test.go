package exercise

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"exo.toml":     "name = 'Week'\ninstruction = 'Print the day'\n",
		"main.cpp":     "int main() { return 0; }\n",
		"main.sol.cpp": "int main() { puts(\"Le jour 3 est Mercredi\"); }\n",
		"days.h":       "#pragma once\n",
		".exo-state":   "done = false\n",
	})

	loaded, err := LoadDir(dir)
	require.NoError(t, err)

	assert.Equal(t, "Week", loaded.Exercise.Title())
	assert.Equal(t, "Print the day", loaded.Exercise.Instruction())
	assert.Contains(t, loaded.Exercise.Solution(), "Mercredi")
	assert.Equal(t, filepath.Join(dir, "main.sol.cpp"), loaded.SolutionFile)
	assert.Equal(t, []string{filepath.Join(dir, "days.h"), filepath.Join(dir, "main.cpp")}, loaded.Files)
	assert.Equal(t, filepath.Join(dir, "main.cpp"), loaded.MainFile())
	assert.Empty(t, loaded.Checks)
	assert.Equal(t, Progress{State: StateTodo}, loaded.Progress)
	assert.Empty(t, loaded.Warnings)
}

func TestLoadDirChecksAndProgress(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"exo.toml": `name = 'Week'

[[checks]]
name = 'Day 3'
args = ['3']
type = 'Output'

[[checks]]
name = 'Day 8'
args = ['8']
type = 'output'
`,
		"main.c":          "",
		"main.sol.c":      "solved",
		".exo-state.toml": "state = 'InProgress'\nfavorite = true\n",
	})

	loaded, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []Check{
		{Name: "Day 3", Args: []string{"3"}, Type: CheckOutput},
		{Name: "Day 8", Args: []string{"8"}, Type: CheckOutput},
	}, loaded.Checks)
	assert.Equal(t, Progress{State: StateInProgress, Favorite: true}, loaded.Progress)
	assert.Empty(t, loaded.Warnings)
	// The state file is not an exercise file.
	assert.Equal(t, []string{filepath.Join(dir, "main.c")}, loaded.Files)
}

func TestLoadDirYAMLChecks(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"exo.yaml": "name: Week\nchecks:\n  - name: Day 1\n    type: output\n",
		"main.c":   "",
		"a.sol.c":  "x",
	})

	loaded, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []Check{{Name: "Day 1", Type: CheckOutput}}, loaded.Checks)
}

func TestLoadDirBadStateFile(t *testing.T) {
	for name, content := range map[string]string{
		"not_toml":      "state = ",
		"unknown_state": "state = 'Abandoned'\nfavorite = true\n",
	} {
		t.Run(name, func(t *testing.T) {
			dir := writeFiles(t, map[string]string{
				"exo.toml":        "name = 'Week'",
				"main.c":          "",
				"main.sol.c":      "solved",
				".exo-state.toml": content,
			})

			loaded, err := LoadDir(dir)
			require.NoError(t, err)
			assert.Equal(t, Progress{State: StateTodo}, loaded.Progress)
			require.Len(t, loaded.Warnings, 1)
			assert.Equal(t, WarnBadState, loaded.Warnings[0].Code)
		})
	}
}

func TestLoadDirYAMLAndInlineSolution(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"exo.yaml": "name: Hello\nsolution: puts(\"Hello\");\n",
		"hello.c":  "",
	})

	loaded, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "Hello", loaded.Exercise.Title())
	assert.Equal(t, `puts("Hello");`, loaded.Exercise.Solution())
	assert.Empty(t, loaded.SolutionFile)
	assert.Equal(t, filepath.Join(dir, "hello.c"), loaded.MainFile())
	require.Len(t, loaded.Warnings, 1)
	assert.Equal(t, WarnInlineSolution, loaded.Warnings[0].Code)
}

func TestLoadDirMultipleSolutions(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"exo.toml": "name = 'Crash'",
		"main.c":   "",
		"b.sol.c":  "second",
		"a.sol.c":  "first",
	})

	loaded, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "first", loaded.Exercise.Solution())
	require.Len(t, loaded.Warnings, 1)
	assert.Equal(t, WarnMultipleSolutions, loaded.Warnings[0].Code)
	assert.Contains(t, loaded.Warnings[0].String(), "a.sol.c")
}

func TestLoadDirErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		code  string
	}{
		{"no_description", map[string]string{"main.c": ""}, plxerrors.CodeFileNotFound},
		{"no_exo_files", map[string]string{"exo.toml": "name = 'x'", "main.sol.c": "y"}, plxerrors.CodeNoExoFiles},
		{"no_solution", map[string]string{"exo.toml": "name = 'x'", "main.c": ""}, plxerrors.CodeNoSolution},
		{"bad_description", map[string]string{"exo.toml": "not toml", "main.c": ""}, plxerrors.CodeParseFailed},
		{"missing_name", map[string]string{"exo.toml": "instruction = 'x'", "main.c": "", "main.sol.c": "y"}, plxerrors.CodeInvalidInput},
		{"blank_solution_file", map[string]string{"exo.toml": "name = 'x'", "main.c": "", "main.sol.c": " \n"}, plxerrors.CodeNoSolution},
		{"unnamed_check", map[string]string{"exo.toml": "name = 'x'\n[[checks]]\ntype = 'output'\n", "main.c": "", "main.sol.c": "y"}, plxerrors.CodeParseFailed},
		{"unknown_check_type", map[string]string{"exo.toml": "name = 'x'\n[[checks]]\nname = 'c'\ntype = 'exit_code'\n", "main.c": "", "main.sol.c": "y"}, plxerrors.CodeParseFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDir(writeFiles(t, tt.files))
			require.Error(t, err)
			assert.Equal(t, tt.code, plxerrors.GetCode(err), "got %v", err)
		})
	}

	_, err := LoadDir(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, plxerrors.IsCode(err, plxerrors.CodeFileNotFound))

	file := filepath.Join(writeFiles(t, map[string]string{"f": ""}), "f")
	_, err = LoadDir(file)
	assert.True(t, plxerrors.IsCode(err, plxerrors.CodeInvalidInput))
}
