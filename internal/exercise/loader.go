package exercise

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
)

// Description file names, in lookup order.
var descriptionFiles = []struct {
	name   string
	format Format
}{
	{"exo.toml", FormatTOML},
	{"exo.yaml", FormatYAML},
	{"exo.yml", FormatYAML},
}

// solutionMarker identifies solution files such as main.sol.c.
const solutionMarker = ".sol."

// Warning codes reported by LoadDir.
const (
	WarnMultipleSolutions = "MULTIPLE_SOLUTIONS"
	WarnInlineSolution    = "INLINE_SOLUTION"
)

// Warning is a non-fatal problem found while loading an exercise directory.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	return w.Code + ": " + w.Message
}

// Dir is an exercise loaded from a directory.
type Dir struct {
	Path            string
	Exercise        Exercise
	DescriptionFile string
	// Files lists the exercise source files, sorted, without the solution.
	Files []string
	// SolutionFile is empty when the solution came from the description.
	SolutionFile string
	Checks       []Check
	Progress     Progress
	Warnings     []Warning
}

// MainFile returns the source file whose stem is "main", or the first file.
func (d *Dir) MainFile() string {
	for _, f := range d.Files {
		if strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)) == "main" {
			return f
		}
	}
	if len(d.Files) == 0 {
		return ""
	}
	return d.Files[0]
}

// LoadDir reads an exercise directory: a description file (exo.toml or
// exo.yaml) with at least a name, one or more source files, and a solution
// either in a "*.sol.*" file or in the description's solution key.
//
// When several solution files exist the first in lexical order wins and a
// warning is recorded. A blank solution file counts as no solution.
func LoadDir(dir string) (*Dir, error) {
	descPath, format, err := findDescription(dir)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(descPath)
	if err != nil {
		return nil, plxerrors.FileError(plxerrors.CodeFileNotFound,
			"cannot read exercise description", err).WithDetails("path", descPath)
	}
	doc, err := decodeDocument(format, data)
	if err != nil {
		return nil, plxerrors.WrapError(err, descPath)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, plxerrors.FileError(plxerrors.CodeFileNotFound,
			"cannot list exercise directory", err).WithDetails("path", dir)
	}

	checks, err := normalizeChecks(doc.Checks)
	if err != nil {
		return nil, plxerrors.WrapError(err, descPath)
	}

	result := &Dir{Path: dir, DescriptionFile: descPath, Checks: checks}
	progress, warning := loadProgress(dir)
	result.Progress = progress
	if warning != nil {
		result.Warnings = append(result.Warnings, *warning)
	}

	var solutions []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || strings.HasPrefix(name, ".") || isDescription(name) {
			continue
		}
		path := filepath.Join(dir, name)
		if strings.Contains(name, solutionMarker) {
			solutions = append(solutions, path)
			continue
		}
		result.Files = append(result.Files, path)
	}
	sort.Strings(result.Files)
	sort.Strings(solutions)

	if len(result.Files) == 0 {
		return nil, plxerrors.FileError(plxerrors.CodeNoExoFiles,
			"no exercise source files found", nil).WithDetails("path", dir)
	}

	solution := doc.Solution
	switch {
	case len(solutions) > 0:
		result.SolutionFile = solutions[0]
		content, err := os.ReadFile(result.SolutionFile)
		if err != nil {
			return nil, plxerrors.FileError(plxerrors.CodeFileNotFound,
				"cannot read solution file", err).WithDetails("path", result.SolutionFile)
		}
		solution = string(content)
		if strings.TrimSpace(solution) == "" {
			return nil, plxerrors.FileError(plxerrors.CodeNoSolution,
				"solution file is empty", nil).WithDetails("path", result.SolutionFile)
		}
		if len(solutions) > 1 {
			result.Warnings = append(result.Warnings, Warning{
				Code: WarnMultipleSolutions,
				Message: fmt.Sprintf("found %d solution files, using %s",
					len(solutions), filepath.Base(result.SolutionFile)),
			})
		}
	case strings.TrimSpace(solution) != "":
		result.Warnings = append(result.Warnings, Warning{
			Code:    WarnInlineSolution,
			Message: "no solution file, using the description's solution key",
		})
	default:
		return nil, plxerrors.FileError(plxerrors.CodeNoSolution,
			"no solution file and no solution key in the description", nil).
			WithDetails("path", dir)
	}

	record, err := New(doc.title(), solution)
	if err != nil {
		return nil, plxerrors.WrapError(err, descPath)
	}
	result.Exercise = record.WithInstruction(doc.Instruction)

	return result, nil
}

func findDescription(dir string) (string, Format, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", "", plxerrors.FileError(plxerrors.CodeFileNotFound,
			"exercise directory not found", err).WithDetails("path", dir)
	}
	if !info.IsDir() {
		return "", "", plxerrors.InvalidInput("%s is not a directory", dir)
	}

	for _, candidate := range descriptionFiles {
		path := filepath.Join(dir, candidate.name)
		if _, err := os.Stat(path); err == nil {
			return path, candidate.format, nil
		}
	}
	return "", "", plxerrors.FileError(plxerrors.CodeFileNotFound,
		"no exo.toml or exo.yaml in exercise directory", nil).WithDetails("path", dir)
}

func isDescription(name string) bool {
	for _, candidate := range descriptionFiles {
		if name == candidate.name {
			return true
		}
	}
	return false
}
