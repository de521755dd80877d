// Package days maps day-of-week codes (1 for Monday through 7 for Sunday) to
// their names.
package days

import (
	"fmt"
	"strconv"
	"strings"

	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
)

// Day is a day-of-week code. Valid codes are Monday (1) through Sunday (7).
type Day int

const (
	Monday Day = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Language selects the name table.
type Language string

const (
	French  Language = "fr"
	English Language = "en"
)

var names = map[Language][7]string{
	French:  {"Lundi", "Mardi", "Mercredi", "Jeudi", "Vendredi", "Samedi", "Dimanche"},
	English: {"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"},
}

var unknown = map[Language]string{
	French:  "Inconnu",
	English: "Unknown",
}

// Valid reports whether d is one of the seven day codes.
func (d Day) Valid() bool {
	return d >= Monday && d <= Sunday
}

// Name returns the day name in lang, or the language's unknown-day label for
// codes outside 1..7.
func (d Day) Name(lang Language) string {
	table, ok := names[lang]
	if !ok {
		table, lang = names[French], French
	}
	if !d.Valid() {
		return unknown[lang]
	}
	return table[d-1]
}

// String returns the French name.
func (d Day) String() string {
	return d.Name(French)
}

// Lookup returns the name for code, or UNKNOWN_DAY if code is not 1..7.
func Lookup(code int, lang Language) (string, error) {
	d := Day(code)
	if !d.Valid() {
		return d.Name(lang), plxerrors.ValidationError(plxerrors.CodeUnknownDay,
			fmt.Sprintf("no day with code %d", code), nil).WithDetails("code", code)
	}
	return d.Name(lang), nil
}

// ParseCode converts a command-line argument into a Day. Out-of-range numbers
// are returned as-is so callers can report them as unknown.
func ParseCode(raw string) (Day, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, plxerrors.InvalidInput("missing day code")
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		e := plxerrors.InvalidInput("day code %q is not an integer", raw)
		e.Underlying = err
		return 0, e
	}
	return Day(n), nil
}

// ParseLanguage validates a language code.
func ParseLanguage(raw string) (Language, error) {
	lang := Language(strings.ToLower(strings.TrimSpace(raw)))
	if lang == "" {
		return French, nil
	}
	if _, ok := names[lang]; !ok {
		return "", plxerrors.InvalidInput("unsupported language %q", raw)
	}
	return lang, nil
}

// Result is the outcome of resolving a day code.
type Result struct {
	Code  int    `json:"code"`
	Name  string `json:"name"`
	Known bool   `json:"known"`
}

// Resolve parses raw and looks it up. Only malformed input is an error; an
// out-of-range code yields a Result with Known set to false.
func Resolve(raw string, lang Language) (Result, error) {
	d, err := ParseCode(raw)
	if err != nil {
		return Result{}, err
	}
	return Result{Code: int(d), Name: d.Name(lang), Known: d.Valid()}, nil
}

// Sentence renders the result the way the day command prints it.
func (r Result) Sentence(lang Language) string {
	if lang == English {
		return fmt.Sprintf("Day %d is %s", r.Code, r.Name)
	}
	return fmt.Sprintf("Le jour %d est %s", r.Code, r.Name)
}
