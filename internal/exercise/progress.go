package exercise

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
)

// CheckOutput compares what the program prints with an expected value.
const CheckOutput = "output"

// Check is one automated test declared in an exercise description.
type Check struct {
	Name string   `toml:"name" yaml:"name" json:"name"`
	Args []string `toml:"args" yaml:"args" json:"args,omitempty"`
	Type string   `toml:"type" yaml:"type" json:"type"`
}

// normalizeChecks lowercases check types and rejects unnamed checks and
// unknown types.
func normalizeChecks(checks []Check) ([]Check, error) {
	out := make([]Check, 0, len(checks))
	for i, c := range checks {
		if strings.TrimSpace(c.Name) == "" {
			return nil, plxerrors.ParseError(plxerrors.CodeParseFailed,
				fmt.Sprintf("check %d has no name", i+1), nil)
		}
		c.Type = strings.ToLower(strings.TrimSpace(c.Type))
		if c.Type != CheckOutput {
			return nil, plxerrors.ParseError(plxerrors.CodeParseFailed,
				fmt.Sprintf("check %q has unsupported type %q", c.Name, c.Type), nil)
		}
		out = append(out, c)
	}
	return out, nil
}

// State is how far the learner got with an exercise.
type State string

const (
	StateTodo       State = "Todo"
	StateInProgress State = "InProgress"
	StateDone       State = "Done"
)

// stateFile holds the learner's progress. It is written by the trainer and
// only read here.
const stateFile = ".exo-state.toml"

// WarnBadState is reported when the state file exists but cannot be used.
const WarnBadState = "BAD_STATE_FILE"

// Progress is the saved state of an exercise.
type Progress struct {
	State    State `toml:"state" json:"state"`
	Favorite bool  `toml:"favorite" json:"favorite"`
}

// loadProgress reads dir's state file. A missing file means the exercise
// was never started; an unreadable one falls back to the same default and
// returns a warning.
func loadProgress(dir string) (Progress, *Warning) {
	fresh := Progress{State: StateTodo}

	data, err := os.ReadFile(filepath.Join(dir, stateFile))
	if errors.Is(err, fs.ErrNotExist) {
		return fresh, nil
	}
	if err != nil {
		return fresh, &Warning{Code: WarnBadState, Message: err.Error()}
	}

	var p Progress
	if err := toml.Unmarshal(data, &p); err != nil {
		return fresh, &Warning{Code: WarnBadState, Message: fmt.Sprintf("%s: %v", stateFile, err)}
	}
	switch p.State {
	case StateTodo, StateInProgress, StateDone:
	case "":
		p.State = StateTodo
	default:
		return fresh, &Warning{Code: WarnBadState,
			Message: fmt.Sprintf("%s: unknown state %q", stateFile, p.State)}
	}
	return p, nil
}
