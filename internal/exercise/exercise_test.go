package exercise

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plxerrors "github.com/bebsworthy/plxdemo/internal/errors"
)

func TestNew(t *testing.T) {
	e, err := New("  Hello world ", `printf("Hello world\n");`)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", e.Title())
	assert.Equal(t, `printf("Hello world\n");`, e.Solution())
	assert.Empty(t, e.Instruction())
	assert.False(t, e.IsZero())

	_, err = New(" ", "x")
	assert.True(t, plxerrors.IsCode(err, plxerrors.CodeInvalidInput))

	_, err = New("title", "\n\t")
	assert.True(t, plxerrors.IsCode(err, plxerrors.CodeInvalidInput))

	assert.True(t, Exercise{}.IsZero())
}

func TestWithInstructionCopies(t *testing.T) {
	e, err := New("Week", "return 0;")
	require.NoError(t, err)

	withText := e.WithInstruction(" Print the day name ")
	assert.Equal(t, "Print the day name", withText.Instruction())
	assert.Empty(t, e.Instruction())
}

func TestExerciseString(t *testing.T) {
	e, err := New("Hello world", `printf("Hello world\n");`)
	require.NoError(t, err)
	assert.Equal(t, `title = 'Hello world' and solution = 'printf("Hello world\n");'`, e.String())
}

func TestExerciseJSON(t *testing.T) {
	e, err := New("Week", "int main() {}")
	require.NoError(t, err)

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Week","solution":"int main() {}"}`, string(data))

	data, err = json.Marshal(e.WithInstruction("do it"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Week","solution":"int main() {}","instruction":"do it"}`, string(data))
}
