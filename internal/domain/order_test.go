package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	t.Run("valid batch keeps request order", func(t *testing.T) {
		raw := json.RawMessage(`[{"_id":"` + b.String() + `","position":0},{"_id":"` + a.String() + `","position":1}]`)
		batch, err := ParseListOrder(raw)
		require.NoError(t, err)
		assert.Equal(t, []Placement{{ID: b, Position: 0}, {ID: a, Position: 1}}, batch.Placements())
	})

	tests := []struct {
		name string
		raw  string
		code Code
		msg  string
	}{
		{name: "missing", raw: ``, code: CodeTypeMismatch, msg: "Lists order must be an array"},
		{name: "null", raw: `null`, code: CodeTypeMismatch},
		{name: "object", raw: `{"_id":"x"}`, code: CodeTypeMismatch},
		{name: "empty", raw: `[]`, code: CodeMissingFields},
		{name: "bad id", raw: `[{"_id":"nope","position":0}]`, code: CodeInvalidID, msg: "Invalid list ID : nope"},
		{name: "missing id", raw: `[{"position":0}]`, code: CodeInvalidID, msg: "Invalid list ID : undefined"},
		{name: "not an object", raw: `[1]`, code: CodeInvalidID},
		{name: "negative position", raw: `[{"_id":"` + a.String() + `","position":-1}]`, code: CodeInvalidPosition, msg: "Invalid position for list ID : " + a.String()},
		{name: "fractional position", raw: `[{"_id":"` + a.String() + `","position":1.5}]`, code: CodeInvalidPosition},
		{name: "string position", raw: `[{"_id":"` + a.String() + `","position":"1"}]`, code: CodeInvalidPosition},
		{name: "missing position", raw: `[{"_id":"` + a.String() + `"}]`, code: CodeInvalidPosition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseListOrder(json.RawMessage(tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)

			var de *Error
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.code, de.Code)
			if tt.msg != "" {
				assert.Equal(t, tt.msg, de.Message())
			}
		})
	}
}

func TestParseListOrderStopsAtFirstInvalidEntry(t *testing.T) {
	good := uuid.New()
	raw := json.RawMessage(`[{"_id":"` + good.String() + `","position":0},{"_id":"bad","position":-4}]`)

	batch, err := ParseListOrder(raw)
	require.Error(t, err)
	assert.Zero(t, batch.Len())

	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeInvalidID, de.Code)
}

func TestParseTaskOrder(t *testing.T) {
	task, list := uuid.New(), uuid.New()

	batch, err := ParseTaskOrder(json.RawMessage(`[{"_id":"` + task.String() + `","listID":"` + list.String() + `","position":3}]`))
	require.NoError(t, err)
	assert.Equal(t, []Placement{{ID: task, ListID: list, Position: 3}}, batch.Placements())

	_, err = ParseTaskOrder(json.RawMessage(`[{"_id":"` + task.String() + `","listID":"7","position":0}]`))
	var de *Error
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeInvalidID, de.Code)
	assert.Equal(t, "Invalid list ID : 7", de.Message())

	_, err = ParseTaskOrder(json.RawMessage(`"tasks"`))
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeTypeMismatch, de.Code)
	assert.Equal(t, "Tasks order must be an array", de.Message())
}

func TestPlacementsReturnsCopy(t *testing.T) {
	id := uuid.New()
	batch, err := ParseListOrder(json.RawMessage(`[{"_id":"` + id.String() + `","position":2}]`))
	require.NoError(t, err)

	p := batch.Placements()
	p[0].Position = 99
	assert.Equal(t, 2, batch.Placements()[0].Position)
}
