package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseID(t *testing.T) {
	id := uuid.New()

	got, ok := ParseID(id.String())
	assert.True(t, ok)
	assert.Equal(t, id, got)

	for _, s := range []string{"", "42", "not-a-uuid", uuid.Nil.String(), " " + id.String(), id.String() + "\n"} {
		_, ok := ParseID(s)
		assert.False(t, ok, s)
	}
}

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, NormalizeTitle("Work"), NormalizeTitle("  wORK "))
	assert.Equal(t, NormalizeTitle("Épicerie"), NormalizeTitle("éPICERIE"))
	assert.NotEqual(t, NormalizeTitle("Home"), NormalizeTitle("Work"))
}

func TestErrorUnwrapsToKindAndCause(t *testing.T) {
	cause := assert.AnError
	err := Internal(cause)

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal server error", err.Message())

	nf := NotFound(CodeListNotFound)
	assert.ErrorIs(t, nf, ErrNotFound)
	assert.NotErrorIs(t, nf, ErrConflict)
}
