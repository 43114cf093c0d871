package apperror

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsThroughWrap(t *testing.T) {
	err := errors.Wrap(State("RPS bukan draft", "pending"), "update syllabus")

	e, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindState, e.Kind)
	assert.Equal(t, "pending", e.CurrentState)
	assert.True(t, Is(err, KindState))
	assert.False(t, Is(err, KindConflict))

	_, ok = As(errors.New("db down"))
	assert.False(t, ok)
	assert.False(t, Is(nil, KindNotFound))
}

func TestKindString(t *testing.T) {
	cases := map[Kind]string{
		KindValidation:      "validation_error",
		KindAuthorization:   "authorization_error",
		KindNotFound:        "not_found",
		KindConflict:        "conflict",
		KindState:           "state_error",
		KindUnauthenticated: "unauthenticated",
		Kind(0):             "unknown",
	}
	for k, want := range cases {
		assert.Equal(t, want, k.String())
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "not_found: RPS tidak ditemukan", NotFound("RPS").Error())
	assert.Equal(t, "state_error: tidak bisa revisi (current state: draft)", State("tidak bisa revisi", "draft").Error())

	v := Validation("Input tidak valid", FieldError{Field: "term", Error: "required"})
	assert.Len(t, v.Fields, 1)

	c := Conflict("sudah ada", []int{1})
	assert.Equal(t, []int{1}, c.Detail)
}
