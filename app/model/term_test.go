package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTerm(t *testing.T) {
	term, err := ParseTerm("Ganjil 2025/2026")
	require.NoError(t, err)
	assert.Equal(t, Term{Semester: SemesterGanjil, AcademicYear: "2025/2026"}, term)
	assert.Equal(t, "Ganjil 2025/2026", term.String())

	for _, bad := range []string{"", "Ganjil", "Ganjil 2025/2027", "Gasal 2025/2026", "Genap 2025-2026", "Genap 2025/2026 x"} {
		_, err := ParseTerm(bad)
		assert.Error(t, err, bad)
	}
}

func TestTermIsZero(t *testing.T) {
	assert.True(t, Term{}.IsZero())
	assert.False(t, Term{Semester: SemesterPendek}.IsZero())
}
