package repository

import (
	"testing"

	"rps-backend/app/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeCondition(t *testing.T) {
	cond, args := scopeCondition(model.Scope{}, "courses")
	assert.Empty(t, cond)
	assert.Empty(t, args)

	nothing := model.MatchNothing
	cond, _ = scopeCondition(model.Scope{ProgramID: &nothing}, "courses")
	assert.Equal(t, "1 = 0", cond)

	prog := int64(7)
	cond, args = scopeCondition(model.Scope{ProgramID: &prog}, "courses")
	assert.Equal(t, "courses.program_id = ?", cond)
	assert.Equal(t, []any{int64(7)}, args)

	fac := int64(2)
	cond, args = scopeCondition(model.Scope{FacultyID: &fac}, "c")
	assert.Contains(t, cond, "c.faculty_id = ?")
	assert.Contains(t, cond, "SELECT id FROM programs WHERE faculty_id = ?")
	assert.Equal(t, []any{int64(2), int64(2)}, args)
}

func TestScopeConditionShared(t *testing.T) {
	prog := int64(7)
	cond, args := buildScope(model.Scope{ProgramID: &prog}, "courses", true)
	assert.Equal(t, "((courses.program_id = ?) OR courses.scope = ?)", cond)
	assert.Equal(t, []any{int64(7), "institution"}, args)

	// sentinel tidak dibuka oleh aturan shared
	nothing := model.MatchNothing
	cond, _ = buildScope(model.Scope{ProgramID: &nothing}, "courses", true)
	assert.Equal(t, "1 = 0", cond)

	cond, _ = buildScope(model.Scope{}, "courses", true)
	assert.Empty(t, cond)
}

func TestScopeCondition_CohortDoesNotNarrowOrgTables(t *testing.T) {
	prog, angkatan := int64(7), 2023
	student := model.ResolveScope(model.Principal{PrimaryRole: model.RoleStudent, ProgramID: &prog, Angkatan: &angkatan})
	require.NotNil(t, student.Cohort)

	cond, args := scopeCondition(student, "courses")
	wantCond, wantArgs := scopeCondition(model.Scope{ProgramID: &prog}, "courses")
	assert.Equal(t, wantCond, cond)
	assert.Equal(t, wantArgs, args)
	assert.NotContains(t, cond, "angkatan")
}
