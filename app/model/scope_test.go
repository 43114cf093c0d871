package model

import (
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

func i64(v int64) *int64 { return &v }

func programRef(institution, faculty, program int64) OrgRef {
	return OrgRef{Level: OwnerProgram, InstitutionID: i64(institution), FacultyID: i64(faculty), ProgramID: i64(program)}
}

func TestResolveScope(t *testing.T) {
	angkatan := 2023
	tests := []struct {
		name string
		p    Principal
		want Scope
	}{
		{"superadmin", Principal{PrimaryRole: RoleSuperAdmin}, Scope{}},
		{"admin", Principal{PrimaryRole: RoleAdmin, ProgramID: i64(3)}, Scope{}},
		{"institution admin", Principal{PrimaryRole: RoleInstitutionAdmin}, Scope{}},
		{"dean", Principal{PrimaryRole: RoleDean, FacultyID: i64(2)}, Scope{FacultyID: i64(2)}},
		{"dean tanpa fakultas", Principal{PrimaryRole: RoleDean}, Scope{FacultyID: i64(MatchNothing)}},
		{"program head", Principal{PrimaryRole: RoleProgramHead, ProgramID: i64(7)}, Scope{ProgramID: i64(7)}},
		{"lecturer", Principal{PrimaryRole: RoleLecturer, ProgramID: i64(7)}, Scope{ProgramID: i64(7)}},
		{"lecturer tanpa program", Principal{PrimaryRole: RoleLecturer}, Scope{ProgramID: i64(MatchNothing)}},
		{"student", Principal{PrimaryRole: RoleStudent, ProgramID: i64(7), Angkatan: &angkatan}, Scope{ProgramID: i64(7), Cohort: &angkatan}},
		{"guest", Principal{PrimaryRole: RoleGuest, ProgramID: i64(7)}, Scope{ProgramID: i64(MatchNothing)}},
		{"active role menang", Principal{PrimaryRole: RoleLecturer, ActiveRole: RoleDean, FacultyID: i64(2), ProgramID: i64(7)}, Scope{FacultyID: i64(2)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveScope(tt.p))
		})
	}
}

func TestResolveScope_UnknownRoleNeverUnrestricted(t *testing.T) {
	f := func(name string, program, faculty int64) bool {
		r := Role(name)
		if r.Valid() {
			return true
		}
		s := ResolveScope(Principal{PrimaryRole: r, ProgramID: &program, FacultyID: &faculty})
		return !s.IsUnrestricted() && s.MatchesNothing()
	}
	assert.NoError(t, quick.Check(f, nil))
}

func TestScopeCovers(t *testing.T) {
	ref := programRef(1, 2, 7)

	assert.True(t, Scope{}.Covers(ref))
	assert.True(t, Scope{ProgramID: i64(7)}.Covers(ref))
	assert.False(t, Scope{ProgramID: i64(8)}.Covers(ref))
	assert.True(t, Scope{FacultyID: i64(2)}.Covers(ref))
	assert.False(t, Scope{FacultyID: i64(3)}.Covers(ref))
	assert.False(t, Scope{ProgramID: i64(MatchNothing)}.Covers(ref))

	// resource tingkat fakultas tidak punya program
	facultyRef := OrgRef{Level: OwnerFaculty, InstitutionID: i64(1), FacultyID: i64(2)}
	assert.False(t, Scope{ProgramID: i64(7)}.Covers(facultyRef))
	assert.True(t, Scope{FacultyID: i64(2)}.Covers(facultyRef))
}

func TestScopeCoversOrShared(t *testing.T) {
	shared := OrgRef{Level: OwnerInstitution, InstitutionID: i64(1)}

	assert.True(t, Scope{ProgramID: i64(7)}.CoversOrShared(shared))
	assert.False(t, Scope{ProgramID: i64(7)}.Covers(shared))
	assert.False(t, Scope{ProgramID: i64(MatchNothing)}.CoversOrShared(shared))
}

func TestScopeNarrowProgram(t *testing.T) {
	assert.Equal(t, Scope{ProgramID: i64(5)}, Scope{}.NarrowProgram(i64(5)))
	assert.Equal(t, Scope{ProgramID: i64(7)}, Scope{ProgramID: i64(7)}.NarrowProgram(i64(7)))
	assert.Equal(t, Scope{ProgramID: i64(MatchNothing)}, Scope{ProgramID: i64(7)}.NarrowProgram(i64(8)))
	assert.Equal(t, Scope{FacultyID: i64(2)}, Scope{FacultyID: i64(2)}.NarrowProgram(nil))
}

func TestScopeCovers_Cohort(t *testing.T) {
	a2023, a2024 := 2023, 2024
	s := Scope{ProgramID: i64(7), Cohort: &a2023}

	// resource tanpa angkatan (course, RPS) hanya dicek programnya
	assert.True(t, s.Covers(programRef(1, 2, 7)))

	bound := programRef(1, 2, 7)
	bound.Cohort = &a2023
	assert.True(t, s.Covers(bound))
	bound.Cohort = &a2024
	assert.False(t, s.Covers(bound))
}
