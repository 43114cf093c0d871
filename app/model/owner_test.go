package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrgOwner(t *testing.T) {
	o, err := NewOrgOwner(OwnerFaculty, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(4), o.OwnerID())
	assert.Nil(t, o.ProgramID)
	assert.Nil(t, o.InstitutionID)

	_, err = NewOrgOwner("department", 4)
	assert.ErrorIs(t, err, ErrOwnerLevelInvalid)

	_, err = NewOrgOwner(OwnerProgram, 0)
	assert.Error(t, err)
}

func TestOrgOwnerValidate(t *testing.T) {
	tests := []struct {
		name string
		o    OrgOwner
		want error
	}{
		{"dua id", OrgOwner{Scope: OwnerProgram, ProgramID: i64(1), FacultyID: i64(2)}, ErrOwnerExactlyOne},
		{"tanpa id", OrgOwner{Scope: OwnerProgram}, ErrOwnerExactlyOne},
		{"id tidak cocok", OrgOwner{Scope: OwnerProgram, FacultyID: i64(2)}, ErrOwnerLevelMismatch},
		{"scope kosong", OrgOwner{ProgramID: i64(2)}, ErrOwnerLevelInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.o.Validate(), tt.want)
		})
	}
}

func TestOwnerLevelScan(t *testing.T) {
	var l OwnerLevel
	require.NoError(t, l.Scan([]byte("program")))
	assert.Equal(t, OwnerProgram, l)
	require.NoError(t, l.Scan(nil))
	assert.Equal(t, OwnerLevel(""), l)
	assert.Error(t, l.Scan(12))
}
