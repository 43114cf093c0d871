package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// OwnerLevel menentukan level organisasi pemilik sebuah record.
type OwnerLevel string

const (
	OwnerInstitution OwnerLevel = "institution"
	OwnerFaculty     OwnerLevel = "faculty"
	OwnerProgram     OwnerLevel = "program"
)

var (
	ErrOwnerLevelInvalid  = errors.New("owner scope must be institution, faculty or program")
	ErrOwnerExactlyOne    = errors.New("exactly one owner id must be set")
	ErrOwnerLevelMismatch = errors.New("owner id does not match owner scope")
)

func (l OwnerLevel) Valid() bool {
	switch l {
	case OwnerInstitution, OwnerFaculty, OwnerProgram:
		return true
	}
	return false
}

func (l OwnerLevel) Value() (driver.Value, error) { return string(l), nil }

func (l *OwnerLevel) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*l = OwnerLevel(v)
	case []byte:
		*l = OwnerLevel(v)
	case nil:
		*l = ""
	default:
		return fmt.Errorf("cannot scan %T into OwnerLevel", src)
	}
	return nil
}

// OrgOwner dipakai (embedded) oleh Course dan CurriculumOutcome.
// Tepat satu dari tiga id terisi dan harus sesuai dengan Scope.
type OrgOwner struct {
	Scope         OwnerLevel `gorm:"column:scope;type:varchar(20);not null;index" json:"scope"`
	InstitutionID *int64     `gorm:"column:institution_id;index" json:"institutionId,omitempty"`
	FacultyID     *int64     `gorm:"column:faculty_id;index" json:"facultyId,omitempty"`
	ProgramID     *int64     `gorm:"column:program_id;index" json:"programId,omitempty"`
}

// NewOrgOwner membangun owner dan langsung memvalidasinya.
func NewOrgOwner(scope OwnerLevel, id int64) (OrgOwner, error) {
	o := OrgOwner{Scope: scope}
	switch scope {
	case OwnerInstitution:
		o.InstitutionID = &id
	case OwnerFaculty:
		o.FacultyID = &id
	case OwnerProgram:
		o.ProgramID = &id
	default:
		return OrgOwner{}, ErrOwnerLevelInvalid
	}
	return o, o.Validate()
}

func (o OrgOwner) Validate() error {
	if !o.Scope.Valid() {
		return ErrOwnerLevelInvalid
	}
	set := 0
	for _, id := range []*int64{o.InstitutionID, o.FacultyID, o.ProgramID} {
		if id != nil {
			set++
		}
	}
	if set != 1 {
		return ErrOwnerExactlyOne
	}
	var id *int64
	switch o.Scope {
	case OwnerInstitution:
		id = o.InstitutionID
	case OwnerFaculty:
		id = o.FacultyID
	case OwnerProgram:
		id = o.ProgramID
	}
	if id == nil {
		return ErrOwnerLevelMismatch
	}
	if *id <= 0 {
		return fmt.Errorf("owner id must be positive, got %d", *id)
	}
	return nil
}

// OwnerID mengembalikan id pemilik sesuai Scope.
func (o OrgOwner) OwnerID() int64 {
	switch o.Scope {
	case OwnerInstitution:
		return deref(o.InstitutionID)
	case OwnerFaculty:
		return deref(o.FacultyID)
	case OwnerProgram:
		return deref(o.ProgramID)
	}
	return 0
}

func deref(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}
