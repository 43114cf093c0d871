package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Impersonation menyimpan jejak superadmin asli saat sedang menyamar.
type Impersonation struct {
	OriginalAdminID uuid.UUID `json:"originalAdminId"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

// Principal adalah identitas pemanggil untuk satu request,
// diturunkan dari credential yang sudah diverifikasi.
type Principal struct {
	ID             uuid.UUID      `json:"id"`
	PrimaryRole    Role           `json:"role"`
	ActiveRole     Role           `json:"activeRole,omitempty"`
	InstitutionID  *int64         `json:"institutionId,omitempty"`
	FacultyID      *int64         `json:"facultyId,omitempty"`
	ProgramID      *int64         `json:"programId,omitempty"`
	Angkatan       *int           `json:"angkatan,omitempty"`
	AvailableRoles []Role         `json:"availableRoles,omitempty"`
	Impersonation  *Impersonation `json:"impersonation,omitempty"`
}

var ErrRoleNotAvailable = errors.New("active role is not available to this principal")

// EffectiveRole: active role jika ada, selain itu primary role.
func (p Principal) EffectiveRole() Role {
	if p.ActiveRole != "" {
		return p.ActiveRole
	}
	return p.PrimaryRole
}

// CanAssume true jika role r boleh dijadikan active role.
func (p Principal) CanAssume(r Role) bool {
	if !r.Valid() {
		return false
	}
	if r == p.PrimaryRole {
		return true
	}
	for _, x := range p.AvailableRoles {
		if x == r {
			return true
		}
	}
	return false
}

// Validate memastikan active role ∈ available roles ∪ {primary role}.
func (p Principal) Validate() error {
	if p.ActiveRole == "" {
		return nil
	}
	if !p.CanAssume(p.ActiveRole) {
		return ErrRoleNotAvailable
	}
	return nil
}

func (p Principal) IsImpersonating() bool { return p.Impersonation != nil }
