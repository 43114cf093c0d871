package model

import "strings"

// Role adalah peran tetap di sistem. Nilai string-nya yang disimpan di
// database dan di dalam token.
type Role string

const (
	RoleGuest            Role = "guest"
	RoleStudent          Role = "student"
	RoleLecturer         Role = "lecturer"
	RoleProgramHead      Role = "program_head"
	RoleDean             Role = "dean"
	RoleInstitutionAdmin Role = "institution_admin"
	RoleAdmin            Role = "admin"
	RoleSuperAdmin       Role = "superadmin"
)

// roleHierarchy adalah satu-satunya tabel peringkat role.
// Peringkat lebih tinggi TIDAK berarti cakupan data lebih luas,
// cakupan ditentukan oleh ResolveScope.
var roleHierarchy = map[Role]int{
	RoleSuperAdmin:       6,
	RoleAdmin:            5,
	RoleInstitutionAdmin: 5,
	RoleDean:             4,
	RoleProgramHead:      3,
	RoleLecturer:         2,
	RoleStudent:          1,
	RoleGuest:            0,
}

// ParseRole mengubah string menjadi Role bawaan.
// ok=false jika nama role tidak dikenal (mungkin custom role).
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := roleHierarchy[r]
	return r, ok
}

// Rank mengembalikan peringkat role, -1 untuk role yang tidak dikenal.
func (r Role) Rank() int {
	rank, ok := roleHierarchy[r]
	if !ok {
		return -1
	}
	return rank
}

func (r Role) Valid() bool {
	_, ok := roleHierarchy[r]
	return ok
}

// AtLeast true jika peringkat r >= other.
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank() && r.Valid()
}

// IsAdministrative: role dengan cakupan tanpa batas organisasi.
func (r Role) IsAdministrative() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleInstitutionAdmin:
		return true
	}
	return false
}

// In mengecek apakah r termasuk salah satu role yang diberikan.
func (r Role) In(roles ...Role) bool {
	for _, x := range roles {
		if r == x {
			return true
		}
	}
	return false
}

func (r Role) String() string { return string(r) }
