package model

// MatchNothing adalah id sentinel untuk filter yang sengaja tidak cocok
// dengan organisasi mana pun (role tanpa anchor organisasi).
const MatchNothing int64 = -1

// Scope adalah filter organisasi hasil ResolveScope.
// Semua field nil berarti tanpa batas (admin / superadmin).
// Filter yang terisi digabung dengan AND.
type Scope struct {
	InstitutionID *int64 `json:"institutionId,omitempty"`
	FacultyID     *int64 `json:"facultyId,omitempty"`
	ProgramID     *int64 `json:"programId,omitempty"`
	Cohort        *int   `json:"cohort,omitempty"`
}

// OrgRef adalah posisi sebuah resource di pohon organisasi, lengkap dengan
// id leluhurnya (program -> fakultas -> institusi).
type OrgRef struct {
	Level         OwnerLevel
	InstitutionID *int64
	FacultyID     *int64
	ProgramID     *int64
	Cohort        *int
}

// ResolveScope menghitung cakupan data untuk principal berdasarkan active role.
// Fungsi murni: tanpa I/O dan deterministik.
func ResolveScope(p Principal) Scope {
	switch p.EffectiveRole() {
	case RoleSuperAdmin, RoleAdmin, RoleInstitutionAdmin:
		return Scope{}
	case RoleDean:
		return Scope{FacultyID: anchorOrNothing(p.FacultyID)}
	case RoleProgramHead, RoleLecturer:
		return Scope{ProgramID: anchorOrNothing(p.ProgramID)}
	case RoleStudent:
		s := Scope{ProgramID: anchorOrNothing(p.ProgramID)}
		if p.Angkatan != nil {
			c := *p.Angkatan
			s.Cohort = &c
		}
		return s
	default:
		// guest / role tidak dikenal: fail-closed
		return Scope{ProgramID: anchorOrNothing(nil)}
	}
}

func anchorOrNothing(id *int64) *int64 {
	v := MatchNothing
	if id != nil && *id > 0 {
		v = *id
	}
	return &v
}

// IsUnrestricted true jika tidak ada filter sama sekali.
func (s Scope) IsUnrestricted() bool {
	return s.InstitutionID == nil && s.FacultyID == nil && s.ProgramID == nil && s.Cohort == nil
}

// MatchesNothing true jika salah satu filter berisi sentinel.
func (s Scope) MatchesNothing() bool {
	return isSentinel(s.InstitutionID) || isSentinel(s.FacultyID) || isSentinel(s.ProgramID)
}

func isSentinel(id *int64) bool { return id != nil && *id == MatchNothing }

// Covers mengecek apakah resource dengan posisi ref berada di dalam scope.
func (s Scope) Covers(ref OrgRef) bool {
	if s.MatchesNothing() {
		return false
	}
	if !idMatches(s.InstitutionID, ref.InstitutionID) {
		return false
	}
	if !idMatches(s.FacultyID, ref.FacultyID) {
		return false
	}
	if !idMatches(s.ProgramID, ref.ProgramID) {
		return false
	}
	if s.Cohort != nil && ref.Cohort != nil && *s.Cohort != *ref.Cohort {
		return false
	}
	return true
}

// CoversOrShared dipakai untuk pembaca yang tidak privileged:
// resource cocok dengan scope ATAU dimiliki level institusi.
func (s Scope) CoversOrShared(ref OrgRef) bool {
	if ref.Level == OwnerInstitution && !s.MatchesNothing() {
		return true
	}
	return s.Covers(ref)
}

// NarrowProgram menggabungkan parameter program dari caller dengan AND.
// Program yang bertentangan dengan filter yang sudah ada menghasilkan sentinel.
func (s Scope) NarrowProgram(programID *int64) Scope {
	if programID == nil {
		return s
	}
	out := s
	p := *programID
	if s.ProgramID != nil && *s.ProgramID != p {
		p = MatchNothing
	}
	out.ProgramID = &p
	return out
}

func idMatches(filter, actual *int64) bool {
	if filter == nil {
		return true
	}
	return actual != nil && *actual == *filter
}
