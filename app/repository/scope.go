package repository

import (
	"strings"

	"rps-backend/app/model"
)

// scopeCondition menerjemahkan Scope menjadi kondisi SQL atas tabel yang punya
// kolom owner (scope, institution_id, faculty_id, program_id).
// Scope kosong menghasilkan kondisi kosong (tanpa batas).
// Cohort tidak diterjemahkan: courses, curriculum_outcomes dan syllabi tidak
// punya kolom angkatan, jadi mahasiswa dibatasi lewat program saja.
func scopeCondition(scope model.Scope, table string) (string, []any) {
	if scope.MatchesNothing() {
		return "1 = 0", nil
	}
	var conds []string
	var args []any
	col := func(name string) string { return table + "." + name }

	if scope.InstitutionID != nil {
		conds = append(conds, "("+col("institution_id")+" = ? OR "+
			col("faculty_id")+" IN (SELECT id FROM faculties WHERE institution_id = ?) OR "+
			col("program_id")+" IN (SELECT programs.id FROM programs JOIN faculties ON faculties.id = programs.faculty_id WHERE faculties.institution_id = ?))")
		id := *scope.InstitutionID
		args = append(args, id, id, id)
	}
	if scope.FacultyID != nil {
		conds = append(conds, "("+col("faculty_id")+" = ? OR "+
			col("program_id")+" IN (SELECT id FROM programs WHERE faculty_id = ?))")
		args = append(args, *scope.FacultyID, *scope.FacultyID)
	}
	if scope.ProgramID != nil {
		conds = append(conds, col("program_id")+" = ?")
		args = append(args, *scope.ProgramID)
	}
	return strings.Join(conds, " AND "), args
}

// scopeConditionShared = scopeCondition OR milik institusi.
// Dipakai untuk pembaca yang tidak privileged terhadap resource.
func scopeConditionShared(scope model.Scope, table string) (string, []any) {
	cond, args := scopeCondition(scope, table)
	if cond == "" {
		return "", nil
	}
	if scope.MatchesNothing() {
		return cond, args
	}
	return "((" + cond + ") OR " + table + ".scope = ?)", append(args, string(model.OwnerInstitution))
}

func buildScope(scope model.Scope, table string, shared bool) (string, []any) {
	if shared {
		return scopeConditionShared(scope, table)
	}
	return scopeCondition(scope, table)
}
