package repository

import (
	"context"

	"rps-backend/app/model"

	"gorm.io/gorm"
)

// reportRepository menghitung statistik RPS langsung di PostgreSQL.
type reportRepository struct {
	db *gorm.DB
}

type countRow struct {
	Key   string
	Count int64
}

// SyllabusStatistics menjalankan beberapa agregasi:
// - total
// - per status
// - per prodi (kode prodi, "shared" untuk mata kuliah non-prodi)
// - per term ("template" untuk RPS template)
func (r *reportRepository) SyllabusStatistics(ctx context.Context, scope model.Scope) (*ReportResult, error) {
	result := NewReportResult()

	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Table("syllabi").
			Joins("JOIN courses ON courses.id = syllabi.course_id")
		if cond, args := scopeCondition(scope, "courses"); cond != "" {
			q = q.Where(cond, args...)
		}
		return q
	}

	if err := base().Count(&result.Total).Error; err != nil {
		return nil, translate(err, "report.total")
	}

	var rows []countRow
	if err := base().
		Select("syllabi.status AS key, COUNT(*) AS count").
		Group("syllabi.status").
		Scan(&rows).Error; err != nil {
		return nil, translate(err, "report.by_status")
	}
	for _, row := range rows {
		result.ByStatus[row.Key] = row.Count
	}

	rows = nil
	if err := base().
		Joins("LEFT JOIN programs ON programs.id = courses.program_id").
		Select("COALESCE(programs.code, 'shared') AS key, COUNT(*) AS count").
		Group("COALESCE(programs.code, 'shared')").
		Scan(&rows).Error; err != nil {
		return nil, translate(err, "report.by_program")
	}
	for _, row := range rows {
		result.ByProgram[row.Key] = row.Count
	}

	rows = nil
	if err := base().
		Select("COALESCE(syllabi.semester || ' ' || syllabi.academic_year, 'template') AS key, COUNT(*) AS count").
		Group("COALESCE(syllabi.semester || ' ' || syllabi.academic_year, 'template')").
		Scan(&rows).Error; err != nil {
		return nil, translate(err, "report.by_term")
	}
	for _, row := range rows {
		result.ByTerm[row.Key] = row.Count
	}

	return result, nil
}
