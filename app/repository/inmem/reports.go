package inmem

import (
	"context"

	"rps-backend/app/model"
	"rps-backend/app/repository"
)

type reportRepo struct{ s *Store }

func (r *reportRepo) SyllabusStatistics(ctx context.Context, scope model.Scope) (*repository.ReportResult, error) {
	result := repository.NewReportResult()
	err := r.s.read(func(d *data) error {
		for _, s := range d.syllabi {
			c, ok := d.courses[s.CourseID]
			if !ok || !d.inScope(scope, c.OrgOwner, false) {
				continue
			}
			result.Total++
			result.ByStatus[string(s.Status)]++

			program := "shared"
			if c.ProgramID != nil {
				if p, ok := d.programs[*c.ProgramID]; ok {
					program = p.Code
				}
			}
			result.ByProgram[program]++

			term := "template"
			if t := s.Term(); t != nil {
				term = t.String()
			}
			result.ByTerm[term]++
		}
		return nil
	})
	return result, err
}
