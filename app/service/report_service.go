package service

import (
	"context"

	"rps-backend/app/model"
	"rps-backend/app/repository"
)

// ReportService menyediakan statistik RPS sesuai cakupan pemanggil.
type ReportService interface {
	SyllabusStatistics(ctx context.Context, p model.Principal) (*repository.ReportResult, error)
}

type reportService struct {
	reports repository.ReportRepository
}

func NewReportService(reports repository.ReportRepository) ReportService {
	return &reportService{reports: reports}
}

func (s *reportService) SyllabusStatistics(ctx context.Context, p model.Principal) (*repository.ReportResult, error) {
	return s.reports.SyllabusStatistics(ctx, model.ResolveScope(p))
}
