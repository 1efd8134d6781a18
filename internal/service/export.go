package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tripnest/backend/internal/domain"
	"github.com/tripnest/backend/internal/repo"
)

const exportDateLayout = "2006-01-02"

// ExportService flattens a trip's itinerary for spreadsheet export.
type ExportService struct {
	repos repo.Repos
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(repos repo.Repos) *ExportService {
	return &ExportService{repos: repos}
}

// Export returns one ExportRow per activity in day then sort order.
// Days with no activities contribute one row with empty activity fields.
func (s *ExportService) Export(ctx context.Context, userID, tripID uuid.UUID) (domain.Trip, []domain.ExportRow, error) {
	trip, err := s.repos.Trips.GetByID(ctx, userID, tripID)
	if err != nil {
		return domain.Trip{}, nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	days, err := loadItinerary(ctx, s.repos, tripID)
	if err != nil {
		return domain.Trip{}, nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.ExportRow, 0, len(days))
	for _, d := range days {
		base := domain.ExportRow{
			TripName:  trip.Name,
			DayNumber: d.DayNumber,
			Date:      d.Date.Format(exportDateLayout),
			DayTitle:  d.Title,
		}
		if len(d.Activities) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, a := range d.Activities {
			row := base
			row.Category = string(a.Category)
			row.ActivityName = a.Name
			row.Location = a.Location
			row.StartTime = a.StartTime
			row.EndTime = a.EndTime
			row.Cost = a.Cost
			rows = append(rows, row)
		}
	}
	return trip, rows, nil
}
