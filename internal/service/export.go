package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mkowalczyk/triplog/internal/domain"
	"github.com/mkowalczyk/triplog/internal/repo"
)

// exportPageSize is how many trips are fetched per round while draining a
// user's full trip list.
const exportPageSize = 100

// ExportService assembles a flat export of one user's trips and photos.
type ExportService struct {
	trips  repo.TripRepo
	images repo.TripImageRepo
	now    func() time.Time
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, images repo.TripImageRepo) *ExportService {
	return &ExportService{trips: trips, images: images, now: time.Now}
}

// Export returns one ExportRow per image across all of the user's trips.
// Trips with no images contribute one row with empty image fields.
func (s *ExportService) Export(ctx context.Context, userEmail string) ([]domain.ExportRow, error) {
	rows := []domain.ExportRow{}
	for page := 1; ; page++ {
		trips, _, err := s.trips.ListByUser(ctx, userEmail, domain.PaginationParams{Page: page, Limit: exportPageSize})
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: %w", err)
		}
		if len(trips) == 0 {
			break
		}
		ids := make([]uuid.UUID, len(trips))
		for i, trip := range trips {
			ids[i] = trip.ID
		}
		imgsByTrip, err := s.images.ListByTripIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("service.ExportService.Export: %w", err)
		}
		for _, trip := range trips {
			rows = append(rows, exportRows(trip, imgsByTrip[trip.ID], s.now())...)
		}
		if len(trips) < exportPageSize {
			break
		}
	}
	return rows, nil
}

func exportRows(trip domain.Trip, imgs []domain.TripImage, today time.Time) []domain.ExportRow {
	base := domain.ExportRow{
		TripID:        trip.ID.String(),
		TripTitle:     trip.Title,
		TripStartDate: trip.StartDate,
		LocationName:  trip.LocationName,
		Category:      string(domain.Categorize(trip, today)),
	}
	if trip.EndDate != nil {
		base.TripEndDate = *trip.EndDate
	}
	if len(imgs) == 0 {
		return []domain.ExportRow{base}
	}

	rows := make([]domain.ExportRow, 0, len(imgs))
	for _, img := range imgs {
		row := base
		row.ImagePath = img.Path
		row.OrderIndex = strconv.Itoa(img.OrderIndex)
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV writes rows as RFC 4180 CSV with a header line.
func WriteCSV(w io.Writer, rows []domain.ExportRow) error {
	cw := csv.NewWriter(w)
	header := []string{
		"trip_id", "trip_title", "trip_start_date", "trip_end_date",
		"location_name", "category", "image_path", "order_index",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("service.WriteCSV: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.TripID, r.TripTitle, r.TripStartDate, r.TripEndDate,
			r.LocationName, r.Category, r.ImagePath, r.OrderIndex,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("service.WriteCSV: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("service.WriteCSV: %w", err)
	}
	return nil
}
