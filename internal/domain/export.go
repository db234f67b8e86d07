package domain

// ExportRow is a single row in the full-data export.
// It is a flat, denormalized view: one row per image, with trip fields
// repeated for every image on that trip. Trips with no images yield one row
// with empty image fields.
type ExportRow struct {
	// Trip fields — repeated for every image on the trip.
	TripID        string
	TripTitle     string
	TripStartDate string // DateLayout formatted
	TripEndDate   string // empty when the trip is single-day
	LocationName  string
	Category      string

	// Image fields — empty when the trip has no images.
	ImagePath  string
	OrderIndex string // decimal string; empty when no image
}
