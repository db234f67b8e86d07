package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripImage is one photo attached to a trip. OrderIndex defines display
// order; it is 0-based but not required to stay contiguous after deletions.
// Images are exclusively owned by their trip and are removed together with
// it, including the backing file.
type TripImage struct {
	ID         uuid.UUID
	TripID     uuid.UUID
	Path       string
	OrderIndex int
	CreatedAt  time.Time
}
