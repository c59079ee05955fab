package repositories

import (
	"time"

	"trailmate/internal/models"
)

// HikingHistoryRepository defines the interface for hiking record access.
// Histories are append-only; there are no update or delete operations.
type HikingHistoryRepository interface {
	// FindAllByFootprintID returns every record of a footprint with its
	// path, ascending by creation time.
	FindAllByFootprintID(footprintID string) ([]models.HikingHistory, error)

	// FindByPeriod returns the records of one path of a footprint whose
	// creation time falls within [start, end], ascending.
	FindByPeriod(footprintID, pathID string, start, end time.Time) ([]models.HikingHistory, error)

	// FindAllByIDs resolves record IDs with their footprints and paths.
	// Missing IDs are silently absent from the result.
	FindAllByIDs(ids []string) ([]models.HikingHistory, error)

	// FindLatestByUserID returns the user's most recent record across all
	// footprints, or gorm.ErrRecordNotFound-wrapped error if none exist.
	FindLatestByUserID(userID string) (*models.HikingHistory, error)
}
