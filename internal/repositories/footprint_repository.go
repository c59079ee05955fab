package repositories

import "trailmate/internal/models"

// FootprintRepository defines the interface for footprint data access.
type FootprintRepository interface {
	GetByID(id string) (*models.Footprint, error)
	FindAllByUserID(userID string, offset, limit int) ([]models.Footprint, int64, error)
}
