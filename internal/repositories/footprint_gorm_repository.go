package repositories

import (
	"fmt"

	"trailmate/internal/models"

	"gorm.io/gorm"
)

// GORMFootprintRepository is a GORM implementation of FootprintRepository.
type GORMFootprintRepository struct {
	db *gorm.DB
}

// NewGORMFootprintRepository creates a new instance of GORMFootprintRepository.
func NewGORMFootprintRepository(db *gorm.DB) *GORMFootprintRepository {
	return &GORMFootprintRepository{
		db: db,
	}
}

// GetByID retrieves a footprint with its mountain by ID.
func (r *GORMFootprintRepository) GetByID(id string) (*models.Footprint, error) {
	var footprint models.Footprint
	if err := r.db.Preload("Mountain").First(&footprint, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("footprint with ID %s not found: %w", id, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get footprint by ID %s: %w", id, err)
	}
	return &footprint, nil
}

// FindAllByUserID retrieves a page of a user's footprints with their
// mountains, newest first, along with the total count.
func (r *GORMFootprintRepository) FindAllByUserID(userID string, offset, limit int) ([]models.Footprint, int64, error) {
	var total int64
	if err := r.db.Model(&models.Footprint{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count footprints for user %s: %w", userID, err)
	}

	var footprints []models.Footprint
	err := r.db.Preload("Mountain").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&footprints).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list footprints for user %s: %w", userID, err)
	}
	return footprints, total, nil
}
