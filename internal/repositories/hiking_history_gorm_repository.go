package repositories

import (
	"fmt"
	"time"

	"trailmate/internal/models"

	"gorm.io/gorm"
)

// GORMHikingHistoryRepository is a GORM implementation of HikingHistoryRepository.
type GORMHikingHistoryRepository struct {
	db *gorm.DB
}

// NewGORMHikingHistoryRepository creates a new instance of GORMHikingHistoryRepository.
func NewGORMHikingHistoryRepository(db *gorm.DB) *GORMHikingHistoryRepository {
	return &GORMHikingHistoryRepository{
		db: db,
	}
}

// FindAllByFootprintID returns every record of a footprint ascending by creation time.
func (r *GORMHikingHistoryRepository) FindAllByFootprintID(footprintID string) ([]models.HikingHistory, error) {
	var histories []models.HikingHistory
	err := r.db.Preload("Path").
		Where("footprint_id = ?", footprintID).
		Order("created_at ASC").
		Find(&histories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get histories for footprint %s: %w", footprintID, err)
	}
	return histories, nil
}

// FindByPeriod returns the records of one path within [start, end], ascending.
func (r *GORMHikingHistoryRepository) FindByPeriod(footprintID, pathID string, start, end time.Time) ([]models.HikingHistory, error) {
	var histories []models.HikingHistory
	err := r.db.Preload("Path").
		Where("footprint_id = ? AND path_id = ? AND created_at BETWEEN ? AND ?", footprintID, pathID, start, end).
		Order("created_at ASC").
		Find(&histories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get histories for footprint %s path %s: %w", footprintID, pathID, err)
	}
	return histories, nil
}

// FindAllByIDs resolves record IDs with their footprints (for ownership
// checks) and paths. IDs that do not exist are absent from the result.
func (r *GORMHikingHistoryRepository) FindAllByIDs(ids []string) ([]models.HikingHistory, error) {
	var histories []models.HikingHistory
	err := r.db.Preload("Footprint").Preload("Path").
		Where("id IN ?", ids).
		Find(&histories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get histories by ids: %w", err)
	}
	return histories, nil
}

// FindLatestByUserID returns the user's most recent record across all footprints.
func (r *GORMHikingHistoryRepository) FindLatestByUserID(userID string) (*models.HikingHistory, error) {
	var history models.HikingHistory
	err := r.db.Preload("Path").Preload("Footprint.Mountain").
		Joins("JOIN footprints ON footprints.id = hiking_histories.footprint_id").
		Where("footprints.user_id = ?", userID).
		Order("hiking_histories.created_at DESC").
		First(&history).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("no hiking record for user %s: %w", userID, gorm.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get latest record for user %s: %w", userID, err)
	}
	return &history, nil
}
