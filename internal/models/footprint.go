package models

import "gorm.io/gorm"

// Footprint records that a user has hiked a mountain. There is at most
// one footprint per (user, mountain) pair.
type Footprint struct {
	ID         string   `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     string   `json:"userId" gorm:"type:varchar(36);uniqueIndex:idx_footprint_user_mountain"`
	MountainID string   `json:"mountainId" gorm:"type:varchar(36);uniqueIndex:idx_footprint_user_mountain"`
	User       User     `json:"-" gorm:"foreignKey:UserID"`
	Mountain   Mountain `json:"mountain" gorm:"foreignKey:MountainID"`
	gorm.Model
}

// HikingHistory is one recorded attempt of a path. Rows are immutable
// once created; CreatedAt (from gorm.Model) is the ordering key.
type HikingHistory struct {
	ID               string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FootprintID      string    `json:"footprintId" gorm:"index;type:varchar(36)"`
	PathID           string    `json:"pathId" gorm:"index;type:varchar(36)"`
	Footprint        Footprint `json:"-" gorm:"foreignKey:FootprintID"`
	Path             Path      `json:"path" gorm:"foreignKey:PathID"`
	HikingTime       int       `json:"hikingTime"` // minutes
	MaxHeartRate     int       `json:"maxHeartRate"`
	AverageHeartRate float64   `json:"averageHeartRate"`
	gorm.Model
}
