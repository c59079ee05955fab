package models

import "gorm.io/gorm"

// Mountain is reference data describing a peak. It is never written by
// this service; rows are loaded by an out-of-band import job.
type Mountain struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string `json:"name" gorm:"type:varchar(100)"`
	ImgURL     string `json:"imgUrl" gorm:"type:varchar(512)"`
	gorm.Model
}

// Path is a specific route up a Mountain.
type Path struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	MountainID string `json:"mountainId" gorm:"index;type:varchar(36)"`
	Name       string `json:"name" gorm:"type:varchar(100)"`
	gorm.Model
}
