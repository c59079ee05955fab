package models

import (
	"time"

	"gorm.io/gorm"
)

// Gender is the self-reported gender of a user.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// User represents an account holder of the app.
type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password     string    `gorm:"type:varchar(255)"` // bcrypt hash, empty for social-only accounts; no json tag for security
	Nickname     string    `json:"nickname" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=2,max=100"`
	Birth        time.Time `json:"birth"`
	Gender       Gender    `json:"gender" gorm:"type:varchar(10)"`
	ProfileImage string    `json:"profileImage" gorm:"type:varchar(512)"`
	IsSocial     bool      `json:"isSocial"`
	KakaoID      string    `json:"-" gorm:"index;type:varchar(64)"` // external provider id, empty for local accounts
	IsAgree      bool      `json:"isAgree"` // consent to expose records to friends
	gorm.Model             // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
