package services

import (
	"errors"
	"time"

	"trailmate/internal/models"
	"trailmate/internal/repositories"

	"gorm.io/gorm"
)

// UserInfo is the user summary returned alongside session tokens.
type UserInfo struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Nickname     string        `json:"nickname"`
	Birth        time.Time     `json:"birth"`
	Gender       models.Gender `json:"gender"`
	ProfileImage string        `json:"profileImage"`
	IsSocial     bool          `json:"isSocial"`
	IsAgree      bool          `json:"isAgree"`
}

// LatestRecord is the user's most recent hike, shown on login.
type LatestRecord struct {
	MountainName     string    `json:"mountainName"`
	PathName         string    `json:"pathName"`
	HikingTime       int       `json:"hikingTime"`
	MaxHeartRate     int       `json:"maxHeartRate"`
	AverageHeartRate float64   `json:"averageHeartRate"`
	Date             time.Time `json:"date"`
}

// UserService assembles user-facing summaries from stored entities.
type UserService struct {
	historyRepo repositories.HikingHistoryRepository
}

// NewUserService creates a new UserService.
func NewUserService(historyRepo repositories.HikingHistoryRepository) *UserService {
	return &UserService{
		historyRepo: historyRepo,
	}
}

// UserInfoOf builds the login summary for a user.
func (s *UserService) UserInfoOf(user *models.User) UserInfo {
	return UserInfo{
		ID:           user.ID,
		Email:        user.Email,
		Nickname:     user.Nickname,
		Birth:        user.Birth,
		Gender:       user.Gender,
		ProfileImage: user.ProfileImage,
		IsSocial:     user.IsSocial,
		IsAgree:      user.IsAgree,
	}
}

// LatestRecordOf returns the user's most recent hike, or nil when the
// user has no recorded hikes yet.
func (s *UserService) LatestRecordOf(userID string) (*LatestRecord, error) {
	history, err := s.historyRepo.FindLatestByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &LatestRecord{
		MountainName:     history.Footprint.Mountain.Name,
		PathName:         history.Path.Name,
		HikingTime:       history.HikingTime,
		MaxHeartRate:     history.MaxHeartRate,
		AverageHeartRate: history.AverageHeartRate,
		Date:             history.CreatedAt,
	}, nil
}
