package services

import (
	"errors"

	"trailmate/internal/models"
	"trailmate/internal/repositories"

	"gorm.io/gorm"
)

// FootprintResponse is one entry of the footprint list screen.
type FootprintResponse struct {
	FootprintID  string `json:"footprintId"`
	MountainName string `json:"mountainName"`
	ImgURL       string `json:"imgUrl"`
}

// FootprintListResponse is a page of a user's footprints.
type FootprintListResponse struct {
	Footprints    []FootprintResponse `json:"footprints"`
	CurrentPage   int                 `json:"currentPage"`
	TotalPages    int                 `json:"totalPages"`
	TotalElements int64               `json:"totalElements"`
}

// FootprintService handles business logic for footprints.
type FootprintService struct {
	footprintRepo repositories.FootprintRepository
}

// NewFootprintService creates a new FootprintService.
func NewFootprintService(footprintRepo repositories.FootprintRepository) *FootprintService {
	return &FootprintService{
		footprintRepo: footprintRepo,
	}
}

// GetFootprints returns a page of the user's footprints, newest first.
func (s *FootprintService) GetFootprints(userID string, page, size int) (*FootprintListResponse, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}

	footprints, total, err := s.footprintRepo.FindAllByUserID(userID, page*size, size)
	if err != nil {
		return nil, err
	}

	responses := make([]FootprintResponse, 0, len(footprints))
	for _, fp := range footprints {
		responses = append(responses, FootprintResponse{
			FootprintID:  fp.ID,
			MountainName: fp.Mountain.Name,
			ImgURL:       fp.Mountain.ImgURL,
		})
	}

	return &FootprintListResponse{
		Footprints:    responses,
		CurrentPage:   page,
		TotalPages:    totalPages(total, size),
		TotalElements: total,
	}, nil
}

// GetFootprint loads a footprint or reports ErrFootprintNotFound.
func (s *FootprintService) GetFootprint(footprintID string) (*models.Footprint, error) {
	footprint, err := s.footprintRepo.GetByID(footprintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFootprintNotFound
		}
		return nil, err
	}
	return footprint, nil
}

// assertOwner is the single authorization predicate shared by every
// analytics entry point.
func assertOwner(userID string, footprint *models.Footprint) error {
	if footprint.UserID != userID {
		return ErrAccessDenied
	}
	return nil
}

func totalPages(total int64, size int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}
