package services_test

import (
	"fmt"
	"testing"
	"time"

	"trailmate/internal/models"
	"trailmate/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func historyRecord(id, footprintID string, path models.Path, createdAt time.Time, hikingTime, maxHR int, avgHR float64) models.HikingHistory {
	return models.HikingHistory{
		ID:               id,
		FootprintID:      footprintID,
		PathID:           path.ID,
		Path:             path,
		HikingTime:       hikingTime,
		MaxHeartRate:     maxHR,
		AverageHeartRate: avgHR,
		Model:            gorm.Model{CreatedAt: createdAt},
	}
}

func ownedFootprint(userID string) *models.Footprint {
	return &models.Footprint{
		ID:     "fp-1",
		UserID: userID,
		Mountain: models.Mountain{
			ID:     "mt-1",
			Name:   "Hallasan",
			ImgURL: "https://cdn.example.com/mountains/hallasan.jpg",
		},
	}
}

func newHistoryService() (*services.HikingHistoryService, *MockHikingHistoryRepository, *MockFootprintRepository) {
	historyRepo := new(MockHikingHistoryRepository)
	footprintRepo := new(MockFootprintRepository)
	return services.NewHikingHistoryService(historyRepo, footprintRepo), historyRepo, footprintRepo
}

func TestHikingHistoryService_GetHikingHistory(t *testing.T) {
	svc, historyRepo, footprintRepo := newHistoryService()

	pathA := models.Path{ID: "path-a", Name: "Seongpanak"}
	pathB := models.Path{ID: "path-b", Name: "Gwaneumsa"}

	// Three attempts on path A getting faster over time, one on path B.
	// Path B holds the overall most recent record and sorts first.
	histories := []models.HikingHistory{
		historyRecord("h1", "fp-1", pathA, baseTime, 40, 170, 140.5),
		historyRecord("h2", "fp-1", pathA, baseTime.Add(24*time.Hour), 35, 168, 139.2),
		historyRecord("h3", "fp-1", pathA, baseTime.Add(48*time.Hour), 30, 165, 137.9),
		historyRecord("h4", "fp-1", pathB, baseTime.Add(72*time.Hour), 55, 172, 143.0),
	}

	footprintRepo.On("GetByID", "fp-1").Return(ownedFootprint("user-1"), nil).Once()
	historyRepo.On("FindAllByFootprintID", "fp-1").Return(histories, nil).Once()

	response, err := svc.GetHikingHistory("user-1", "fp-1", 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, "Hallasan", response.Mountain.MountainName)
	assert.Equal(t, int64(2), response.TotalElements)
	assert.Equal(t, 1, response.TotalPages)
	assert.Len(t, response.Histories, 2)

	// Path B first: its single record is the most recent overall.
	groupB := response.Histories[0]
	assert.Equal(t, "path-b", groupB.Path.PathID)
	assert.Nil(t, groupB.Result) // one record, nothing to diff
	assert.Len(t, groupB.Records, 1)

	// Path A second, with the diff between its two most recent records.
	groupA := response.Histories[1]
	assert.Equal(t, "path-a", groupA.Path.PathID)
	assert.NotNil(t, groupA.Result)
	assert.Equal(t, -5, groupA.Result.TimeDiff) // 30 - 35, faster
	assert.Equal(t, -3, groupA.Result.MaxHeartRateDiff)
	assert.Equal(t, -1, groupA.Result.AvgHeartRateDiff) // truncate(137.9 - 139.2)
	assert.Equal(t, services.GrowthImproved, groupA.Result.GrowthStatus)

	// Records are presented oldest first.
	assert.Equal(t, []int{40, 35, 30}, recordTimes(groupA.Records))
}

func recordTimes(records []services.HikingRecord) []int {
	times := make([]int, 0, len(records))
	for _, r := range records {
		times = append(times, r.HikingTime)
	}
	return times
}

func TestHikingHistoryService_GetHikingHistory_CapsRecordsAtFive(t *testing.T) {
	svc, historyRepo, footprintRepo := newHistoryService()

	path := models.Path{ID: "path-a", Name: "Seongpanak"}
	var histories []models.HikingHistory
	for i := 0; i < 8; i++ {
		histories = append(histories, historyRecord(
			fmt.Sprintf("h%d", i), "fp-1", path, baseTime.Add(time.Duration(i)*24*time.Hour), 60-i, 170, 140,
		))
	}

	footprintRepo.On("GetByID", "fp-1").Return(ownedFootprint("user-1"), nil).Once()
	historyRepo.On("FindAllByFootprintID", "fp-1").Return(histories, nil).Once()

	response, err := svc.GetHikingHistory("user-1", "fp-1", 0, 10)
	assert.NoError(t, err)
	assert.Len(t, response.Histories, 1)

	// Only the five most recent survive, re-ordered chronologically.
	assert.Equal(t, []int{57, 56, 55, 54, 53}, recordTimes(response.Histories[0].Records))
	// Diff still compares the two most recent of the full set.
	assert.Equal(t, -1, response.Histories[0].Result.TimeDiff)
}

func TestHikingHistoryService_GetHikingHistory_Pagination(t *testing.T) {
	svc, historyRepo, footprintRepo := newHistoryService()

	var histories []models.HikingHistory
	for i := 0; i < 3; i++ {
		path := models.Path{ID: fmt.Sprintf("path-%d", i), Name: fmt.Sprintf("Path %d", i)}
		histories = append(histories, historyRecord(
			fmt.Sprintf("h%d", i), "fp-1", path, baseTime.Add(time.Duration(i)*time.Hour), 40, 170, 140,
		))
	}

	footprintRepo.On("GetByID", "fp-1").Return(ownedFootprint("user-1"), nil)
	historyRepo.On("FindAllByFootprintID", "fp-1").Return(histories, nil)

	// Page 1 of size 1 holds the second most recent group.
	response, err := svc.GetHikingHistory("user-1", "fp-1", 1, 1)
	assert.NoError(t, err)
	assert.Len(t, response.Histories, 1)
	assert.Equal(t, "path-1", response.Histories[0].Path.PathID)
	assert.Equal(t, 3, response.TotalPages)

	// Out-of-range pages return an empty page, never an error.
	response, err = svc.GetHikingHistory("user-1", "fp-1", 5, 1)
	assert.NoError(t, err)
	assert.Empty(t, response.Histories)
	assert.Equal(t, int64(3), response.TotalElements)

	// Negative pages clamp to the first page.
	response, err = svc.GetHikingHistory("user-1", "fp-1", -1, 1)
	assert.NoError(t, err)
	assert.Len(t, response.Histories, 1)
	assert.Equal(t, "path-2", response.Histories[0].Path.PathID)
}

func TestHikingHistoryService_GetHikingHistory_AccessDenied(t *testing.T) {
	svc, _, footprintRepo := newHistoryService()

	footprintRepo.On("GetByID", "fp-1").Return(ownedFootprint("someone-else"), nil).Once()

	_, err := svc.GetHikingHistory("user-1", "fp-1", 0, 10)
	assert.ErrorIs(t, err, services.ErrAccessDenied)
}

func TestHikingHistoryService_GetHikingHistory_FootprintNotFound(t *testing.T) {
	svc, _, footprintRepo := newHistoryService()

	footprintRepo.On("GetByID", "fp-404").
		Return(nil, fmt.Errorf("footprint with ID fp-404 not found: %w", gorm.ErrRecordNotFound)).Once()

	_, err := svc.GetHikingHistory("user-1", "fp-404", 0, 10)
	assert.ErrorIs(t, err, services.ErrFootprintNotFound)
}

func TestHikingHistoryService_GetHikingRecordsByPeriod(t *testing.T) {
	svc, historyRepo, footprintRepo := newHistoryService()

	path := models.Path{ID: "path-a", Name: "Seongpanak"}
	var histories []models.HikingHistory
	for i := 0; i < 7; i++ {
		histories = append(histories, historyRecord(
			fmt.Sprintf("h%d", i), "fp-1", path, baseTime.Add(time.Duration(i)*24*time.Hour), 50-i, 170, 140,
		))
	}

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	footprintRepo.On("GetByID", "fp-1").Return(ownedFootprint("user-1"), nil).Once()
	historyRepo.On("FindByPeriod", "fp-1", "path-a",
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 23, 59, 59, 999999999, time.UTC),
	).Return(histories, nil).Once()

	response, err := svc.GetHikingRecordsByPeriod("user-1", "fp-1", "path-a", start, end)
	assert.NoError(t, err)

	// Seven matches exceed the cap: the chronologically last five are
	// kept and the flag is raised.
	assert.True(t, response.IsExceed)
	assert.Equal(t, []int{48, 47, 46, 45, 44}, recordTimes(response.Records))
	historyRepo.AssertExpectations(t)
}

func TestHikingHistoryService_GetHikingRecordsByPeriod_WithinLimit(t *testing.T) {
	svc, historyRepo, footprintRepo := newHistoryService()

	path := models.Path{ID: "path-a", Name: "Seongpanak"}
	histories := []models.HikingHistory{
		historyRecord("h1", "fp-1", path, baseTime, 50, 170, 140),
		historyRecord("h2", "fp-1", path, baseTime.Add(24*time.Hour), 45, 168, 138),
	}

	footprintRepo.On("GetByID", "fp-1").Return(ownedFootprint("user-1"), nil).Once()
	historyRepo.On("FindByPeriod", "fp-1", "path-a", mock.Anything, mock.Anything).Return(histories, nil).Once()

	response, err := svc.GetHikingRecordsByPeriod("user-1", "fp-1", "path-a",
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, err)
	assert.False(t, response.IsExceed)
	assert.Len(t, response.Records, 2)
}

func compareFootprint(userID string) models.Footprint {
	return models.Footprint{ID: "fp-1", UserID: userID}
}

func TestHikingHistoryService_CompareByRecordIDs(t *testing.T) {
	svc, historyRepo, _ := newHistoryService()

	path := models.Path{ID: "path-a", Name: "Seongpanak"}
	older := historyRecord("h1", "fp-1", path, baseTime, 40, 170, 142.7)
	newer := historyRecord("h2", "fp-1", path, baseTime.Add(24*time.Hour), 35, 165, 139.2)
	older.Footprint = compareFootprint("user-1")
	newer.Footprint = compareFootprint("user-1")

	// Returned out of order on purpose: the service sorts by timestamp.
	historyRepo.On("FindAllByIDs", []string{"h2", "h1"}).
		Return([]models.HikingHistory{newer, older}, nil).Once()

	response, err := svc.CompareByRecordIDs("user-1", []string{"h2", "h1"})
	assert.NoError(t, err)
	assert.Equal(t, []int{40, 35}, recordTimes(response.Records)) // ascending by date
	assert.NotNil(t, response.Result)
	assert.Equal(t, -5, response.Result.TimeDiff) // latest minus prior
	assert.Equal(t, -5, response.Result.MaxHeartRateDiff)
	assert.Equal(t, -3, response.Result.AvgHeartRateDiff) // truncate(139.2 - 142.7)
	assert.Equal(t, services.GrowthImproved, response.Result.GrowthStatus)
}

func TestHikingHistoryService_CompareByRecordIDs_SingleRecord(t *testing.T) {
	svc, historyRepo, _ := newHistoryService()

	path := models.Path{ID: "path-a", Name: "Seongpanak"}
	record := historyRecord("h1", "fp-1", path, baseTime, 40, 170, 142.7)
	record.Footprint = compareFootprint("user-1")

	historyRepo.On("FindAllByIDs", []string{"h1"}).Return([]models.HikingHistory{record}, nil).Once()

	response, err := svc.CompareByRecordIDs("user-1", []string{"h1"})
	assert.NoError(t, err)
	assert.Len(t, response.Records, 1)
	assert.Nil(t, response.Result) // nothing to diff against
}

func TestHikingHistoryService_CompareByRecordIDs_InvalidCount(t *testing.T) {
	svc, historyRepo, _ := newHistoryService()

	_, err := svc.CompareByRecordIDs("user-1", nil)
	assert.ErrorIs(t, err, services.ErrInvalidRecordCount)

	_, err = svc.CompareByRecordIDs("user-1", []string{"h1", "h2", "h3"})
	assert.ErrorIs(t, err, services.ErrInvalidRecordCount)

	historyRepo.AssertNotCalled(t, "FindAllByIDs", mock.Anything)
}

func TestHikingHistoryService_CompareByRecordIDs_NotFound(t *testing.T) {
	svc, historyRepo, _ := newHistoryService()

	path := models.Path{ID: "path-a", Name: "Seongpanak"}
	record := historyRecord("h1", "fp-1", path, baseTime, 40, 170, 142.7)
	record.Footprint = compareFootprint("user-1")

	// One of the two ids does not resolve.
	historyRepo.On("FindAllByIDs", []string{"h1", "h404"}).Return([]models.HikingHistory{record}, nil).Once()

	_, err := svc.CompareByRecordIDs("user-1", []string{"h1", "h404"})
	assert.ErrorIs(t, err, services.ErrRecordNotFound)
}

func TestHikingHistoryService_CompareByRecordIDs_AccessDenied(t *testing.T) {
	svc, historyRepo, _ := newHistoryService()

	path := models.Path{ID: "path-a", Name: "Seongpanak"}
	mine := historyRecord("h1", "fp-1", path, baseTime, 40, 170, 142.7)
	theirs := historyRecord("h2", "fp-2", path, baseTime.Add(time.Hour), 35, 165, 139.2)
	mine.Footprint = compareFootprint("user-1")
	theirs.Footprint = models.Footprint{ID: "fp-2", UserID: "someone-else"}

	historyRepo.On("FindAllByIDs", []string{"h1", "h2"}).
		Return([]models.HikingHistory{mine, theirs}, nil).Once()

	_, err := svc.CompareByRecordIDs("user-1", []string{"h1", "h2"})
	assert.ErrorIs(t, err, services.ErrAccessDenied)
}

func TestDetermineGrowthStatus_Unchanged(t *testing.T) {
	svc, historyRepo, _ := newHistoryService()

	path := models.Path{ID: "path-a", Name: "Seongpanak"}
	first := historyRecord("h1", "fp-1", path, baseTime, 40, 170, 140)
	second := historyRecord("h2", "fp-1", path, baseTime.Add(time.Hour), 40, 170, 140)
	first.Footprint = compareFootprint("user-1")
	second.Footprint = compareFootprint("user-1")

	historyRepo.On("FindAllByIDs", []string{"h1", "h2"}).
		Return([]models.HikingHistory{first, second}, nil).Once()

	response, err := svc.CompareByRecordIDs("user-1", []string{"h1", "h2"})
	assert.NoError(t, err)
	assert.Equal(t, 0, response.Result.TimeDiff)
	assert.Equal(t, services.GrowthUnchanged, response.Result.GrowthStatus)
}
