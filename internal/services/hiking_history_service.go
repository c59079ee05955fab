package services

import (
	"errors"
	"sort"
	"time"

	"trailmate/internal/models"
	"trailmate/internal/repositories"

	"gorm.io/gorm"
)

const maxRecordsPerGroup = 5

// GrowthStatus labels the trend between a user's two most recent
// attempts of a path. A faster time (negative diff) counts as improved.
type GrowthStatus string

const (
	GrowthImproved  GrowthStatus = "IMPROVED"
	GrowthDeclined  GrowthStatus = "DECLINED"
	GrowthUnchanged GrowthStatus = "UNCHANGED"
)

// Diff is the metric comparison between the latest and the prior
// record, computed as latest minus prior throughout.
type Diff struct {
	GrowthStatus     GrowthStatus `json:"growthStatus"`
	TimeDiff         int          `json:"timeDiff"`
	MaxHeartRateDiff int          `json:"maxHeartRateDiff"`
	AvgHeartRateDiff int          `json:"avgHeartRateDiff"`
}

// HikingRecord is one attempt as presented to the client.
type HikingRecord struct {
	RecordID         string    `json:"recordId"`
	Date             time.Time `json:"date"`
	HikingTime       int       `json:"hikingTime"`
	MaxHeartRate     int       `json:"maxHeartRate"`
	AverageHeartRate float64   `json:"averageHeartRate"`
}

// PathResponse summarizes a path.
type PathResponse struct {
	PathID   string `json:"pathId"`
	PathName string `json:"pathName"`
}

// MountainResponse summarizes a mountain.
type MountainResponse struct {
	MountainID   string `json:"mountainId"`
	MountainName string `json:"mountainName"`
	ImgURL       string `json:"imgUrl"`
}

// PathHistory is one path group of the overview: the diff between its
// two most recent records (nil with fewer than two) and up to five
// recent records in chronological order.
type PathHistory struct {
	Path    PathResponse   `json:"path"`
	Result  *Diff          `json:"result"`
	Records []HikingRecord `json:"records"`
}

// HistoryOverviewResponse is a page of path groups of one footprint.
type HistoryOverviewResponse struct {
	Mountain      MountainResponse `json:"mountain"`
	Histories     []PathHistory    `json:"histories"`
	CurrentPage   int              `json:"currentPage"`
	TotalPages    int              `json:"totalPages"`
	TotalElements int64            `json:"totalElements"`
}

// PeriodHistoryResponse is the graph payload for one path and period.
type PeriodHistoryResponse struct {
	IsExceed bool           `json:"isExceed"`
	Records  []HikingRecord `json:"records"`
}

// CompareResponse is the result of comparing records by explicit IDs.
type CompareResponse struct {
	Records []HikingRecord `json:"records"`
	Result  *Diff          `json:"result"`
}

// HikingHistoryService computes the me-versus-me analytics over a
// user's recorded hikes.
type HikingHistoryService struct {
	historyRepo   repositories.HikingHistoryRepository
	footprintRepo repositories.FootprintRepository
}

// NewHikingHistoryService creates a new HikingHistoryService.
func NewHikingHistoryService(historyRepo repositories.HikingHistoryRepository, footprintRepo repositories.FootprintRepository) *HikingHistoryService {
	return &HikingHistoryService{
		historyRepo:   historyRepo,
		footprintRepo: footprintRepo,
	}
}

// pathGroup collects the records of one path together with the
// explicitly derived most-recent timestamp used for group ordering.
type pathGroup struct {
	path     models.Path
	records  []models.HikingHistory
	latestAt time.Time
}

// GetHikingHistory returns one page of per-path record groups of a
// footprint, ordered by each group's most recent attempt.
func (s *HikingHistoryService) GetHikingHistory(userID, footprintID string, page, size int) (*HistoryOverviewResponse, error) {
	footprint, err := s.getOwnedFootprint(userID, footprintID)
	if err != nil {
		return nil, err
	}

	histories, err := s.historyRepo.FindAllByFootprintID(footprintID)
	if err != nil {
		return nil, err
	}

	// Group by path preserving first-seen order, then re-sort the groups
	// by each group's max(CreatedAt), most recent first.
	groupIndex := make(map[string]int)
	groups := make([]*pathGroup, 0)
	for _, h := range histories {
		idx, ok := groupIndex[h.PathID]
		if !ok {
			idx = len(groups)
			groupIndex[h.PathID] = idx
			groups = append(groups, &pathGroup{path: h.Path})
		}
		groups[idx].records = append(groups[idx].records, h)
		if h.CreatedAt.After(groups[idx].latestAt) {
			groups[idx].latestAt = h.CreatedAt
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].latestAt.After(groups[j].latestAt)
	})

	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	total := len(groups)
	start := min(page*size, total)
	end := min(start+size, total)

	pageGroups := make([]PathHistory, 0, end-start)
	for _, group := range groups[start:end] {
		pageGroups = append(pageGroups, buildPathHistory(group))
	}

	return &HistoryOverviewResponse{
		Mountain: MountainResponse{
			MountainID:   footprint.Mountain.ID,
			MountainName: footprint.Mountain.Name,
			ImgURL:       footprint.Mountain.ImgURL,
		},
		Histories:     pageGroups,
		CurrentPage:   page,
		TotalPages:    totalPages(int64(total), size),
		TotalElements: int64(total),
	}, nil
}

// buildPathHistory assembles one overview group: diff of the two most
// recent records when at least two exist, plus the five most recent
// records re-ordered chronologically for presentation.
func buildPathHistory(group *pathGroup) PathHistory {
	// Newest first for the diff and the five-record cut.
	recent := make([]models.HikingHistory, len(group.records))
	copy(recent, group.records)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})

	var result *Diff
	if len(recent) >= 2 {
		diff := diffRecords(recent[0], recent[1])
		result = &diff
	}

	if len(recent) > maxRecordsPerGroup {
		recent = recent[:maxRecordsPerGroup]
	}
	// Oldest first for presentation.
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.Before(recent[j].CreatedAt)
	})

	return PathHistory{
		Path: PathResponse{
			PathID:   group.path.ID,
			PathName: group.path.Name,
		},
		Result:  result,
		Records: toHikingRecords(recent),
	}
}

// GetHikingRecordsByPeriod returns the records of one path within an
// inclusive date range. More than five matches are cut down to the
// chronologically last five with the isExceed flag set.
func (s *HikingHistoryService) GetHikingRecordsByPeriod(userID, footprintID, pathID string, start, end time.Time) (*PeriodHistoryResponse, error) {
	if _, err := s.getOwnedFootprint(userID, footprintID); err != nil {
		return nil, err
	}

	startTime := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	endTime := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, end.Location())

	histories, err := s.historyRepo.FindByPeriod(footprintID, pathID, startTime, endTime)
	if err != nil {
		return nil, err
	}

	isExceed := len(histories) > maxRecordsPerGroup
	if isExceed {
		histories = histories[len(histories)-maxRecordsPerGroup:]
	}

	return &PeriodHistoryResponse{
		IsExceed: isExceed,
		Records:  toHikingRecords(histories),
	}, nil
}

// CompareByRecordIDs compares one or two records selected by ID. With
// two records the diff is computed between the later and the earlier.
func (s *HikingHistoryService) CompareByRecordIDs(userID string, ids []string) (*CompareResponse, error) {
	if len(ids) < 1 || len(ids) > 2 {
		return nil, ErrInvalidRecordCount
	}

	histories, err := s.historyRepo.FindAllByIDs(ids)
	if err != nil {
		return nil, err
	}
	if len(histories) != len(ids) {
		return nil, ErrRecordNotFound
	}

	for _, h := range histories {
		if err := assertOwner(userID, &h.Footprint); err != nil {
			return nil, err
		}
	}

	sort.SliceStable(histories, func(i, j int) bool {
		return histories[i].CreatedAt.Before(histories[j].CreatedAt)
	})

	var result *Diff
	if len(histories) == 2 {
		diff := diffRecords(histories[1], histories[0])
		result = &diff
	}

	return &CompareResponse{
		Records: toHikingRecords(histories),
		Result:  result,
	}, nil
}

func (s *HikingHistoryService) getOwnedFootprint(userID, footprintID string) (*models.Footprint, error) {
	footprint, err := s.footprintRepo.GetByID(footprintID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFootprintNotFound
		}
		return nil, err
	}
	if err := assertOwner(userID, footprint); err != nil {
		return nil, err
	}
	return footprint, nil
}

// diffRecords computes latest minus prior for each metric. The average
// heart rate difference is truncated toward zero.
func diffRecords(latest, prior models.HikingHistory) Diff {
	timeDiff := latest.HikingTime - prior.HikingTime
	return Diff{
		GrowthStatus:     determineGrowthStatus(timeDiff),
		TimeDiff:         timeDiff,
		MaxHeartRateDiff: latest.MaxHeartRate - prior.MaxHeartRate,
		AvgHeartRateDiff: int(latest.AverageHeartRate - prior.AverageHeartRate),
	}
}

// determineGrowthStatus maps the time diff sign to a growth label:
// faster (negative) is improved, slower is declined, equal is unchanged.
func determineGrowthStatus(timeDiff int) GrowthStatus {
	switch {
	case timeDiff < 0:
		return GrowthImproved
	case timeDiff > 0:
		return GrowthDeclined
	default:
		return GrowthUnchanged
	}
}

func toHikingRecords(histories []models.HikingHistory) []HikingRecord {
	records := make([]HikingRecord, 0, len(histories))
	for _, h := range histories {
		records = append(records, HikingRecord{
			RecordID:         h.ID,
			Date:             h.CreatedAt,
			HikingTime:       h.HikingTime,
			MaxHeartRate:     h.MaxHeartRate,
			AverageHeartRate: h.AverageHeartRate,
		})
	}
	return records
}
