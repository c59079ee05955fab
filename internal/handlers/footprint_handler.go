package handlers

import (
	"errors"
	"log"
	"strings"
	"time"

	"trailmate/internal/services"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// FootprintHandler handles HTTP requests for footprints and the
// me-versus-me hiking analytics.
type FootprintHandler struct {
	footprintService *services.FootprintService
	historyService   *services.HikingHistoryService
}

// NewFootprintHandler creates a new FootprintHandler.
func NewFootprintHandler(footprintService *services.FootprintService, historyService *services.HikingHistoryService) *FootprintHandler {
	return &FootprintHandler{
		footprintService: footprintService,
		historyService:   historyService,
	}
}

// RegisterRoutes registers the footprint and history routes. All of
// them require an authenticated user.
func (h *FootprintHandler) RegisterRoutes(router fiber.Router) {
	footprintRoutes := router.Group("/footprints")
	footprintRoutes.Get("/", h.HandleGetFootprints)
	footprintRoutes.Get("/:footprintId/histories", h.HandleGetHistories)
	footprintRoutes.Get("/:footprintId/histories/period", h.HandleGetHistoriesByPeriod)

	router.Get("/histories/compare", h.HandleCompareRecords)
}

// HandleGetFootprints lists the caller's footprints.
func (h *FootprintHandler) HandleGetFootprints(c *fiber.Ctx) error {
	userID := currentUserID(c)
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 10)

	response, err := h.footprintService.GetFootprints(userID, page, size)
	if err != nil {
		log.Printf("Error listing footprints for user %s: %v", userID, err)
		return historyErrorResponse(c, err)
	}
	return c.JSON(response)
}

// HandleGetHistories returns one page of per-path record groups of a
// footprint.
func (h *FootprintHandler) HandleGetHistories(c *fiber.Ctx) error {
	userID := currentUserID(c)
	footprintID := c.Params("footprintId")
	page := c.QueryInt("page", 0)
	size := c.QueryInt("size", 10)

	response, err := h.historyService.GetHikingHistory(userID, footprintID, page, size)
	if err != nil {
		log.Printf("Error getting histories for footprint %s: %v", footprintID, err)
		return historyErrorResponse(c, err)
	}
	return c.JSON(response)
}

// HandleGetHistoriesByPeriod returns the records of one path within an
// inclusive date range.
func (h *FootprintHandler) HandleGetHistoriesByPeriod(c *fiber.Ctx) error {
	userID := currentUserID(c)
	footprintID := c.Params("footprintId")
	pathID := c.Query("pathId")
	if pathID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "pathId is required",
		})
	}

	start, err := time.Parse(dateLayout, c.Query("start"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "start must be a date of the form YYYY-MM-DD",
		})
	}
	end, err := time.Parse(dateLayout, c.Query("end"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "end must be a date of the form YYYY-MM-DD",
		})
	}
	if end.Before(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "end must not be before start",
		})
	}

	response, err := h.historyService.GetHikingRecordsByPeriod(userID, footprintID, pathID, start, end)
	if err != nil {
		log.Printf("Error getting period histories for footprint %s: %v", footprintID, err)
		return historyErrorResponse(c, err)
	}
	return c.JSON(response)
}

// HandleCompareRecords compares one or two records selected by ID
// (comma separated in the ids query parameter).
func (h *FootprintHandler) HandleCompareRecords(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var ids []string
	for _, id := range strings.Split(c.Query("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}

	response, err := h.historyService.CompareByRecordIDs(userID, ids)
	if err != nil {
		log.Printf("Error comparing records %v: %v", ids, err)
		return historyErrorResponse(c, err)
	}
	return c.JSON(response)
}

// currentUserID reads the user identity placed in the context by the
// auth middleware.
func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}

// historyErrorResponse maps the analytics error taxonomy to statuses.
func historyErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrAccessDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Access denied",
		})
	case errors.Is(err, services.ErrFootprintNotFound), errors.Is(err, services.ErrRecordNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrInvalidRecordCount):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": err.Error(),
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal server error",
			"error":   err.Error(),
		})
	}
}
