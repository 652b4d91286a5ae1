package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nursery_app_backend/dates"
	"nursery_app_backend/models"
)

// AttendanceTracker is the slice of AttendanceService the handler needs.
type AttendanceTracker interface {
	CheckIn(childID, actorID int, notes string) (*models.AttendanceRecord, error)
	CheckOut(childID, actorID int, notes string) (*models.AttendanceRecord, error)
	ByDate(date dates.Date, page, pageSize int) (*models.AttendanceList, error)
	ByChild(childID, page, pageSize int) (*models.AttendanceList, error)
	CurrentlyPresent() ([]models.AttendanceEntry, error)
	Stats(date dates.Date) (*models.AttendanceStats, error)
}

type AttendanceHandler struct {
	tracker AttendanceTracker
}

func NewAttendanceHandler(tracker AttendanceTracker) *AttendanceHandler {
	return &AttendanceHandler{tracker: tracker}
}

func (h *AttendanceHandler) CheckIn(c *gin.Context) {
	var req models.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.tracker.CheckIn(req.ChildID, c.GetInt("userID"), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *AttendanceHandler) CheckOut(c *gin.Context) {
	var req models.CheckOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.tracker.CheckOut(req.ChildID, c.GetInt("userID"), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *AttendanceHandler) Today(c *gin.Context) {
	h.listByDate(c, dates.Today())
}

func (h *AttendanceHandler) ByDate(c *gin.Context) {
	date, err := dates.Parse(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	h.listByDate(c, date)
}

func (h *AttendanceHandler) listByDate(c *gin.Context, date dates.Date) {
	page, pageSize := queryPagination(c)
	list, err := h.tracker.ByDate(date, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AttendanceHandler) ByChild(c *gin.Context) {
	childID, ok := paramID(c, "id")
	if !ok {
		return
	}
	page, pageSize := queryPagination(c)
	list, err := h.tracker.ByChild(childID, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *AttendanceHandler) CurrentlyPresent(c *gin.Context) {
	entries, err := h.tracker.CurrentlyPresent()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"children": entries, "count": len(entries)})
}

// Stats reports one day's counts; ?date=YYYY-MM-DD defaults to today.
func (h *AttendanceHandler) Stats(c *gin.Context) {
	var date dates.Date
	if raw := c.Query("date"); raw != "" {
		parsed, err := dates.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}
		date = parsed
	}

	stats, err := h.tracker.Stats(date)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
