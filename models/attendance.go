package models

import (
	"time"

	"nursery_app_backend/dates"
)

type AttendanceRecord struct {
	ID           int        `json:"id"`
	ChildID      int        `json:"child_id"`
	Date         dates.Date `json:"date"`
	CheckInTime  *time.Time `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
	Notes        string     `json:"notes,omitempty"`
	RecordedBy   int        `json:"recorded_by"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AttendanceEntry extends a record with the child's name for listings.
type AttendanceEntry struct {
	AttendanceRecord
	ChildName string `json:"child_name"`
}

type CheckInRequest struct {
	ChildID int    `json:"child_id" binding:"required"`
	Notes   string `json:"notes"`
}

type CheckOutRequest struct {
	ChildID int    `json:"child_id" binding:"required"`
	Notes   string `json:"notes"`
}

type AttendanceList struct {
	Records  []AttendanceEntry `json:"records"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

type AttendanceStats struct {
	Date             dates.Date `json:"date"`
	TotalPresent     int        `json:"total_present"`
	CurrentlyPresent int        `json:"currently_present"`
	AlreadyLeft      int        `json:"already_left"`
}
