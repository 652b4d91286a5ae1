package models

import (
	"time"

	"nursery_app_backend/dates"
)

type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "pending"
	EnrollmentApproved EnrollmentStatus = "approved"
	EnrollmentRejected EnrollmentStatus = "rejected"
)

func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentPending, EnrollmentApproved, EnrollmentRejected:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status admits no further transition.
func (s EnrollmentStatus) Terminal() bool {
	return s == EnrollmentApproved || s == EnrollmentRejected
}

type Enrollment struct {
	ID                 int              `json:"id"`
	GuardianID         int              `json:"guardian_id"`
	ChildID            int              `json:"child_id"`
	Status             EnrollmentStatus `json:"status"`
	EnrollmentDate     dates.Date       `json:"enrollment_date"`
	AppointmentDate    *dates.Date      `json:"appointment_date,omitempty"`
	AppointmentTime    string           `json:"appointment_time,omitempty"`
	AdminComment       string           `json:"admin_comment,omitempty"`
	RejectionReason    string           `json:"rejection_reason,omitempty"`
	LunchAssistance    bool             `json:"lunch_assistance"`
	RegulationAccepted bool             `json:"regulation_accepted"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// IntakeRequest is the multipart form for a public enrollment
// submission. Documents travel as separate file parts.
type IntakeRequest struct {
	GuardianFirstName string `form:"guardian_first_name" binding:"required"`
	GuardianLastName  string `form:"guardian_last_name" binding:"required"`
	GuardianEmail     string `form:"guardian_email" binding:"required,email"`
	GuardianPhone     string `form:"guardian_phone" binding:"required"`
	GuardianAddress   string `form:"guardian_address"`
	GuardianPassword  string `form:"guardian_password" binding:"required,min=8"`

	ChildFirstName        string `form:"child_first_name" binding:"required"`
	ChildLastName         string `form:"child_last_name" binding:"required"`
	ChildBirthDate        string `form:"child_birth_date" binding:"required"`
	ChildGender           string `form:"child_gender"`
	Allergies             string `form:"allergies"`
	MedicalNotes          string `form:"medical_notes"`
	EmergencyContactName  string `form:"emergency_contact_name"`
	EmergencyContactPhone string `form:"emergency_contact_phone"`

	EnrollmentDate     string `form:"enrollment_date"`
	LunchAssistance    bool   `form:"lunch_assistance"`
	RegulationAccepted bool   `form:"regulation_accepted"`
}

// IntakeResult identifies the rows created by one intake transaction.
type IntakeResult struct {
	GuardianID   int  `json:"guardian_id"`
	ChildID      int  `json:"child_id"`
	EnrollmentID int  `json:"enrollment_id"`
	Notified     bool `json:"notified"`
}

type ApproveEnrollmentRequest struct {
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	AdminComment    string `json:"admin_comment"`
}

type RejectEnrollmentRequest struct {
	Reason       string `json:"reason"`
	AdminComment string `json:"admin_comment"`
}

// DecisionResult reports a committed approve/reject. Notified is false
// when the post-commit notification failed; the decision itself stands.
type DecisionResult struct {
	EnrollmentID int  `json:"enrollment_id"`
	ChildID      int  `json:"child_id"`
	GuardianID   int  `json:"guardian_id"`
	Notified     bool `json:"notified"`
}

// EnrollmentDetail is the read model for listing and fetching
// enrollments, joined with guardian and child names. Documents is only
// populated on a single fetch, never in list pages.
type EnrollmentDetail struct {
	Enrollment
	GuardianName  string   `json:"guardian_name"`
	GuardianEmail string   `json:"guardian_email"`
	ChildName     string   `json:"child_name"`
	Documents     []Upload `json:"documents,omitempty"`
}

type EnrollmentList struct {
	Enrollments []EnrollmentDetail `json:"enrollments"`
	Total       int                `json:"total"`
	Page        int                `json:"page"`
	PageSize    int                `json:"page_size"`
}

type EnrollmentStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}
