package models

import (
	"time"

	"nursery_app_backend/dates"
)

// ChildStatus mirrors the enrollment decision; it only ever changes
// together with the enrollment's status.
type ChildStatus string

const (
	ChildPending  ChildStatus = "pending"
	ChildApproved ChildStatus = "approved"
	ChildRejected ChildStatus = "rejected"
)

func (s ChildStatus) Valid() bool {
	switch s {
	case ChildPending, ChildApproved, ChildRejected:
		return true
	default:
		return false
	}
}

type Child struct {
	ID                    int         `json:"id"`
	GuardianID            int         `json:"guardian_id"`
	FirstName             string      `json:"first_name"`
	LastName              string      `json:"last_name"`
	BirthDate             dates.Date  `json:"birth_date"`
	Gender                string      `json:"gender,omitempty"`
	Allergies             string      `json:"allergies,omitempty"`
	MedicalNotes          string      `json:"medical_notes,omitempty"`
	EmergencyContactName  string      `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone string      `json:"emergency_contact_phone,omitempty"`
	Status                ChildStatus `json:"status"`
	CreatedAt             time.Time   `json:"created_at"`
	UpdatedAt             time.Time   `json:"updated_at"`
}
