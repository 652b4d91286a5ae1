package models

import "time"

// Document categories accepted with an enrollment submission.
const (
	DocMedicalRecord      = "medical_record"
	DocBirthCertificate   = "birth_certificate"
	DocMedicalCertificate = "medical_certificate"
)

type Upload struct {
	ID         int       `json:"id"`
	ChildID    int       `json:"child_id"`
	UploadedBy int       `json:"uploaded_by"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"file_path"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type"`
	Category   string    `json:"category"`
	CreatedAt  time.Time `json:"created_at"`
}
