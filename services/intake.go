package services

import (
	"database/sql"
	"log"
	"mime/multipart"

	"golang.org/x/crypto/bcrypt"

	"nursery_app_backend/dates"
	"nursery_app_backend/models"
)

// IntakeDocument pairs an uploaded file with its declared category.
type IntakeDocument struct {
	Category string
	File     *multipart.FileHeader
}

// IntakeService creates a guardian, child, enrollment and document rows
// as one atomic unit. Either all four entity kinds exist afterwards or
// none do.
type IntakeService struct {
	db       *sql.DB
	storage  FileStorage
	notifier Notifier
}

func NewIntakeService(db *sql.DB, storage FileStorage, notifier Notifier) *IntakeService {
	return &IntakeService{db: db, storage: storage, notifier: notifier}
}

// Submit processes a public enrollment request.
//
// The duplicate-email check deliberately looks at active accounts only:
// a prior registration that was never approved does not block a new
// attempt under the same address.
func (s *IntakeService) Submit(req *models.IntakeRequest, docs []IntakeDocument) (*models.IntakeResult, error) {
	birthDate, err := dates.Parse(req.ChildBirthDate)
	if err != nil {
		return nil, ValidationError("child_birth_date must be YYYY-MM-DD")
	}
	if birthDate.After(dates.Today()) {
		return nil, ValidationError("child_birth_date cannot be in the future")
	}
	if !req.RegulationAccepted {
		return nil, ValidationError("the nursery regulations must be accepted")
	}

	enrollmentDate := dates.Today()
	if req.EnrollmentDate != "" {
		enrollmentDate, err = dates.Parse(req.EnrollmentDate)
		if err != nil {
			return nil, ValidationError("enrollment_date must be YYYY-MM-DD")
		}
	}

	for _, doc := range docs {
		switch doc.Category {
		case models.DocMedicalRecord, models.DocBirthCertificate, models.DocMedicalCertificate:
		default:
			return nil, ValidationError("unknown document category " + doc.Category)
		}
	}

	email := models.NormalizeEmail(req.GuardianEmail)

	var activeExists bool
	err = s.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 AND is_active)`,
		email,
	).Scan(&activeExists)
	if err != nil {
		return nil, InternalError("failed to check guardian email", err)
	}
	if activeExists {
		return nil, ConflictError("an active account already exists for this email")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.GuardianPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, InternalError("failed to hash password", err)
	}

	// Files go to storage first so the transaction stays free of
	// external I/O; they are removed again if it rolls back.
	stored := make([]StoredFile, 0, len(docs))
	for _, doc := range docs {
		sf, err := s.storage.Save(doc.File, doc.Category)
		if err != nil {
			s.removeStored(stored)
			return nil, err
		}
		stored = append(stored, sf)
	}

	result := &models.IntakeResult{}

	tx, err := s.db.Begin()
	if err != nil {
		s.removeStored(stored)
		return nil, InternalError("failed to start transaction", err)
	}
	defer tx.Rollback()

	err = tx.QueryRow(`
		INSERT INTO users (first_name, last_name, email, phone, address, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, 'guardian', FALSE)
		RETURNING id`,
		req.GuardianFirstName, req.GuardianLastName, email,
		req.GuardianPhone, req.GuardianAddress, string(passwordHash),
	).Scan(&result.GuardianID)
	if err != nil {
		s.removeStored(stored)
		return nil, InternalError("failed to create guardian", err)
	}

	err = tx.QueryRow(`
		INSERT INTO children (guardian_id, first_name, last_name, birth_date, gender,
			allergies, medical_notes, emergency_contact_name, emergency_contact_phone, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'pending')
		RETURNING id`,
		result.GuardianID, req.ChildFirstName, req.ChildLastName, birthDate,
		req.ChildGender, req.Allergies, req.MedicalNotes,
		req.EmergencyContactName, req.EmergencyContactPhone,
	).Scan(&result.ChildID)
	if err != nil {
		s.removeStored(stored)
		return nil, InternalError("failed to create child", err)
	}

	err = tx.QueryRow(`
		INSERT INTO enrollments (guardian_id, child_id, status, enrollment_date, lunch_assistance, regulation_accepted)
		VALUES ($1, $2, 'pending', $3, $4, $5)
		RETURNING id`,
		result.GuardianID, result.ChildID, enrollmentDate,
		req.LunchAssistance, req.RegulationAccepted,
	).Scan(&result.EnrollmentID)
	if err != nil {
		s.removeStored(stored)
		if IsUniqueViolation(err) {
			return nil, ConflictError("an enrollment for this guardian and child already exists")
		}
		return nil, InternalError("failed to create enrollment", err)
	}

	for i, sf := range stored {
		_, err = tx.Exec(`
			INSERT INTO uploads (child_id, uploaded_by, file_name, file_path, file_size, mime_type, category)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			result.ChildID, result.GuardianID, sf.FileName, sf.FilePath,
			sf.FileSize, sf.MimeType, docs[i].Category,
		)
		if err != nil {
			s.removeStored(stored)
			return nil, InternalError("failed to record uploaded document", err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.removeStored(stored)
		return nil, InternalError("failed to commit enrollment", err)
	}

	result.Notified = notify(s.notifier, email, TemplateEnrollmentReceived, map[string]any{
		"guardian_name": req.GuardianFirstName + " " + req.GuardianLastName,
		"child_name":    req.ChildFirstName + " " + req.ChildLastName,
	})

	return result, nil
}

func (s *IntakeService) removeStored(stored []StoredFile) {
	for _, sf := range stored {
		if err := s.storage.Remove(sf.FilePath); err != nil {
			log.Printf("Error removing stored file %s: %v", sf.FilePath, err)
		}
	}
}
