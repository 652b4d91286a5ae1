package services

import (
	"database/sql"
	"time"

	"nursery_app_backend/dates"
	"nursery_app_backend/models"
)

// DecisionService drives the pending → approved | rejected state
// machine. Both transitions are terminal; a second decision on the same
// enrollment is a conflict, never a double write.
type DecisionService struct {
	db       *sql.DB
	notifier Notifier
}

func NewDecisionService(db *sql.DB, notifier Notifier) *DecisionService {
	return &DecisionService{db: db, notifier: notifier}
}

// pendingEnrollment is the joined row loaded before a decision.
type pendingEnrollment struct {
	ID            int
	GuardianID    int
	ChildID       int
	Status        models.EnrollmentStatus
	GuardianEmail string
	GuardianName  string
	ChildName     string
}

func (s *DecisionService) loadForDecision(enrollmentID int) (*pendingEnrollment, error) {
	var pe pendingEnrollment
	err := s.db.QueryRow(`
		SELECT e.id, e.guardian_id, e.child_id, e.status,
		       u.email, u.first_name || ' ' || u.last_name,
		       c.first_name || ' ' || c.last_name
		FROM enrollments e
		JOIN users u ON u.id = e.guardian_id
		JOIN children c ON c.id = e.child_id
		WHERE e.id = $1`,
		enrollmentID,
	).Scan(&pe.ID, &pe.GuardianID, &pe.ChildID, &pe.Status,
		&pe.GuardianEmail, &pe.GuardianName, &pe.ChildName)
	if err == sql.ErrNoRows {
		return nil, NotFoundError("enrollment not found")
	}
	if err != nil {
		return nil, InternalError("failed to load enrollment", err)
	}
	if pe.Status.Terminal() {
		return nil, ConflictError("enrollment has already been processed")
	}
	return &pe, nil
}

// Approve marks the enrollment approved, cascades the child's status
// and activates the guardian account, all in one transaction.
func (s *DecisionService) Approve(enrollmentID int, req *models.ApproveEnrollmentRequest) (*models.DecisionResult, error) {
	var appointmentDate *dates.Date
	if req.AppointmentDate != "" {
		d, err := dates.Parse(req.AppointmentDate)
		if err != nil {
			return nil, ValidationError("appointment_date must be YYYY-MM-DD")
		}
		appointmentDate = &d
	}
	if req.AppointmentTime != "" {
		if _, err := time.Parse("15:04", req.AppointmentTime); err != nil {
			return nil, ValidationError("appointment_time must be HH:MM")
		}
	}

	pe, err := s.loadForDecision(enrollmentID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, InternalError("failed to start transaction", err)
	}
	defer tx.Rollback()

	// Status guard repeated in the UPDATE so a concurrent decision
	// that won the race leaves this one with zero rows.
	res, err := tx.Exec(`
		UPDATE enrollments
		SET status = 'approved', appointment_date = $2, appointment_time = $3,
		    admin_comment = $4, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		pe.ID, appointmentDate, req.AppointmentTime, req.AdminComment,
	)
	if err != nil {
		return nil, InternalError("failed to update enrollment", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, InternalError("failed to verify enrollment update", err)
	} else if n == 0 {
		return nil, ConflictError("enrollment has already been processed")
	}

	if _, err = tx.Exec(`
		UPDATE children SET status = 'approved', updated_at = NOW() WHERE id = $1`,
		pe.ChildID,
	); err != nil {
		return nil, InternalError("failed to update child status", err)
	}

	if _, err = tx.Exec(`
		UPDATE users SET is_active = TRUE, updated_at = NOW() WHERE id = $1`,
		pe.GuardianID,
	); err != nil {
		return nil, InternalError("failed to activate guardian account", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, InternalError("failed to commit approval", err)
	}

	notified := notify(s.notifier, pe.GuardianEmail, TemplateEnrollmentApproved, map[string]any{
		"guardian_name":    pe.GuardianName,
		"child_name":       pe.ChildName,
		"appointment_date": req.AppointmentDate,
		"appointment_time": req.AppointmentTime,
	})

	return &models.DecisionResult{
		EnrollmentID: pe.ID,
		ChildID:      pe.ChildID,
		GuardianID:   pe.GuardianID,
		Notified:     notified,
	}, nil
}

// Reject marks the enrollment rejected and cascades to the child. The
// guardian account stays inactive.
func (s *DecisionService) Reject(enrollmentID int, req *models.RejectEnrollmentRequest) (*models.DecisionResult, error) {
	pe, err := s.loadForDecision(enrollmentID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, InternalError("failed to start transaction", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE enrollments
		SET status = 'rejected', rejection_reason = $2, admin_comment = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'pending'`,
		pe.ID, req.Reason, req.AdminComment,
	)
	if err != nil {
		return nil, InternalError("failed to update enrollment", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, InternalError("failed to verify enrollment update", err)
	} else if n == 0 {
		return nil, ConflictError("enrollment has already been processed")
	}

	if _, err = tx.Exec(`
		UPDATE children SET status = 'rejected', updated_at = NOW() WHERE id = $1`,
		pe.ChildID,
	); err != nil {
		return nil, InternalError("failed to update child status", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, InternalError("failed to commit rejection", err)
	}

	notified := notify(s.notifier, pe.GuardianEmail, TemplateEnrollmentRejected, map[string]any{
		"guardian_name": pe.GuardianName,
		"child_name":    pe.ChildName,
		"reason":        req.Reason,
	})

	return &models.DecisionResult{
		EnrollmentID: pe.ID,
		ChildID:      pe.ChildID,
		GuardianID:   pe.GuardianID,
		Notified:     notified,
	}, nil
}

const enrollmentDetailColumns = `
	e.id, e.guardian_id, e.child_id, e.status, e.enrollment_date,
	e.appointment_date, COALESCE(e.appointment_time, ''),
	COALESCE(e.admin_comment, ''), COALESCE(e.rejection_reason, ''),
	e.lunch_assistance, e.regulation_accepted, e.created_at, e.updated_at,
	u.first_name || ' ' || u.last_name, u.email,
	c.first_name || ' ' || c.last_name`

func scanEnrollmentDetail(row interface{ Scan(...any) error }) (*models.EnrollmentDetail, error) {
	var d models.EnrollmentDetail
	var appointment sql.NullTime
	err := row.Scan(&d.ID, &d.GuardianID, &d.ChildID, &d.Status, &d.EnrollmentDate,
		&appointment, &d.AppointmentTime, &d.AdminComment, &d.RejectionReason,
		&d.LunchAssistance, &d.RegulationAccepted, &d.CreatedAt, &d.UpdatedAt,
		&d.GuardianName, &d.GuardianEmail, &d.ChildName)
	if err != nil {
		return nil, err
	}
	if appointment.Valid {
		ad := dates.FromTime(appointment.Time)
		d.AppointmentDate = &ad
	}
	return &d, nil
}

// List returns a page of enrollments, optionally filtered by status.
func (s *DecisionService) List(status string, page, pageSize int) (*models.EnrollmentList, error) {
	if status != "" && !models.EnrollmentStatus(status).Valid() {
		return nil, ValidationError("status must be pending, approved or rejected")
	}
	page, pageSize, offset := ClampPage(page, pageSize)

	var total int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM enrollments WHERE ($1 = '' OR status = $1)`,
		status,
	).Scan(&total)
	if err != nil {
		return nil, InternalError("failed to count enrollments", err)
	}

	rows, err := s.db.Query(`
		SELECT`+enrollmentDetailColumns+`
		FROM enrollments e
		JOIN users u ON u.id = e.guardian_id
		JOIN children c ON c.id = e.child_id
		WHERE ($1 = '' OR e.status = $1)
		ORDER BY e.created_at DESC
		LIMIT $2 OFFSET $3`,
		status, pageSize, offset,
	)
	if err != nil {
		return nil, InternalError("failed to list enrollments", err)
	}
	defer rows.Close()

	list := &models.EnrollmentList{
		Enrollments: []models.EnrollmentDetail{},
		Total:       total,
		Page:        page,
		PageSize:    pageSize,
	}
	for rows.Next() {
		d, err := scanEnrollmentDetail(rows)
		if err != nil {
			return nil, InternalError("failed to scan enrollment", err)
		}
		list.Enrollments = append(list.Enrollments, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, InternalError("failed to read enrollments", err)
	}
	return list, nil
}

// Get fetches a single enrollment with guardian and child context.
func (s *DecisionService) Get(enrollmentID int) (*models.EnrollmentDetail, error) {
	row := s.db.QueryRow(`
		SELECT`+enrollmentDetailColumns+`
		FROM enrollments e
		JOIN users u ON u.id = e.guardian_id
		JOIN children c ON c.id = e.child_id
		WHERE e.id = $1`,
		enrollmentID,
	)
	d, err := scanEnrollmentDetail(row)
	if err == sql.ErrNoRows {
		return nil, NotFoundError("enrollment not found")
	}
	if err != nil {
		return nil, InternalError("failed to load enrollment", err)
	}

	docs, err := s.loadDocuments(d.ChildID)
	if err != nil {
		return nil, err
	}
	d.Documents = docs
	return d, nil
}

func (s *DecisionService) loadDocuments(childID int) ([]models.Upload, error) {
	rows, err := s.db.Query(`
		SELECT id, child_id, uploaded_by, file_name, file_path, file_size, mime_type, category, created_at
		FROM uploads
		WHERE child_id = $1
		ORDER BY created_at ASC`,
		childID,
	)
	if err != nil {
		return nil, InternalError("failed to load documents", err)
	}
	defer rows.Close()

	docs := []models.Upload{}
	for rows.Next() {
		var u models.Upload
		if err := rows.Scan(&u.ID, &u.ChildID, &u.UploadedBy, &u.FileName, &u.FilePath,
			&u.FileSize, &u.MimeType, &u.Category, &u.CreatedAt); err != nil {
			return nil, InternalError("failed to scan document", err)
		}
		docs = append(docs, u)
	}
	if err := rows.Err(); err != nil {
		return nil, InternalError("failed to read documents", err)
	}
	return docs, nil
}

// Stats aggregates enrollment counts by status.
func (s *DecisionService) Stats() (*models.EnrollmentStats, error) {
	var stats models.EnrollmentStats
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*) FILTER (WHERE status = 'approved'),
		       COUNT(*) FILTER (WHERE status = 'rejected')
		FROM enrollments`,
	).Scan(&stats.Total, &stats.Pending, &stats.Approved, &stats.Rejected)
	if err != nil {
		return nil, InternalError("failed to compute enrollment stats", err)
	}
	return &stats, nil
}
