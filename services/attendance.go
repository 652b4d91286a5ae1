package services

import (
	"database/sql"

	"nursery_app_backend/dates"
	"nursery_app_backend/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ClampPage normalizes pagination input before it reaches a query:
// page is at least 1 and pageSize falls within [1, 100].
func ClampPage(page, pageSize int) (clampedPage, clampedSize, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, (page - 1) * pageSize
}

// AttendanceService keeps one record per (child, day) and enforces the
// check-in-before-check-out ordering. Races between concurrent
// check-ins are settled by the UNIQUE(child_id, date) constraint.
type AttendanceService struct {
	db *sql.DB
}

func NewAttendanceService(db *sql.DB) *AttendanceService {
	return &AttendanceService{db: db}
}

const attendanceColumns = `
	id, child_id, date, check_in_time, check_out_time, notes, recorded_by, created_at, updated_at`

func scanAttendance(row interface{ Scan(...any) error }) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	var recordedBy sql.NullInt64
	err := row.Scan(&rec.ID, &rec.ChildID, &rec.Date, &rec.CheckInTime,
		&rec.CheckOutTime, &rec.Notes, &recordedBy, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.RecordedBy = int(recordedBy.Int64)
	return &rec, nil
}

// CheckIn records the child's arrival for today.
func (s *AttendanceService) CheckIn(childID, actorID int, notes string) (*models.AttendanceRecord, error) {
	var child models.Child
	err := s.db.QueryRow(`SELECT id, status FROM children WHERE id = $1`, childID).Scan(&child.ID, &child.Status)
	if err == sql.ErrNoRows {
		return nil, NotFoundError("child not found")
	}
	if err != nil {
		return nil, InternalError("failed to load child", err)
	}
	if child.Status != models.ChildApproved {
		return nil, ValidationError("child is not approved for attendance")
	}

	today := dates.Today()

	var existingID int
	var checkIn sql.NullTime
	var existingNotes string
	err = s.db.QueryRow(
		`SELECT id, check_in_time, notes FROM attendance WHERE child_id = $1 AND date = $2`,
		childID, today,
	).Scan(&existingID, &checkIn, &existingNotes)

	switch {
	case err == sql.ErrNoRows:
		row := s.db.QueryRow(`
			INSERT INTO attendance (child_id, date, check_in_time, notes, recorded_by)
			VALUES ($1, $2, NOW(), $3, $4)
			RETURNING`+attendanceColumns,
			childID, today, notes, actorID,
		)
		rec, err := scanAttendance(row)
		if err != nil {
			// A concurrent check-in inserted the row first.
			if IsUniqueViolation(err) {
				return nil, ConflictError("child is already checked in today")
			}
			return nil, InternalError("failed to create attendance record", err)
		}
		return rec, nil
	case err != nil:
		return nil, InternalError("failed to load attendance record", err)
	case checkIn.Valid:
		return nil, ConflictError("child is already checked in today")
	default:
		// Row exists without a check-in; treat as upsert. Notes already
		// on the row are kept, same as check-out.
		row := s.db.QueryRow(`
			UPDATE attendance
			SET check_in_time = NOW(), notes = $2, recorded_by = $3, updated_at = NOW()
			WHERE id = $1
			RETURNING`+attendanceColumns,
			existingID, appendNotes(existingNotes, notes), actorID,
		)
		rec, err := scanAttendance(row)
		if err != nil {
			return nil, InternalError("failed to update attendance record", err)
		}
		return rec, nil
	}
}

// CheckOut records the child's departure for today. Notes are appended
// to whatever the check-in recorded, never overwritten.
func (s *AttendanceService) CheckOut(childID, actorID int, notes string) (*models.AttendanceRecord, error) {
	today := dates.Today()

	var existingID int
	var checkIn, checkOut sql.NullTime
	var existingNotes string
	err := s.db.QueryRow(
		`SELECT id, check_in_time, check_out_time, notes FROM attendance WHERE child_id = $1 AND date = $2`,
		childID, today,
	).Scan(&existingID, &checkIn, &checkOut, &existingNotes)
	if err == sql.ErrNoRows {
		return nil, ValidationError("no check-in recorded for this child today")
	}
	if err != nil {
		return nil, InternalError("failed to load attendance record", err)
	}
	if !checkIn.Valid {
		return nil, ValidationError("no check-in recorded for this child today")
	}
	if checkOut.Valid {
		return nil, ConflictError("child is already checked out today")
	}

	combined := appendNotes(existingNotes, notes)

	row := s.db.QueryRow(`
		UPDATE attendance
		SET check_out_time = NOW(), notes = $2, recorded_by = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING`+attendanceColumns,
		existingID, combined, actorID,
	)
	rec, err := scanAttendance(row)
	if err != nil {
		return nil, InternalError("failed to update attendance record", err)
	}
	return rec, nil
}

func appendNotes(existing, extra string) string {
	if extra == "" {
		return existing
	}
	if existing == "" {
		return extra
	}
	return existing + "\n" + extra
}

// ByDate lists attendance for one calendar date, ordered by check-in.
func (s *AttendanceService) ByDate(date dates.Date, page, pageSize int) (*models.AttendanceList, error) {
	page, pageSize, offset := ClampPage(page, pageSize)

	var total int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM attendance WHERE date = $1`, date).Scan(&total)
	if err != nil {
		return nil, InternalError("failed to count attendance records", err)
	}

	rows, err := s.db.Query(`
		SELECT a.id, a.child_id, a.date, a.check_in_time, a.check_out_time,
		       a.notes, a.recorded_by, a.created_at, a.updated_at,
		       c.first_name || ' ' || c.last_name
		FROM attendance a
		JOIN children c ON c.id = a.child_id
		WHERE a.date = $1
		ORDER BY a.check_in_time ASC NULLS LAST
		LIMIT $2 OFFSET $3`,
		date, pageSize, offset,
	)
	if err != nil {
		return nil, InternalError("failed to list attendance records", err)
	}
	defer rows.Close()

	return collectEntries(rows, total, page, pageSize)
}

// ByChild lists a child's attendance history, latest day first.
func (s *AttendanceService) ByChild(childID, page, pageSize int) (*models.AttendanceList, error) {
	page, pageSize, offset := ClampPage(page, pageSize)

	var total int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM attendance WHERE child_id = $1`, childID).Scan(&total)
	if err != nil {
		return nil, InternalError("failed to count attendance records", err)
	}

	rows, err := s.db.Query(`
		SELECT a.id, a.child_id, a.date, a.check_in_time, a.check_out_time,
		       a.notes, a.recorded_by, a.created_at, a.updated_at,
		       c.first_name || ' ' || c.last_name
		FROM attendance a
		JOIN children c ON c.id = a.child_id
		WHERE a.child_id = $1
		ORDER BY a.date DESC
		LIMIT $2 OFFSET $3`,
		childID, pageSize, offset,
	)
	if err != nil {
		return nil, InternalError("failed to list attendance records", err)
	}
	defer rows.Close()

	return collectEntries(rows, total, page, pageSize)
}

// CurrentlyPresent returns today's rows with a check-in and no
// check-out.
func (s *AttendanceService) CurrentlyPresent() ([]models.AttendanceEntry, error) {
	today := dates.Today()

	rows, err := s.db.Query(`
		SELECT a.id, a.child_id, a.date, a.check_in_time, a.check_out_time,
		       a.notes, a.recorded_by, a.created_at, a.updated_at,
		       c.first_name || ' ' || c.last_name
		FROM attendance a
		JOIN children c ON c.id = a.child_id
		WHERE a.date = $1 AND a.check_in_time IS NOT NULL AND a.check_out_time IS NULL
		ORDER BY a.check_in_time ASC`,
		today,
	)
	if err != nil {
		return nil, InternalError("failed to list present children", err)
	}
	defer rows.Close()

	list, err := collectEntries(rows, 0, 0, 0)
	if err != nil {
		return nil, err
	}
	return list.Records, nil
}

// Stats summarizes one day of attendance; the zero date means today.
func (s *AttendanceService) Stats(date dates.Date) (*models.AttendanceStats, error) {
	if date.IsZero() {
		date = dates.Today()
	}

	stats := &models.AttendanceStats{Date: date}
	err := s.db.QueryRow(`
		SELECT COUNT(*) FILTER (WHERE check_in_time IS NOT NULL),
		       COUNT(*) FILTER (WHERE check_in_time IS NOT NULL AND check_out_time IS NULL),
		       COUNT(*) FILTER (WHERE check_out_time IS NOT NULL)
		FROM attendance WHERE date = $1`,
		date,
	).Scan(&stats.TotalPresent, &stats.CurrentlyPresent, &stats.AlreadyLeft)
	if err != nil {
		return nil, InternalError("failed to compute attendance stats", err)
	}
	return stats, nil
}

func collectEntries(rows *sql.Rows, total, page, pageSize int) (*models.AttendanceList, error) {
	list := &models.AttendanceList{
		Records:  []models.AttendanceEntry{},
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
	for rows.Next() {
		var entry models.AttendanceEntry
		var recordedBy sql.NullInt64
		err := rows.Scan(&entry.ID, &entry.ChildID, &entry.Date, &entry.CheckInTime,
			&entry.CheckOutTime, &entry.Notes, &recordedBy,
			&entry.CreatedAt, &entry.UpdatedAt, &entry.ChildName)
		if err != nil {
			return nil, InternalError("failed to scan attendance record", err)
		}
		entry.RecordedBy = int(recordedBy.Int64)
		list.Records = append(list.Records, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, InternalError("failed to read attendance records", err)
	}
	return list, nil
}
