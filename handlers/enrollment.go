package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"nursery_app_backend/models"
	"nursery_app_backend/services"
)

// IntakeSubmitter is the slice of IntakeService the handler needs.
type IntakeSubmitter interface {
	Submit(req *models.IntakeRequest, docs []services.IntakeDocument) (*models.IntakeResult, error)
}

// EnrollmentDecider is the slice of DecisionService the handler needs.
type EnrollmentDecider interface {
	Approve(enrollmentID int, req *models.ApproveEnrollmentRequest) (*models.DecisionResult, error)
	Reject(enrollmentID int, req *models.RejectEnrollmentRequest) (*models.DecisionResult, error)
	List(status string, page, pageSize int) (*models.EnrollmentList, error)
	Get(enrollmentID int) (*models.EnrollmentDetail, error)
	Stats() (*models.EnrollmentStats, error)
}

type EnrollmentHandler struct {
	intake    IntakeSubmitter
	decisions EnrollmentDecider
}

func NewEnrollmentHandler(intake IntakeSubmitter, decisions EnrollmentDecider) *EnrollmentHandler {
	return &EnrollmentHandler{intake: intake, decisions: decisions}
}

var documentCategories = []string{
	models.DocMedicalRecord,
	models.DocBirthCertificate,
	models.DocMedicalCertificate,
}

// Submit handles the public enrollment form. Documents arrive as
// multipart file parts named after their category; each is optional.
func (h *EnrollmentHandler) Submit(c *gin.Context) {
	var req models.IntakeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var docs []services.IntakeDocument
	for _, category := range documentCategories {
		fh, err := c.FormFile(category)
		if err != nil {
			continue
		}
		docs = append(docs, services.IntakeDocument{Category: category, File: fh})
	}

	result, err := h.intake.Submit(&req, docs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

func (h *EnrollmentHandler) List(c *gin.Context) {
	page, pageSize := queryPagination(c)
	list, err := h.decisions.List(c.Query("status"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get returns one enrollment. Staff and admins see any; a guardian only
// sees their own.
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	detail, err := h.decisions.Get(enrollmentID)
	if err != nil {
		respondError(c, err)
		return
	}

	if c.GetString("userRole") == models.RoleGuardian && detail.GuardianID != c.GetInt("userID") {
		// Hide the row's existence from other guardians.
		c.JSON(http.StatusNotFound, gin.H{"error": "enrollment not found"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

func (h *EnrollmentHandler) Stats(c *gin.Context) {
	stats, err := h.decisions.Stats()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *EnrollmentHandler) Approve(c *gin.Context) {
	enrollmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	// An empty body means approval without an appointment.
	var req models.ApproveEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.decisions.Approve(enrollmentID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *EnrollmentHandler) Reject(c *gin.Context) {
	enrollmentID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.RejectEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.decisions.Reject(enrollmentID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
