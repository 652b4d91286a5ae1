package routes

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"nursery_app_backend/handlers"
	"nursery_app_backend/middleware"
	"nursery_app_backend/models"
	"nursery_app_backend/services"
)

// SetupRoutes configures all the routes for the application
func SetupRoutes(r *gin.Engine, db *sql.DB, jwtSecret []byte, storage services.FileStorage, notifier services.Notifier) {
	intakeService := services.NewIntakeService(db, storage, notifier)
	decisionService := services.NewDecisionService(db, notifier)
	attendanceService := services.NewAttendanceService(db)

	authHandler := handlers.NewAuthHandler(db, jwtSecret)
	enrollmentHandler := handlers.NewEnrollmentHandler(intakeService, decisionService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	healthHandler := handlers.NewHealthHandler(db)

	// Public routes
	r.GET("/health", healthHandler.Check)
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.POST("/enrollments", enrollmentHandler.Submit)

	// Protected routes
	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(jwtSecret))
	{
		protected.POST("/logout", authHandler.Logout)

		// A guardian may fetch their own enrollment; staff/admin any.
		protected.GET("/enrollments/:id", enrollmentHandler.Get)

		staff := protected.Group("/")
		staff.Use(middleware.RequireRoles(models.RoleStaff, models.RoleAdmin))
		{
			staff.GET("/enrollments", enrollmentHandler.List)
			staff.GET("/enrollments/stats", enrollmentHandler.Stats)
			staff.PUT("/enrollments/:id/approve", enrollmentHandler.Approve)
			staff.PUT("/enrollments/:id/reject", enrollmentHandler.Reject)

			staff.POST("/attendance/check-in", attendanceHandler.CheckIn)
			staff.POST("/attendance/check-out", attendanceHandler.CheckOut)
			staff.GET("/attendance/today", attendanceHandler.Today)
			staff.GET("/attendance/currently-present", attendanceHandler.CurrentlyPresent)
			staff.GET("/attendance/stats", attendanceHandler.Stats)
			staff.GET("/attendance/children/:id", attendanceHandler.ByChild)
			staff.GET("/attendance/:date", attendanceHandler.ByDate)
		}
	}
}
