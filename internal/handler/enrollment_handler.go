package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skilltracker/skilltracker-api/internal/models"
	"github.com/skilltracker/skilltracker-api/internal/service"
	appErrors "github.com/skilltracker/skilltracker-api/pkg/errors"
	"github.com/skilltracker/skilltracker-api/pkg/response"
)

// EnrollmentHandler exposes enrollment and progress endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

type enrollBody struct {
	CourseID string `json:"course_id" binding:"required"`
}

// Enroll signs the caller up for a course.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var body enrollBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	enrollment, err := h.enrollments.Enroll(c.Request.Context(), service.EnrollRequest{
		CourseID:   body.CourseID,
		EmployeeID: currentUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Get returns one enrollment.
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollment, err := h.enrollments.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// ListMine returns the caller's enrollments.
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	enrollments, err := h.enrollments.ListByEmployee(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments)
}

// Statuses lists the per-content progress rows of an enrollment.
func (h *EnrollmentHandler) Statuses(c *gin.Context) {
	statuses, err := h.enrollments.Statuses(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, statuses)
}

type statusBody struct {
	Status models.ContentStatus `json:"status" binding:"required"`
}

// UpdateStatus transitions one content status and re-derives completion.
func (h *EnrollmentHandler) UpdateStatus(c *gin.Context) {
	var body statusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	status, err := h.enrollments.UpdateContentStatus(c.Request.Context(), c.Param("id"), c.Param("contentId"), body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status)
}

// Delete removes an enrollment.
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	if err := h.enrollments.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
