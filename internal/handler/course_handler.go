package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skilltracker/skilltracker-api/internal/models"
	"github.com/skilltracker/skilltracker-api/internal/service"
	appErrors "github.com/skilltracker/skilltracker-api/pkg/errors"
	"github.com/skilltracker/skilltracker-api/pkg/response"
)

// CourseHandler exposes course lifecycle endpoints.
type CourseHandler struct {
	courses     *service.CourseService
	contents    *service.ContentService
	enrollments *service.EnrollmentService
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses *service.CourseService, contents *service.ContentService, enrollments *service.EnrollmentService) *CourseHandler {
	return &CourseHandler{courses: courses, contents: contents, enrollments: enrollments}
}

// Create registers a draft course owned by the caller.
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	if caller := currentUserID(c); caller != "" {
		req.ManagerID = caller
	}
	course, err := h.courses.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Get returns one course.
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.courses.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// ListMine returns the caller's courses.
func (h *CourseHandler) ListMine(c *gin.Context) {
	courses, err := h.courses.ListByManager(c.Request.Context(), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// Update applies a partial update.
func (h *CourseHandler) Update(c *gin.Context) {
	var update models.CourseUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	course, err := h.courses.Update(c.Request.Context(), c.Param("id"), currentUserID(c), update)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Produce publishes a draft course.
func (h *CourseHandler) Produce(c *gin.Context) {
	course, err := h.courses.Produce(c.Request.Context(), c.Param("id"), currentUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete removes a course with all its dependents.
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.courses.Delete(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Contents lists a course's contents.
func (h *CourseHandler) Contents(c *gin.Context) {
	contents, err := h.contents.ListByCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, contents)
}

// Enrollments lists a course's enrollments.
func (h *CourseHandler) Enrollments(c *gin.Context) {
	enrollments, err := h.enrollments.ListByCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollments)
}
