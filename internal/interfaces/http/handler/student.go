package handler

import (
	appschool "github.com/edupay/backend/internal/application/school"
	"github.com/gin-gonic/gin"
)

// StudentHandler handles admin-facing student management endpoints
type StudentHandler struct {
	BaseHandler
	studentService *appschool.StudentService
}

// NewStudentHandler creates a new StudentHandler
func NewStudentHandler(studentService *appschool.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

// Onboard enrolls a new student and provisions their portal account.
// The response carries the generated credentials exactly once.
func (h *StudentHandler) Onboard(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appschool.OnboardStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid student payload: "+err.Error())
		return
	}

	resp, err := h.studentService.OnboardStudent(c.Request.Context(), req, ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// Get returns a single student
func (h *StudentHandler) Get(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	studentID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	resp, err := h.studentService.GetStudent(c.Request.Context(), studentID, ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// List returns students for the authenticated admin with filtering
func (h *StudentHandler) List(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter appschool.StudentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid filter: "+err.Error())
		return
	}

	students, total, err := h.studentService.ListStudents(c.Request.Context(), ownerAdminID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, students, total, page, pageSize)
}

// Update changes a student's profile
func (h *StudentHandler) Update(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	studentID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	var req appschool.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid student payload: "+err.Error())
		return
	}

	resp, err := h.studentService.UpdateStudent(c.Request.Context(), studentID, req, ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Deactivate withdraws a student and disables their portal account
func (h *StudentHandler) Deactivate(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	studentID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	if err := h.studentService.DeactivateStudent(c.Request.Context(), studentID, ownerAdminID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// Reactivate re-enrolls a previously deactivated student
func (h *StudentHandler) Reactivate(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	studentID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid student ID")
		return
	}

	if err := h.studentService.ReactivateStudent(c.Request.Context(), studentID, ownerAdminID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
