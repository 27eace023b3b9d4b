package handler

import (
	appledger "github.com/edupay/backend/internal/application/ledger"
	appschool "github.com/edupay/backend/internal/application/school"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PortalHandler handles the student-facing portal endpoints. Every
// lookup is rooted in the authenticated portal account, so students
// can only ever see their own ledger.
type PortalHandler struct {
	BaseHandler
	studentService      *appschool.StudentService
	feeService          *appledger.FeeService
	announcementService *appschool.AnnouncementService
}

// NewPortalHandler creates a new PortalHandler
func NewPortalHandler(
	studentService *appschool.StudentService,
	feeService *appledger.FeeService,
	announcementService *appschool.AnnouncementService,
) *PortalHandler {
	return &PortalHandler{
		studentService:      studentService,
		feeService:          feeService,
		announcementService: announcementService,
	}
}

// Profile returns the authenticated student's enrollment record
func (h *PortalHandler) Profile(c *gin.Context) {
	student, _, ok := h.resolveStudent(c)
	if !ok {
		return
	}
	h.Success(c, student)
}

// Fees returns the authenticated student's fee charges
func (h *PortalHandler) Fees(c *gin.Context) {
	student, ownerAdminID, ok := h.resolveStudent(c)
	if !ok {
		return
	}

	var filter appledger.FeeListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid filter: "+err.Error())
		return
	}

	fees, err := h.feeService.GetFeesForStudent(c.Request.Context(), student.ID, ownerAdminID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, fees)
}

// Outstanding returns the authenticated student's unsettled fees and their total
func (h *PortalHandler) Outstanding(c *gin.Context) {
	student, ownerAdminID, ok := h.resolveStudent(c)
	if !ok {
		return
	}

	resp, err := h.feeService.GetOutstandingForStudent(c.Request.Context(), student.ID, ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// Payments returns the authenticated student's payment history
func (h *PortalHandler) Payments(c *gin.Context) {
	student, ownerAdminID, ok := h.resolveStudent(c)
	if !ok {
		return
	}

	payments, err := h.feeService.GetPaymentHistory(c.Request.Context(), student.ID, ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payments)
}

// Announcements returns announcements visible to the authenticated student
func (h *PortalHandler) Announcements(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	announcements, err := h.announcementService.ListVisibleToStudent(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, announcements)
}

// resolveStudent resolves the enrollment record behind the
// authenticated portal account. Writes the error response itself when
// resolution fails.
func (h *PortalHandler) resolveStudent(c *gin.Context) (*appschool.StudentResponse, uuid.UUID, bool) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return nil, uuid.Nil, false
	}

	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return nil, uuid.Nil, false
	}

	student, err := h.studentService.GetStudentByUserID(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return nil, uuid.Nil, false
	}

	return student, ownerAdminID, true
}
