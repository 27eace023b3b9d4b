package handler

import (
	appschool "github.com/edupay/backend/internal/application/school"
	"github.com/gin-gonic/gin"
)

// AnnouncementHandler handles admin-facing announcement endpoints
type AnnouncementHandler struct {
	BaseHandler
	announcementService *appschool.AnnouncementService
}

// NewAnnouncementHandler creates a new AnnouncementHandler
func NewAnnouncementHandler(announcementService *appschool.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// Post publishes an announcement to the school or one standard
func (h *AnnouncementHandler) Post(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appschool.PostAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid announcement payload: "+err.Error())
		return
	}

	resp, err := h.announcementService.PostAnnouncement(c.Request.Context(), req, ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, resp)
}

// List returns all announcements for the authenticated admin
func (h *AnnouncementHandler) List(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	announcements, err := h.announcementService.ListAnnouncements(c.Request.Context(), ownerAdminID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, announcements)
}

// Delete removes an announcement
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	ownerAdminID, err := getOwnerAdminID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	announcementID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid announcement ID")
		return
	}

	if err := h.announcementService.DeleteAnnouncement(c.Request.Context(), announcementID, ownerAdminID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
