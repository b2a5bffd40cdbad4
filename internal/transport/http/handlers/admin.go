package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/CaptainBright/Alumni-Connect-DEP/internal/core/domain"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/transport/http/middleware"
	"github.com/CaptainBright/Alumni-Connect-DEP/internal/usecase"
)

// AdminHandler exposes the review queue endpoints. All routes require an
// approved administrator session.
type AdminHandler struct {
	lifecycle *usecase.LifecycleService
}

func NewAdminHandler(lifecycle *usecase.LifecycleService) *AdminHandler {
	return &AdminHandler{lifecycle: lifecycle}
}

// RegisterRoutes binds admin endpoints onto the group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profiles", h.ListProfiles)
	r.POST("/approve", h.Approve)
	r.POST("/reject", h.Reject)
}

// ListProfiles returns member profiles, optionally filtered by approval
// status via ?status=.
func (h *AdminHandler) ListProfiles(c *gin.Context) {
	actor := middleware.ProfileFromContext(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "not authenticated"))
		return
	}

	var status *domain.ApprovalStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		normalized := domain.NormalizeApprovalStatus(raw)
		if !strings.EqualFold(raw, string(normalized)) {
			c.JSON(http.StatusBadRequest, NewErrorResponse(c, "unknown status filter"))
			return
		}
		status = &normalized
	}

	profiles, err := h.lifecycle.ListProfiles(c.Request.Context(), actor.ID, status)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAdminRequired, Status: http.StatusForbidden, Message: "administrator access required"},
		}, http.StatusInternalServerError, "failed to list profiles")
		return
	}

	summaries := make([]ProfileSummary, 0, len(profiles))
	for _, p := range profiles {
		summaries = append(summaries, newProfileSummary(p))
	}

	c.JSON(http.StatusOK, ProfileListResponse{Profiles: summaries})
}

// Approve transitions the profile to APPROVED.
func (h *AdminHandler) Approve(c *gin.Context) {
	actor := middleware.ProfileFromContext(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "not authenticated"))
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "profile id is required"))
		return
	}

	profile, err := h.lifecycle.Approve(c.Request.Context(), actor.ID, req.ID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAdminRequired, Status: http.StatusForbidden, Message: "administrator access required"},
			{Err: usecase.ErrProfileNotFound, Status: http.StatusNotFound, Message: "profile not found"},
		}, http.StatusInternalServerError, "failed to approve profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "profile approved",
		"profile": newProfileSummary(*profile),
	})
}

// Reject transitions the profile to REJECTED with reviewer notes.
func (h *AdminHandler) Reject(c *gin.Context) {
	actor := middleware.ProfileFromContext(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "not authenticated"))
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "profile id is required"))
		return
	}

	profile, err := h.lifecycle.Reject(c.Request.Context(), actor.ID, req.ID, req.Notes)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAdminRequired, Status: http.StatusForbidden, Message: "administrator access required"},
			{Err: usecase.ErrProfileNotFound, Status: http.StatusNotFound, Message: "profile not found"},
		}, http.StatusInternalServerError, "failed to reject profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "profile rejected",
		"profile": newProfileSummary(*profile),
	})
}
