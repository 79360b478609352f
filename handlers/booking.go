package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	bookingRepo "meetsync/database/repository/booking"
	"meetsync/models"
	"meetsync/services/scheduling"
	"meetsync/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// BookingHandler exposes the scheduling coordinator over HTTP.
type BookingHandler struct {
	Svc    scheduling.SchedulingService
	Cache  *redis.Client
	Logger *zap.Logger
}

func NewBookingHandler(svc scheduling.SchedulingService, cache *redis.Client, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Svc: svc, Cache: cache, Logger: logger}
}

// submitRequest is the wire shape of a booking candidate.
type submitRequest struct {
	Title        string               `json:"title"`
	Type         models.BookingType   `json:"type"`
	Start        time.Time            `json:"start"`
	End          time.Time            `json:"end"`
	Priority     bool                 `json:"priority"`
	AutoApprove  bool                 `json:"autoApprove"`
	IsVirtual    bool                 `json:"isVirtual"`
	Participants []models.Participant `json:"participants"`
	Resources    []models.Resource    `json:"resources"`
	Force        bool                 `json:"force"`
}

// SubmitBooking handles POST /api/bookings.
func (h *BookingHandler) SubmitBooking(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	actorID := c.GetString("actorID")

	candidate := &models.Booking{
		Title:        req.Title,
		Type:         req.Type,
		Start:        req.Start,
		End:          req.End,
		OrganizerID:  actorID,
		Priority:     req.Priority,
		AutoApprove:  req.AutoApprove,
		IsVirtual:    req.IsVirtual,
		Participants: req.Participants,
		Resources:    req.Resources,
	}

	booking, conflicts, err := h.Svc.Submit(c.Request.Context(), actorID, candidate, req.Force)
	if err != nil {
		h.writeSchedulingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"booking":   booking,
		"conflicts": conflicts,
	})
}

// GetBooking handles GET /api/bookings/:id with a Redis read-through cache.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	if data, err := h.Cache.Get(ctx, utils.BookingCachePrefix+id).Bytes(); err == nil {
		var cached models.Booking
		if json.Unmarshal(data, &cached) == nil {
			c.JSON(http.StatusOK, gin.H{"booking": cached})
			return
		}
	}

	booking, err := h.Svc.Get(ctx, id)
	if err != nil {
		h.writeSchedulingError(c, err)
		return
	}

	if data, err := json.Marshal(booking); err == nil {
		if err := h.Cache.Set(ctx, utils.BookingCachePrefix+id, data, utils.BookingCacheTTL).Err(); err != nil {
			h.Logger.Warn("failed to cache booking", zap.String("bookingId", id), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// decisionRequest carries one approver decision.
type decisionRequest struct {
	Decision models.StepDecision `json:"decision"`
	Notes    string              `json:"notes"`
}

// DecideApproval handles POST /api/bookings/:id/decision.
func (h *BookingHandler) DecideApproval(c *gin.Context) {
	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	actorID := c.GetString("actorID")
	id := c.Param("id")

	booking, err := h.Svc.DecideApproval(c.Request.Context(), actorID, id, req.Decision, req.Notes)
	if err != nil {
		h.writeSchedulingError(c, err)
		return
	}
	h.invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// cancelRequest carries the cancellation reason.
type cancelRequest struct {
	Reason string `json:"reason"`
}

// CancelBooking handles POST /api/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	actorID := c.GetString("actorID")
	id := c.Param("id")

	booking, err := h.Svc.Cancel(c.Request.Context(), actorID, id, req.Reason)
	if err != nil {
		h.writeSchedulingError(c, err)
		return
	}
	h.invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"booking": booking})
}

// rescheduleRequest carries the new window.
type rescheduleRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Force bool      `json:"force"`
}

// RescheduleBooking handles POST /api/bookings/:id/reschedule.
func (h *BookingHandler) RescheduleBooking(c *gin.Context) {
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	actorID := c.GetString("actorID")
	id := c.Param("id")

	booking, conflicts, err := h.Svc.Reschedule(c.Request.Context(), actorID, id, req.Start, req.End, req.Force)
	if err != nil {
		h.writeSchedulingError(c, err)
		return
	}
	h.invalidate(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{
		"booking":   booking,
		"conflicts": conflicts,
	})
}

func (h *BookingHandler) invalidate(ctx context.Context, id string) {
	if err := h.Cache.Del(ctx, utils.BookingCachePrefix+id).Err(); err != nil {
		h.Logger.Warn("failed to invalidate booking cache", zap.String("bookingId", id), zap.Error(err))
	}
}

// writeSchedulingError maps the typed error taxonomy onto HTTP statuses.
func (h *BookingHandler) writeSchedulingError(c *gin.Context, err error) {
	var (
		valErr   *scheduling.ValidationError
		confErr  *scheduling.ConflictDetectedError
		stateErr *scheduling.InvalidStateTransitionError
		authErr  *scheduling.ApprovalNotAuthorizedError
	)
	switch {
	case errors.As(err, &valErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "validation failed",
			"violations": valErr.Violations,
		})
	case errors.As(err, &confErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":     "booking conflicts detected",
			"conflicts": confErr.Conflicts,
		})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{"error": stateErr.Error()})
	case errors.As(err, &authErr):
		c.JSON(http.StatusForbidden, gin.H{"error": authErr.Error()})
	case errors.Is(err, bookingRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
	default:
		h.Logger.Error("booking operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
