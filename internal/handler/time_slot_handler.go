package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type timeSlotService interface {
	List(ctx context.Context, query dto.TimeSlotQuery, actor *models.JWTClaims) ([]models.TimeSlot, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.TimeSlot, error)
	Create(ctx context.Context, req dto.CreateTimeSlotRequest, actor *models.JWTClaims) (*models.TimeSlot, error)
	Update(ctx context.Context, id string, req dto.UpdateTimeSlotRequest, actor *models.JWTClaims) (*models.TimeSlot, error)
	Delete(ctx context.Context, id string, actor *models.JWTClaims) error
	Conflicts(ctx context.Context, query dto.ConflictQuery) ([]models.TimeSlot, error)
}

// TimeSlotHandler serves the weekly timetable entries.
type TimeSlotHandler struct {
	service timeSlotService
}

// NewTimeSlotHandler constructs the handler.
func NewTimeSlotHandler(svc timeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{service: svc}
}

// List godoc
// @Summary List time slots
// @Tags Time Slots
// @Produce json
// @Param courseId query string false "Course filter"
// @Param day query string false "Weekday filter"
// @Param room query string false "Room filter"
// @Success 200 {object} response.Envelope
// @Router /time-slots [get]
func (h *TimeSlotHandler) List(c *gin.Context) {
	var query dto.TimeSlotQuery
	if !bindQuery(c, &query, "invalid query parameters") {
		return
	}
	slots, err := h.service.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, slots, listMeta(c, len(slots)))
}

// Get godoc
// @Summary Get time slot
// @Tags Time Slots
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Envelope
// @Router /time-slots/{id} [get]
func (h *TimeSlotHandler) Get(c *gin.Context) {
	slot, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, slot)
}

// Create godoc
// @Summary Create time slot
// @Tags Time Slots
// @Accept json
// @Param payload body dto.CreateTimeSlotRequest true "Slot payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /time-slots [post]
func (h *TimeSlotHandler) Create(c *gin.Context) {
	var req dto.CreateTimeSlotRequest
	if !bindJSON(c, &req, "invalid time slot payload") {
		return
	}
	slot, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Update time slot
// @Tags Time Slots
// @Accept json
// @Param id path string true "Slot ID"
// @Param payload body dto.UpdateTimeSlotRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /time-slots/{id} [put]
func (h *TimeSlotHandler) Update(c *gin.Context) {
	var req dto.UpdateTimeSlotRequest
	if !bindJSON(c, &req, "invalid time slot payload") {
		return
	}
	slot, err := h.service.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, slot)
}

// Delete godoc
// @Summary Delete time slot
// @Tags Time Slots
// @Param id path string true "Slot ID"
// @Success 204
// @Router /time-slots/{id} [delete]
func (h *TimeSlotHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Conflicts godoc
// @Summary List slots colliding with a candidate placement
// @Tags Time Slots
// @Param day query string true "Weekday"
// @Param startTime query string true "HH:MM"
// @Param endTime query string true "HH:MM"
// @Param room query string true "Room"
// @Param excludeId query string false "Slot to ignore"
// @Success 200 {object} response.Envelope
// @Router /time-slots/conflicts [get]
func (h *TimeSlotHandler) Conflicts(c *gin.Context) {
	var query dto.ConflictQuery
	if !bindQuery(c, &query, "invalid conflict query") {
		return
	}
	conflicts, err := h.service.Conflicts(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, conflicts, listMeta(c, len(conflicts)))
}
