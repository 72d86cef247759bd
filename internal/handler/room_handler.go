package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type roomService interface {
	List(ctx context.Context) ([]models.Room, error)
	Get(ctx context.Context, id string) (*models.Room, error)
}

// RoomHandler exposes the room directory.
type RoomHandler struct {
	service roomService
}

// NewRoomHandler constructs the handler.
func NewRoomHandler(svc roomService) *RoomHandler {
	return &RoomHandler{service: svc}
}

// List godoc
// @Summary List rooms
// @Tags Rooms
// @Success 200 {object} response.Envelope
// @Router /rooms [get]
func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rooms, listMeta(c, len(rooms)))
}

// Get godoc
// @Summary Get room
// @Tags Rooms
// @Param id path string true "Room ID"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id} [get]
func (h *RoomHandler) Get(c *gin.Context) {
	room, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, room)
}
