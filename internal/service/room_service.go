package service

import (
	"context"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
)

// RoomService exposes the static room directory.
type RoomService struct {
	store entityStore
}

// NewRoomService constructs a RoomService.
func NewRoomService(store entityStore) *RoomService {
	return &RoomService{store: store}
}

// List returns every room.
func (s *RoomService) List(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := s.store.View(func(tx *repository.Tx) error {
		rooms = tx.Rooms()
		return nil
	})
	return rooms, storeError(err, "room not found")
}

// Get returns a room by id.
func (s *RoomService) Get(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	err := s.store.View(func(tx *repository.Tx) error {
		var err error
		room, err = tx.Room(id)
		return err
	})
	if err != nil {
		return nil, storeError(err, "room not found")
	}
	return &room, nil
}
