package models

// RoomType classifies teaching spaces.
type RoomType string

const (
	RoomClassroom  RoomType = "classroom"
	RoomLab        RoomType = "lab"
	RoomSeminar    RoomType = "seminar"
	RoomAuditorium RoomType = "auditorium"
)

// Room is static reference data.
type Room struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Type      RoomType `json:"type"`
	Building  string   `json:"building"`
	Floor     int      `json:"floor"`
	Equipment []string `json:"equipment"`
}
