package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Weekday names a day of the recurring weekly timetable.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the timetable days in display order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Index returns the display position of the day, or -1 when unknown.
func (d Weekday) Index() int {
	for i, day := range Weekdays {
		if day == d {
			return i
		}
	}
	return -1
}

// Valid reports whether d is one of the seven weekday names.
func (d Weekday) Valid() bool {
	return d.Index() >= 0
}

// SlotType is the kind of session held in a time slot.
type SlotType string

const (
	SlotLecture  SlotType = "lecture"
	SlotLab      SlotType = "lab"
	SlotTutorial SlotType = "tutorial"
)

// Valid reports whether t is a known slot type.
func (t SlotType) Valid() bool {
	switch t {
	case SlotLecture, SlotLab, SlotTutorial:
		return true
	}
	return false
}

// TimeSlot is a recurring weekly occurrence of a course session.
type TimeSlot struct {
	ID        string   `json:"id"`
	CourseID  string   `json:"courseId"`
	Day       Weekday  `json:"day"`
	StartTime string   `json:"startTime"`
	EndTime   string   `json:"endTime"`
	Room      string   `json:"room"`
	Type      SlotType `json:"type"`
}

// SlotFields are the movable parts of a time slot (everything except id and course).
type SlotFields struct {
	Day       Weekday  `json:"day" validate:"required"`
	StartTime string   `json:"startTime" validate:"required"`
	EndTime   string   `json:"endTime" validate:"required"`
	Room      string   `json:"room" validate:"required"`
	Type      SlotType `json:"type" validate:"required"`
}

// Fields returns the movable fields of the slot.
func (s TimeSlot) Fields() SlotFields {
	return SlotFields{Day: s.Day, StartTime: s.StartTime, EndTime: s.EndTime, Room: s.Room, Type: s.Type}
}

// ApplyFields overwrites day, times, room and type. ID and CourseID are preserved.
func (s *TimeSlot) ApplyFields(f SlotFields) {
	s.Day = f.Day
	s.StartTime = f.StartTime
	s.EndTime = f.EndTime
	s.Room = f.Room
	s.Type = f.Type
}

// Overlaps reports whether both slots share a day and their time ranges intersect.
// Malformed times never overlap.
func (s TimeSlot) Overlaps(other TimeSlot) bool {
	if s.Day != other.Day {
		return false
	}
	start, end, err := SlotRange(s.StartTime, s.EndTime)
	if err != nil {
		return false
	}
	oStart, oEnd, err := SlotRange(other.StartTime, other.EndTime)
	if err != nil {
		return false
	}
	return start < oEnd && oStart < end
}

// TimeSlotPatch carries a partial time slot update.
type TimeSlotPatch struct {
	CourseID  *string   `json:"courseId"`
	Day       *Weekday  `json:"day"`
	StartTime *string   `json:"startTime"`
	EndTime   *string   `json:"endTime"`
	Room      *string   `json:"room"`
	Type      *SlotType `json:"type"`
}

// Apply merges the patch into the slot.
func (s *TimeSlot) Apply(p TimeSlotPatch) {
	if p.CourseID != nil {
		s.CourseID = *p.CourseID
	}
	if p.Day != nil {
		s.Day = *p.Day
	}
	if p.StartTime != nil {
		s.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		s.EndTime = *p.EndTime
	}
	if p.Room != nil {
		s.Room = *p.Room
	}
	if p.Type != nil {
		s.Type = *p.Type
	}
}

// ClockMinutes parses a 24h "HH:MM" value into minutes after midnight.
func ClockMinutes(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("time %q must use HH:MM", value)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("time %q has invalid hour", value)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("time %q has invalid minute", value)
	}
	return hours*60 + minutes, nil
}

// SlotRange parses a start/end pair and requires start to be before end.
func SlotRange(startTime, endTime string) (int, int, error) {
	start, err := ClockMinutes(startTime)
	if err != nil {
		return 0, 0, err
	}
	end, err := ClockMinutes(endTime)
	if err != nil {
		return 0, 0, err
	}
	if start >= end {
		return 0, 0, fmt.Errorf("start time %s must be before end time %s", startTime, endTime)
	}
	return start, end, nil
}

// Format12h renders "14:05" as "2:05 PM". Unparseable input is returned as-is.
func Format12h(value string) string {
	minutes, err := ClockMinutes(value)
	if err != nil {
		return value
	}
	hour := minutes / 60
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour
	switch {
	case hour > 12:
		display = hour - 12
	case hour == 0:
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, minutes%60, suffix)
}
