package repository

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/timetable-api/internal/models"
)

var (
	// ErrNotFound is returned when a referenced id is absent. The store is left unchanged.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID is returned when inserting an entity whose preset id already exists.
	ErrDuplicateID = errors.New("duplicate id")
)

// EntityStore holds the canonical in-memory collections. Reads return copies;
// all mutations go through a Tx so multi-entity workflows stay atomic.
type EntityStore struct {
	mu    sync.RWMutex
	now   func() time.Time
	newID func() string

	courses       *table[models.Course]
	slots         *table[models.TimeSlot]
	notifications *table[models.Notification]
	requests      *table[models.TimingChangeRequest]
	polls         *table[models.Poll]
	rooms         *table[models.Room]
}

// EntityStoreOption configures the store.
type EntityStoreOption func(*EntityStore)

// WithClock overrides the time source used for generated timestamps.
func WithClock(now func() time.Time) EntityStoreOption {
	return func(s *EntityStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides identifier generation.
func WithIDGenerator(gen func() string) EntityStoreOption {
	return func(s *EntityStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewEntityStore builds an empty store.
func NewEntityStore(opts ...EntityStoreOption) *EntityStore {
	s := &EntityStore{
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
		courses:       newTable[models.Course](),
		slots:         newTable[models.TimeSlot](),
		notifications: newTable[models.Notification](),
		requests:      newTable[models.TimingChangeRequest](),
		polls:         newTable[models.Poll](),
		rooms:         newTable[models.Room](),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Update runs fn under the write lock. When fn returns an error every mutation
// it made is rolled back before the lock is released.
func (s *EntityStore) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &Tx{store: s}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

// View runs fn under the read lock. Mutating through the Tx inside View is a programming error.
func (s *EntityStore) View(fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{store: s, readOnly: true})
}

// Courses returns a snapshot of all courses.
func (s *EntityStore) Courses() []models.Course {
	var out []models.Course
	_ = s.View(func(tx *Tx) error {
		out = tx.Courses(nil)
		return nil
	})
	return out
}

// TimeSlots returns a snapshot of all time slots.
func (s *EntityStore) TimeSlots() []models.TimeSlot {
	var out []models.TimeSlot
	_ = s.View(func(tx *Tx) error {
		out = tx.TimeSlots(nil)
		return nil
	})
	return out
}

// Notifications returns all notifications, newest first.
func (s *EntityStore) Notifications() []models.Notification {
	var out []models.Notification
	_ = s.View(func(tx *Tx) error {
		out = tx.Notifications(nil)
		return nil
	})
	return out
}

// TimingRequests returns a snapshot of all timing change requests.
func (s *EntityStore) TimingRequests() []models.TimingChangeRequest {
	var out []models.TimingChangeRequest
	_ = s.View(func(tx *Tx) error {
		out = tx.TimingRequests(nil)
		return nil
	})
	return out
}

// Polls returns deep copies of all polls.
func (s *EntityStore) Polls() []models.Poll {
	var out []models.Poll
	_ = s.View(func(tx *Tx) error {
		out = tx.Polls(nil)
		return nil
	})
	return out
}

// Rooms returns the static room list.
func (s *EntityStore) Rooms() []models.Room {
	var out []models.Room
	_ = s.View(func(tx *Tx) error {
		out = tx.Rooms()
		return nil
	})
	return out
}

// AddCourse stores a course and returns it with its assigned id.
func (s *EntityStore) AddCourse(course models.Course) (models.Course, error) {
	err := s.Update(func(tx *Tx) error {
		var err error
		course, err = tx.AddCourse(course)
		return err
	})
	return course, err
}

// UpdateCourse merges patch into the course with the given id.
func (s *EntityStore) UpdateCourse(id string, patch models.CoursePatch) (models.Course, error) {
	var course models.Course
	err := s.Update(func(tx *Tx) error {
		var err error
		course, err = tx.UpdateCourse(id, patch)
		return err
	})
	return course, err
}

// DeleteCourse removes the course and its time slots, returning how many slots went with it.
func (s *EntityStore) DeleteCourse(id string) (int, error) {
	var removed int
	err := s.Update(func(tx *Tx) error {
		var err error
		removed, err = tx.DeleteCourse(id)
		return err
	})
	return removed, err
}

// AddTimeSlot stores a time slot and returns it with its assigned id.
func (s *EntityStore) AddTimeSlot(slot models.TimeSlot) (models.TimeSlot, error) {
	err := s.Update(func(tx *Tx) error {
		var err error
		slot, err = tx.AddTimeSlot(slot)
		return err
	})
	return slot, err
}

// UpdateTimeSlot merges patch into the slot with the given id.
func (s *EntityStore) UpdateTimeSlot(id string, patch models.TimeSlotPatch) (models.TimeSlot, error) {
	var slot models.TimeSlot
	err := s.Update(func(tx *Tx) error {
		var err error
		slot, err = tx.UpdateTimeSlot(id, patch)
		return err
	})
	return slot, err
}

// DeleteTimeSlot removes a single time slot.
func (s *EntityStore) DeleteTimeSlot(id string) error {
	return s.Update(func(tx *Tx) error {
		return tx.DeleteTimeSlot(id)
	})
}

// AddNotification stores a notification at the head of the list.
func (s *EntityStore) AddNotification(n models.Notification) (models.Notification, error) {
	err := s.Update(func(tx *Tx) error {
		var err error
		n, err = tx.AddNotification(n)
		return err
	})
	return n, err
}

// MarkNotificationRead flags the notification as read.
func (s *EntityStore) MarkNotificationRead(id string) (models.Notification, error) {
	var n models.Notification
	err := s.Update(func(tx *Tx) error {
		var err error
		n, err = tx.MarkNotificationRead(id)
		return err
	})
	return n, err
}

// Tx exposes the store primitives to a single Update or View call.
type Tx struct {
	store    *EntityStore
	readOnly bool
	undo     []func()
}

// Now returns the store clock reading.
func (tx *Tx) Now() time.Time {
	return tx.store.now()
}

func (tx *Tx) record(fn func()) {
	if tx.readOnly {
		panic("repository: mutation inside View")
	}
	tx.undo = append(tx.undo, fn)
}

func (tx *Tx) rollback() {
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

func (tx *Tx) assignID(id string, exists func(string) bool) (string, error) {
	if id == "" {
		return tx.store.newID(), nil
	}
	if exists(id) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateID, id)
	}
	return id, nil
}

// Course returns the course with the given id.
func (tx *Tx) Course(id string) (models.Course, error) {
	course, ok := tx.store.courses.get(id)
	if !ok {
		return models.Course{}, ErrNotFound
	}
	return course, nil
}

// Courses lists courses in insertion order.
func (tx *Tx) Courses(match func(models.Course) bool) []models.Course {
	return tx.store.courses.list(match)
}

// AddCourse inserts a course, generating an id when none is preset.
func (tx *Tx) AddCourse(course models.Course) (models.Course, error) {
	t := tx.store.courses
	id, err := tx.assignID(course.ID, t.has)
	if err != nil {
		return models.Course{}, err
	}
	course.ID = id
	t.appendItem(id, course)
	tx.record(func() { t.remove(id) })
	return course, nil
}

// UpdateCourse merges patch into the stored course.
func (tx *Tx) UpdateCourse(id string, patch models.CoursePatch) (models.Course, error) {
	t := tx.store.courses
	course, ok := t.get(id)
	if !ok {
		return models.Course{}, ErrNotFound
	}
	course.Apply(patch)
	prev, _ := t.set(id, course)
	tx.record(func() { t.set(id, prev) })
	return course, nil
}

// DeleteCourse removes the course and every time slot it owns. Polls of the course are
// closed; their votes stay readable for administrators.
func (tx *Tx) DeleteCourse(id string) (int, error) {
	t := tx.store.courses
	prev, idx, ok := t.remove(id)
	if !ok {
		return 0, ErrNotFound
	}
	tx.record(func() { t.insertAt(idx, id, prev) })

	removed := 0
	for _, slot := range tx.TimeSlots(func(s models.TimeSlot) bool { return s.CourseID == id }) {
		if err := tx.DeleteTimeSlot(slot.ID); err != nil {
			return removed, err
		}
		removed++
	}
	for _, poll := range tx.Polls(func(p models.Poll) bool { return p.CourseID == id && p.IsActive }) {
		poll.IsActive = false
		if err := tx.SavePoll(poll); err != nil {
			return removed, err
		}
	}
	return removed, nil
}

// TimeSlot returns the slot with the given id.
func (tx *Tx) TimeSlot(id string) (models.TimeSlot, error) {
	slot, ok := tx.store.slots.get(id)
	if !ok {
		return models.TimeSlot{}, ErrNotFound
	}
	return slot, nil
}

// TimeSlots lists slots in insertion order.
func (tx *Tx) TimeSlots(match func(models.TimeSlot) bool) []models.TimeSlot {
	return tx.store.slots.list(match)
}

// AddTimeSlot inserts a slot, generating an id when none is preset.
func (tx *Tx) AddTimeSlot(slot models.TimeSlot) (models.TimeSlot, error) {
	t := tx.store.slots
	id, err := tx.assignID(slot.ID, t.has)
	if err != nil {
		return models.TimeSlot{}, err
	}
	slot.ID = id
	t.appendItem(id, slot)
	tx.record(func() { t.remove(id) })
	return slot, nil
}

// UpdateTimeSlot merges patch into the stored slot. The id never changes.
func (tx *Tx) UpdateTimeSlot(id string, patch models.TimeSlotPatch) (models.TimeSlot, error) {
	t := tx.store.slots
	slot, ok := t.get(id)
	if !ok {
		return models.TimeSlot{}, ErrNotFound
	}
	slot.Apply(patch)
	slot.ID = id
	prev, _ := t.set(id, slot)
	tx.record(func() { t.set(id, prev) })
	return slot, nil
}

// DeleteTimeSlot removes a single slot.
func (tx *Tx) DeleteTimeSlot(id string) error {
	t := tx.store.slots
	prev, idx, ok := t.remove(id)
	if !ok {
		return ErrNotFound
	}
	tx.record(func() { t.insertAt(idx, id, prev) })
	return nil
}

// Notifications lists notifications newest first.
func (tx *Tx) Notifications(match func(models.Notification) bool) []models.Notification {
	return tx.store.notifications.list(match)
}

// Notification returns the notification with the given id.
func (tx *Tx) Notification(id string) (models.Notification, error) {
	n, ok := tx.store.notifications.get(id)
	if !ok {
		return models.Notification{}, ErrNotFound
	}
	return n, nil
}

// AddNotification prepends a notification, stamping id and createdAt when unset.
func (tx *Tx) AddNotification(n models.Notification) (models.Notification, error) {
	t := tx.store.notifications
	id, err := tx.assignID(n.ID, t.has)
	if err != nil {
		return models.Notification{}, err
	}
	n.ID = id
	if n.CreatedAt.IsZero() {
		n.CreatedAt = tx.Now()
	}
	t.prependItem(id, n)
	tx.record(func() { t.remove(id) })
	return n, nil
}

// MarkNotificationRead sets read=true. Marking an already read notification is a no-op.
func (tx *Tx) MarkNotificationRead(id string) (models.Notification, error) {
	t := tx.store.notifications
	n, ok := t.get(id)
	if !ok {
		return models.Notification{}, ErrNotFound
	}
	if n.Read {
		return n, nil
	}
	prev := n
	n.Read = true
	t.set(id, n)
	tx.record(func() { t.set(id, prev) })
	return n, nil
}

// TimingRequest returns the request with the given id.
func (tx *Tx) TimingRequest(id string) (models.TimingChangeRequest, error) {
	r, ok := tx.store.requests.get(id)
	if !ok {
		return models.TimingChangeRequest{}, ErrNotFound
	}
	return r, nil
}

// TimingRequests lists requests in submission order.
func (tx *Tx) TimingRequests(match func(models.TimingChangeRequest) bool) []models.TimingChangeRequest {
	return tx.store.requests.list(match)
}

// AddTimingRequest inserts a request, stamping id and createdAt when unset.
func (tx *Tx) AddTimingRequest(r models.TimingChangeRequest) (models.TimingChangeRequest, error) {
	t := tx.store.requests
	id, err := tx.assignID(r.ID, t.has)
	if err != nil {
		return models.TimingChangeRequest{}, err
	}
	r.ID = id
	if r.CreatedAt.IsZero() {
		r.CreatedAt = tx.Now()
	}
	t.appendItem(id, r)
	tx.record(func() { t.remove(id) })
	return r, nil
}

// SaveTimingRequest replaces a stored request.
func (tx *Tx) SaveTimingRequest(r models.TimingChangeRequest) error {
	t := tx.store.requests
	prev, ok := t.set(r.ID, r)
	if !ok {
		return ErrNotFound
	}
	tx.record(func() { t.set(r.ID, prev) })
	return nil
}

// Poll returns a deep copy of the poll with the given id.
func (tx *Tx) Poll(id string) (models.Poll, error) {
	p, ok := tx.store.polls.get(id)
	if !ok {
		return models.Poll{}, ErrNotFound
	}
	return p.Clone(), nil
}

// Polls lists deep copies of polls in creation order.
func (tx *Tx) Polls(match func(models.Poll) bool) []models.Poll {
	polls := tx.store.polls.list(match)
	for i := range polls {
		polls[i] = polls[i].Clone()
	}
	return polls
}

// AddPoll inserts a poll, stamping ids and createdAt when unset.
func (tx *Tx) AddPoll(p models.Poll) (models.Poll, error) {
	t := tx.store.polls
	id, err := tx.assignID(p.ID, t.has)
	if err != nil {
		return models.Poll{}, err
	}
	p = p.Clone()
	p.ID = id
	if p.CreatedAt.IsZero() {
		p.CreatedAt = tx.Now()
	}
	for i := range p.Options {
		if p.Options[i].ID == "" {
			p.Options[i].ID = tx.store.newID()
		}
	}
	t.appendItem(id, p)
	tx.record(func() { t.remove(id) })
	return p.Clone(), nil
}

// SavePoll replaces a stored poll.
func (tx *Tx) SavePoll(p models.Poll) error {
	t := tx.store.polls
	prev, ok := t.set(p.ID, p.Clone())
	if !ok {
		return ErrNotFound
	}
	tx.record(func() { t.set(p.ID, prev) })
	return nil
}

// Room returns the room with the given id.
func (tx *Tx) Room(id string) (models.Room, error) {
	room, ok := tx.store.rooms.get(id)
	if !ok {
		return models.Room{}, ErrNotFound
	}
	room.Equipment = append([]string(nil), room.Equipment...)
	return room, nil
}

// Rooms lists rooms in insertion order.
func (tx *Tx) Rooms() []models.Room {
	rooms := tx.store.rooms.list(nil)
	for i := range rooms {
		rooms[i].Equipment = append([]string(nil), rooms[i].Equipment...)
	}
	return rooms
}

// AddRoom registers reference room data.
func (tx *Tx) AddRoom(room models.Room) (models.Room, error) {
	t := tx.store.rooms
	id, err := tx.assignID(room.ID, t.has)
	if err != nil {
		return models.Room{}, err
	}
	room.ID = id
	t.appendItem(id, room)
	tx.record(func() { t.remove(id) })
	return room, nil
}
