package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/noah-isme/timetable-api/internal/models"
)

// UserDirectory is the in-memory account registry backing the mocked login.
type UserDirectory struct {
	mu    sync.RWMutex
	users []models.User
}

// NewUserDirectory builds a directory holding the provided users.
func NewUserDirectory(users ...models.User) *UserDirectory {
	d := &UserDirectory{}
	d.users = append(d.users, users...)
	return d
}

// DemoUsers lists the accounts known to a fresh deployment.
func DemoUsers() []models.User {
	return []models.User{
		{ID: "1", Name: "Dr. Admin Kumar", Email: "admin@iiti.ac.in", Role: models.RoleAdmin, Department: "Administration"},
		{ID: "2", Name: "Rahul Sharma", Email: "student@iiti.ac.in", Role: models.RoleStudent, Department: "Computer Science", Semester: 6},
		{ID: "3", Name: "Dr. Priya Singh", Email: "professor@iiti.ac.in", Role: models.RoleProfessor, Department: "Computer Science"},
		{ID: "4", Name: "Dr. Amit Gupta", Email: "amit.gupta@iiti.ac.in", Role: models.RoleProfessor, Department: "Computer Science"},
		{ID: "5", Name: "Dr. Rajesh Kumar", Email: "rajesh.kumar@iiti.ac.in", Role: models.RoleProfessor, Department: "Computer Science"},
		{ID: "6", Name: "Dr. Neha Sharma", Email: "neha.sharma@iiti.ac.in", Role: models.RoleProfessor, Department: "Computer Science"},
	}
}

// FindByEmail looks a user up case-insensitively.
func (d *UserDirectory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	email = strings.TrimSpace(email)
	for _, u := range d.users {
		if strings.EqualFold(u.Email, email) {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// FindByID returns the user with the given id.
func (d *UserDirectory) FindByID(ctx context.Context, id string) (*models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, u := range d.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

// Register adds a user, replacing any existing record with the same id.
func (d *UserDirectory) Register(ctx context.Context, user models.User) error {
	if user.ID == "" {
		return fmt.Errorf("register user: empty id")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.users {
		if d.users[i].ID == user.ID {
			d.users[i] = user
			return nil
		}
	}
	d.users = append(d.users, user)
	return nil
}

// ListByRole returns every user holding the role.
func (d *UserDirectory) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	result := make([]models.User, 0)
	for _, u := range d.users {
		if u.Role == role {
			result = append(result, u)
		}
	}
	return result, nil
}
