package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
)

var fixedNow = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

func newSeededStore(t *testing.T) *repository.EntityStore {
	t.Helper()
	seq := 0
	store := repository.NewEntityStore(
		repository.WithClock(func() time.Time { return fixedNow }),
		repository.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("gen-%d", seq)
		}),
	)
	require.NoError(t, repository.SeedDemoData(store))
	return store
}

func adminClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "1", Role: models.RoleAdmin, Department: "Administration"}
}

func professorClaims(id string) *models.JWTClaims {
	return &models.JWTClaims{UserID: id, Role: models.RoleProfessor, Department: "Computer Science"}
}

func studentClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "2", Role: models.RoleStudent, Department: "Computer Science", Semester: 6}
}

type recordingPublisher struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (p *recordingPublisher) Publish(_ context.Context, notifications []models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, notifications...)
}

type recordingAudit struct {
	mu   sync.Mutex
	logs []models.AuditLog
}

func (a *recordingAudit) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, *log)
	return nil
}

func (a *recordingAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.logs))
	for _, l := range a.logs {
		out = append(out, l.Action)
	}
	return out
}
