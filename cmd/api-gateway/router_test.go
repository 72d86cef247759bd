package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewEntityStore()
	require.NoError(t, repository.SeedDemoData(store))
	users := repository.NewUserDirectory(repository.DemoUsers()...)
	logr := zap.NewNop()
	metrics := service.NewMetricsService()
	auth := service.NewAuthService(users, repository.NewMemorySessionRepository(), nil, logr, service.AuthConfig{
		AccessTokenSecret: "router-test",
		AccessTokenExpiry: time.Hour,
	})

	return newRouter(routerDeps{
		apiPrefix:     "/api/v1",
		logger:        logr,
		metrics:       metrics,
		loginLimiter:  middleware.NewIPRateLimiter(0, 0),
		auth:          auth,
		courses:       service.NewCourseService(store, nil, nil, logr),
		timeSlots:     service.NewTimeSlotService(store, nil, nil, logr),
		rooms:         service.NewRoomService(store),
		requests:      service.NewTimingRequestService(store, users, nil, logr),
		polls:         service.NewPollService(store, nil, logr),
		notifications: service.NewNotificationService(store, logr),
		dashboard:     service.NewDashboardService(store, logr),
		export:        service.NewExportService(store, logr),
	})
}

func call(t *testing.T, r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope map[string]interface{}
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	}
	return w, envelope
}

func login(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	w, envelope := call(t, r, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": "demo"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := envelope["data"].(map[string]interface{})
	return data["access_token"].(string)
}

func TestScheduleChangeFlowOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	professor := login(t, r, "professor@iiti.ac.in")
	admin := login(t, r, "admin@iiti.ac.in")
	student := login(t, r, "student@iiti.ac.in")

	w, envelope := call(t, r, http.MethodPost, "/api/v1/timing-requests", professor, map[string]interface{}{
		"courseId":      "7",
		"currentSlotId": "17",
		"proposedSlot":  map[string]string{"day": "Thursday", "startTime": "15:00", "endTime": "16:30", "room": "CR-107", "type": "lecture"},
		"reason":        "Department seminar clash",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := envelope["data"].(map[string]interface{})["id"].(string)

	w, _ = call(t, r, http.MethodPost, "/api/v1/timing-requests/"+id+"/decision", professor, map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, envelope = call(t, r, http.MethodPost, "/api/v1/timing-requests/"+id+"/decision", admin, map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "approved", envelope["data"].(map[string]interface{})["status"])

	w, envelope = call(t, r, http.MethodPost, "/api/v1/timing-requests/"+id+"/decision", admin, map[string]string{"status": "rejected"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATE", envelope["error"].(map[string]interface{})["code"])

	w, envelope = call(t, r, http.MethodGet, "/api/v1/time-slots/17", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	slot := envelope["data"].(map[string]interface{})
	assert.Equal(t, "15:00", slot["startTime"])
	assert.Equal(t, "7", slot["courseId"])

	w, envelope = call(t, r, http.MethodGet, "/api/v1/notifications/unread-count", student, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, envelope["data"].(map[string]interface{})["unread"])
}

func TestPollVotingOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	student := login(t, r, "student@iiti.ac.in")
	professor := login(t, r, "professor@iiti.ac.in")

	w, _ := call(t, r, http.MethodPost, "/api/v1/polls/1/votes", professor, map[string]string{"optionId": "1"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, envelope := call(t, r, http.MethodPost, "/api/v1/polls/1/votes", student, map[string]string{"optionId": "2"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tally := envelope["data"].(map[string]interface{})["tally"].(map[string]interface{})
	assert.Equal(t, 10.0, tally["totalVotes"])

	w, _ = call(t, r, http.MethodPost, "/api/v1/polls/1/close", professor, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, envelope = call(t, r, http.MethodPost, "/api/v1/polls/1/votes", student, map[string]string{"optionId": "1"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_STATE", envelope["error"].(map[string]interface{})["code"])
}

func TestLogoutRevokesToken(t *testing.T) {
	r := newTestRouter(t)
	token := login(t, r, "admin@iiti.ac.in")

	w, _ := call(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = call(t, r, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w, _ = call(t, r, http.MethodGet, "/api/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = call(t, r, http.MethodGet, "/api/v1/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
