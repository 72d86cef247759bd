package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/service"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
)

var adminClaims = &models.JWTClaims{UserID: "1", Role: models.RoleAdmin}

func newTestContext(method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	c.Set(middleware.ContextUserKey, adminClaims)
	return c, w
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type timingRequestServiceMock struct {
	listQuery dto.TimingRequestQuery
	decideID  string
	decideReq dto.DecideTimingRequest
	submitted *dto.SubmitTimingRequest
	resp      *models.TimingChangeRequest
	err       error
}

func (m *timingRequestServiceMock) Submit(ctx context.Context, req dto.SubmitTimingRequest, actor *models.JWTClaims) (*models.TimingChangeRequest, error) {
	m.submitted = &req
	return m.resp, m.err
}

func (m *timingRequestServiceMock) Decide(ctx context.Context, id string, req dto.DecideTimingRequest, actor *models.JWTClaims) (*models.TimingChangeRequest, error) {
	m.decideID = id
	m.decideReq = req
	return m.resp, m.err
}

func (m *timingRequestServiceMock) List(ctx context.Context, query dto.TimingRequestQuery, actor *models.JWTClaims) ([]models.TimingChangeRequest, error) {
	m.listQuery = query
	if m.err != nil {
		return nil, m.err
	}
	return []models.TimingChangeRequest{{ID: "1"}, {ID: "2"}}, nil
}

func (m *timingRequestServiceMock) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.TimingChangeRequest, error) {
	return m.resp, m.err
}

func TestTimingRequestHandlerListParsesStatuses(t *testing.T) {
	mockSvc := &timingRequestServiceMock{}
	h := NewTimingRequestHandler(mockSvc)
	c, w := newTestContext(http.MethodGet, "/timing-requests?status=pending,approved&courseId=1", nil)

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []models.RequestStatus{models.RequestStatusPending, models.RequestStatusApproved}, mockSvc.listQuery.Status)
	assert.Equal(t, "1", mockSvc.listQuery.CourseID)
	assert.EqualValues(t, 2, decode(t, w).Meta["count"])
}

func TestTimingRequestHandlerListRejectsUnknownStatus(t *testing.T) {
	h := NewTimingRequestHandler(&timingRequestServiceMock{})
	c, w := newTestContext(http.MethodGet, "/timing-requests?status=archived", nil)

	h.List(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTimingRequestHandlerDecide(t *testing.T) {
	mockSvc := &timingRequestServiceMock{resp: &models.TimingChangeRequest{ID: "7", Status: models.RequestStatusApproved}}
	h := NewTimingRequestHandler(mockSvc)
	c, w := newTestContext(http.MethodPost, "/timing-requests/7/decision", []byte(`{"status":"approved"}`))
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	h.Decide(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7", mockSvc.decideID)
	assert.Equal(t, models.RequestStatusApproved, mockSvc.decideReq.Status)
}

func TestTimingRequestHandlerDecideInvalidState(t *testing.T) {
	mockSvc := &timingRequestServiceMock{err: appErrors.Clone(appErrors.ErrInvalidState, "timing request already approved")}
	h := NewTimingRequestHandler(mockSvc)
	c, w := newTestContext(http.MethodPost, "/timing-requests/7/decision", []byte(`{"status":"rejected"}`))
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	h.Decide(c)

	require.Equal(t, http.StatusConflict, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)
}

func TestTimingRequestHandlerSubmitBadJSON(t *testing.T) {
	mockSvc := &timingRequestServiceMock{}
	h := NewTimingRequestHandler(mockSvc)
	c, w := newTestContext(http.MethodPost, "/timing-requests", []byte(`{"courseId":`))

	h.Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, mockSvc.submitted)
}

type pollServiceMock struct {
	poll    *models.Poll
	query   dto.PollQuery
	voteReq dto.CastVoteRequest
	err     error
}

func (m *pollServiceMock) Create(ctx context.Context, req dto.CreatePollRequest, actor *models.JWTClaims) (*models.Poll, error) {
	return m.poll, m.err
}

func (m *pollServiceMock) CastVote(ctx context.Context, pollID string, req dto.CastVoteRequest, actor *models.JWTClaims) (*models.Poll, error) {
	m.voteReq = req
	return m.poll, m.err
}

func (m *pollServiceMock) Close(ctx context.Context, pollID string, actor *models.JWTClaims) (*models.Poll, error) {
	return m.poll, m.err
}

func (m *pollServiceMock) List(ctx context.Context, query dto.PollQuery, actor *models.JWTClaims) ([]models.Poll, error) {
	m.query = query
	return []models.Poll{}, m.err
}

func (m *pollServiceMock) Get(ctx context.Context, pollID string, actor *models.JWTClaims) (*models.Poll, *models.PollTally, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	tally := m.poll.Tally()
	return m.poll, &tally, nil
}

func samplePoll() *models.Poll {
	return &models.Poll{
		ID: "p1",
		Options: []models.PollOption{
			{ID: "a", Votes: 1, Voters: []string{"u1"}},
			{ID: "b", Votes: 3, Voters: []string{"u2", "u3", "u4"}},
		},
	}
}

func TestPollHandlerVoteReturnsTally(t *testing.T) {
	mockSvc := &pollServiceMock{poll: samplePoll()}
	h := NewPollHandler(mockSvc)
	c, w := newTestContext(http.MethodPost, "/polls/p1/votes", []byte(`{"optionId":"b"}`))
	c.Params = gin.Params{{Key: "id", Value: "p1"}}

	h.Vote(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b", mockSvc.voteReq.OptionID)

	var body struct {
		ID    string           `json:"id"`
		Tally models.PollTally `json:"tally"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &body))
	assert.Equal(t, "p1", body.ID)
	assert.Equal(t, 4, body.Tally.TotalVotes)
	assert.Equal(t, 25, body.Tally.Options[0].Percentage)
	assert.Equal(t, 75, body.Tally.Options[1].Percentage)
}

func TestPollHandlerVoteClosedPoll(t *testing.T) {
	mockSvc := &pollServiceMock{err: appErrors.Clone(appErrors.ErrInvalidState, "poll is closed")}
	h := NewPollHandler(mockSvc)
	c, w := newTestContext(http.MethodPost, "/polls/p1/votes", []byte(`{"optionId":"b"}`))

	h.Vote(c)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestPollHandlerListQuery(t *testing.T) {
	mockSvc := &pollServiceMock{}
	h := NewPollHandler(mockSvc)
	c, w := newTestContext(http.MethodGet, "/polls?all=true&courseId=5", nil)

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.query.IncludeEnded)
	assert.Equal(t, "5", mockSvc.query.CourseID)

	c, w = newTestContext(http.MethodGet, "/polls?all=maybe", nil)
	h.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type courseServiceMock struct {
	deletedID string
	err       error
}

func (m *courseServiceMock) List(ctx context.Context, actor *models.JWTClaims) ([]models.Course, error) {
	return []models.Course{{ID: "1"}}, m.err
}

func (m *courseServiceMock) Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.Course, error) {
	return &models.Course{ID: id}, m.err
}

func (m *courseServiceMock) Create(ctx context.Context, req dto.CreateCourseRequest, actor *models.JWTClaims) (*models.Course, error) {
	course := req.Course()
	course.ID = "new"
	return &course, m.err
}

func (m *courseServiceMock) Update(ctx context.Context, id string, req dto.UpdateCourseRequest, actor *models.JWTClaims) (*models.Course, error) {
	return &models.Course{ID: id}, m.err
}

func (m *courseServiceMock) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	m.deletedID = id
	return m.err
}

func TestCourseHandlerCreate(t *testing.T) {
	h := NewCourseHandler(&courseServiceMock{})
	body := []byte(`{"name":"Compilers","code":"CS402","professor":"Dr. Priya Singh","professorId":"3","credits":3,"department":"Computer Science","semester":7,"capacity":40}`)
	c, w := newTestContext(http.MethodPost, "/courses", body)

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
}

func TestCourseHandlerDeleteNotFound(t *testing.T) {
	mockSvc := &courseServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "course not found")}
	h := NewCourseHandler(mockSvc)
	c, w := newTestContext(http.MethodDelete, "/courses/missing-id", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing-id"}}

	h.Delete(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "missing-id", mockSvc.deletedID)
}

type exportServiceMock struct {
	format string
	err    error
}

func (m *exportServiceMock) Export(ctx context.Context, format string, actor *models.JWTClaims) (*service.ExportFile, error) {
	m.format = format
	if m.err != nil {
		return nil, m.err
	}
	return &service.ExportFile{Filename: "timetable-1.csv", ContentType: "text/csv", Data: []byte("Day\n")}, nil
}

func TestDashboardHandlerExportTimetable(t *testing.T) {
	mockExport := &exportServiceMock{}
	h := NewDashboardHandler(nil, mockExport)
	c, w := newTestContext(http.MethodGet, "/timetable/export?format=csv", nil)

	h.ExportTimetable(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", mockExport.format)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "timetable-1.csv")
	assert.Equal(t, "Day\n", w.Body.String())
}

func TestMetricsHandlerReady(t *testing.T) {
	h := NewMetricsHandler(nil, map[string]ReadinessCheck{"redis": func() error { return appErrors.ErrInternal }})
	c, w := newTestContext(http.MethodGet, "/ready", nil)

	h.Ready(c)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	h = NewMetricsHandler(nil, nil)
	c, w = newTestContext(http.MethodGet, "/ready", nil)
	h.Ready(c)
	require.Equal(t, http.StatusOK, w.Code)
}
