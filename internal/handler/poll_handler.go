package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type pollService interface {
	Create(ctx context.Context, req dto.CreatePollRequest, actor *models.JWTClaims) (*models.Poll, error)
	CastVote(ctx context.Context, pollID string, req dto.CastVoteRequest, actor *models.JWTClaims) (*models.Poll, error)
	Close(ctx context.Context, pollID string, actor *models.JWTClaims) (*models.Poll, error)
	List(ctx context.Context, query dto.PollQuery, actor *models.JWTClaims) ([]models.Poll, error)
	Get(ctx context.Context, pollID string, actor *models.JWTClaims) (*models.Poll, *models.PollTally, error)
}

// PollHandler exposes timing preference polls.
type PollHandler struct {
	service pollService
}

// NewPollHandler constructs the handler.
func NewPollHandler(svc pollService) *PollHandler {
	return &PollHandler{service: svc}
}

// pollView pairs a poll with its tally for detail responses.
type pollView struct {
	*models.Poll
	Tally *models.PollTally `json:"tally"`
}

// List godoc
// @Summary List polls
// @Description Students see open polls of their cohort unless all=true
// @Tags Polls
// @Param courseId query string false "Course filter"
// @Param all query bool false "Include ended polls"
// @Success 200 {object} response.Envelope
// @Router /polls [get]
func (h *PollHandler) List(c *gin.Context) {
	query := dto.PollQuery{CourseID: strings.TrimSpace(c.Query("courseId"))}
	if raw := c.Query("all"); raw != "" {
		all, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "all must be a boolean"))
			return
		}
		query.IncludeEnded = all
	}
	polls, err := h.service.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, polls, listMeta(c, len(polls)))
}

// Get godoc
// @Summary Get poll with tally
// @Tags Polls
// @Param id path string true "Poll ID"
// @Success 200 {object} response.Envelope
// @Router /polls/{id} [get]
func (h *PollHandler) Get(c *gin.Context) {
	poll, tally, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, pollView{Poll: poll, Tally: tally})
}

// Create godoc
// @Summary Create poll
// @Tags Polls
// @Accept json
// @Param payload body dto.CreatePollRequest true "Poll payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /polls [post]
func (h *PollHandler) Create(c *gin.Context) {
	var req dto.CreatePollRequest
	if !bindJSON(c, &req, "invalid poll payload") {
		return
	}
	poll, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, poll)
}

// Vote godoc
// @Summary Cast or move a vote
// @Tags Polls
// @Accept json
// @Param id path string true "Poll ID"
// @Param payload body dto.CastVoteRequest true "Option to vote for"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /polls/{id}/votes [post]
func (h *PollHandler) Vote(c *gin.Context) {
	var req dto.CastVoteRequest
	if !bindJSON(c, &req, "invalid vote payload") {
		return
	}
	poll, err := h.service.CastVote(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	tally := poll.Tally()
	response.OK(c, pollView{Poll: poll, Tally: &tally})
}

// Close godoc
// @Summary End a poll early
// @Tags Polls
// @Param id path string true "Poll ID"
// @Success 200 {object} response.Envelope
// @Router /polls/{id}/close [post]
func (h *PollHandler) Close(c *gin.Context) {
	poll, err := h.service.Close(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, poll)
}
