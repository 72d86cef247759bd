package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/timetable-api/internal/dto"
	"github.com/noah-isme/timetable-api/internal/models"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/response"
)

type timingRequestService interface {
	Submit(ctx context.Context, req dto.SubmitTimingRequest, actor *models.JWTClaims) (*models.TimingChangeRequest, error)
	Decide(ctx context.Context, id string, req dto.DecideTimingRequest, actor *models.JWTClaims) (*models.TimingChangeRequest, error)
	List(ctx context.Context, query dto.TimingRequestQuery, actor *models.JWTClaims) ([]models.TimingChangeRequest, error)
	Get(ctx context.Context, id string, actor *models.JWTClaims) (*models.TimingChangeRequest, error)
}

// TimingRequestHandler exposes the schedule change workflow.
type TimingRequestHandler struct {
	service timingRequestService
}

// NewTimingRequestHandler constructs the handler.
func NewTimingRequestHandler(svc timingRequestService) *TimingRequestHandler {
	return &TimingRequestHandler{service: svc}
}

// List godoc
// @Summary List timing change requests
// @Description Administrators see every request, professors their own
// @Tags Timing Requests
// @Param status query string false "Comma separated statuses (pending,approved,rejected)"
// @Param courseId query string false "Course filter"
// @Success 200 {object} response.Envelope
// @Router /timing-requests [get]
func (h *TimingRequestHandler) List(c *gin.Context) {
	query, err := parseTimingRequestQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	requests, err := h.service.List(c.Request.Context(), query, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, requests, listMeta(c, len(requests)))
}

// Get godoc
// @Summary Get timing change request
// @Tags Timing Requests
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /timing-requests/{id} [get]
func (h *TimingRequestHandler) Get(c *gin.Context) {
	request, err := h.service.Get(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, request)
}

// Submit godoc
// @Summary Submit a timing change request
// @Tags Timing Requests
// @Accept json
// @Param payload body dto.SubmitTimingRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timing-requests [post]
func (h *TimingRequestHandler) Submit(c *gin.Context) {
	var req dto.SubmitTimingRequest
	if !bindJSON(c, &req, "invalid timing request payload") {
		return
	}
	request, err := h.service.Submit(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Decide godoc
// @Summary Approve or reject a pending request
// @Tags Timing Requests
// @Accept json
// @Param id path string true "Request ID"
// @Param payload body dto.DecideTimingRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timing-requests/{id}/decision [post]
func (h *TimingRequestHandler) Decide(c *gin.Context) {
	var req dto.DecideTimingRequest
	if !bindJSON(c, &req, "invalid decision payload") {
		return
	}
	request, err := h.service.Decide(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, request)
}

func parseTimingRequestQuery(c *gin.Context) (dto.TimingRequestQuery, error) {
	query := dto.TimingRequestQuery{CourseID: strings.TrimSpace(c.Query("courseId"))}
	for _, raw := range c.QueryArray("status") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			status := models.RequestStatus(part)
			switch status {
			case models.RequestStatusPending, models.RequestStatusApproved, models.RequestStatusRejected:
				query.Status = append(query.Status, status)
			default:
				return query, appErrors.Clone(appErrors.ErrValidation, "unknown status "+part)
			}
		}
	}
	return query, nil
}
