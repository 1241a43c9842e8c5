package controllers

import (
	"log/slog"
	"net/http"

	"congregationsite/internal/delivery/http/helpers"
	"congregationsite/internal/domain"
)

// IdempotencyKeyHeader lets a client retry a submission without creating a second reservation.
const IdempotencyKeyHeader = "Idempotency-Key"

// SubmitRSVPRequest is the request body for POST /events/{eventID}/rsvps.
type SubmitRSVPRequest struct {
	Name                string  `json:"name"`
	Email               string  `json:"email"`
	Phone               *string `json:"phone"`
	NumberOfGuests      int     `json:"number_of_guests"`
	DietaryRestrictions *string `json:"dietary_restrictions"`
	SpecialNeeds        *string `json:"special_needs"`
	Notes               *string `json:"notes"`
}

// CancelRSVPRequest is the request body for POST /rsvps/{code}/cancel.
type CancelRSVPRequest struct {
	Email string `json:"email"`
}

// Validate implements helpers.Validator.
func (c CancelRSVPRequest) Validate() []string {
	if c.Email == "" {
		return []string{"email is required"}
	}
	return nil
}

// RSVPResultResponse is the success envelope for a submission or promotion.
type RSVPResultResponse struct {
	Data  *domain.RSVPResult `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// RSVPResponse is the success envelope for a single reservation.
type RSVPResponse struct {
	Data  *domain.RSVP      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// Submit godoc
// @Summary Submit an RSVP
// @Description Reserve seats for the registrant plus guests. The reservation is confirmed when the event has room, waitlisted when it is full and the waitlist is open, and rejected otherwise. Resending with the same Idempotency-Key returns the original reservation with 200.
// @Tags rsvps
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param Idempotency-Key header string false "Client-generated UUID"
// @Param body body SubmitRSVPRequest true "Registrant details"
// @Success 201 {object} controllers.RSVPResultResponse "new reservation"
// @Success 200 {object} controllers.RSVPResultResponse "idempotent replay"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request, RSVP_NOT_REQUIRED or DEADLINE_PASSED"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: EVENT_FULL"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvps [post]
func (c *RSVPController) Submit(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	var req SubmitRSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	in := domain.RSVPInput{
		Name:                req.Name,
		Email:               req.Email,
		Phone:               req.Phone,
		NumberOfGuests:      req.NumberOfGuests,
		DietaryRestrictions: req.DietaryRestrictions,
		SpecialNeeds:        req.SpecialNeeds,
		Notes:               req.Notes,
	}
	result, created, err := c.Service.Submit(r.Context(), eventID, in, r.Header.Get(IdempotencyKeyHeader))
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	helpers.WriteJSONSuccess(w, status, result)
}

// GetByCode godoc
// @Summary Look up an RSVP
// @Description Returns the reservation identified by its eight-character confirmation code. Codes are case-insensitive.
// @Tags rsvps
// @Produce json
// @Param code path string true "Confirmation code"
// @Success 200 {object} controllers.RSVPResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rsvps/{code} [get]
func (c *RSVPController) GetByCode(w http.ResponseWriter, r *http.Request) {
	rsvp, err := c.Service.GetByConfirmationCode(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvp)
}

// Cancel godoc
// @Summary Cancel an RSVP
// @Description Cancels the reservation when the email matches the one it was made with. Seats of a confirmed reservation are released; waitlisted reservations are not promoted automatically.
// @Tags rsvps
// @Accept json
// @Produce json
// @Param code path string true "Confirmation code"
// @Param body body CancelRSVPRequest true "Registrant email"
// @Success 200 {object} controllers.RSVPResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: already_cancelled"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /rsvps/{code}/cancel [post]
func (c *RSVPController) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rsvp, err := c.Service.Cancel(r.Context(), r.PathValue("code"), req.Email)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rsvp)
}

// Promote godoc
// @Summary Promote a waitlisted RSVP
// @Description Confirms a waitlisted reservation when the event has room for the whole party.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param code path string true "Confirmation code"
// @Success 200 {object} controllers.RSVPResultResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: EVENT_FULL or invalid_status"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/rsvps/{code}/promote [post]
func (c *RSVPController) Promote(w http.ResponseWriter, r *http.Request) {
	result, err := c.Service.Promote(r.Context(), r.PathValue("code"))
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// ListRSVPsResponse is the data for GET /admin/events/{eventID}/rsvps.
type ListRSVPsResponse struct {
	Items      []*domain.RSVP         `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListByEvent godoc
// @Summary List RSVPs of an event
// @Description Paginated reservations ordered by submission time, optionally filtered by status.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param status query string false "confirmed, waitlisted or cancelled"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} helpers.APIResponse{data=controllers.ListRSVPsResponse}
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/rsvps [get]
func (c *RSVPController) ListByEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	var status *domain.RSVPStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.RSVPStatus(s)
		status = &st
	}
	params := helpers.ParsePagination(r)
	rsvps, total, err := c.Service.ListByEvent(r.Context(), eventID, status, params)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListRSVPsResponse{
		Items:      rsvps,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}
