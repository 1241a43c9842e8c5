package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"congregationsite/internal/delivery/http/helpers"
	"congregationsite/internal/domain"
)

// CreateEventRequest is the request body for POST /admin/events. Omitted waitlist_enabled defaults to true.
type CreateEventRequest struct {
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	Description     *string    `json:"description"`
	Location        *string    `json:"location"`
	StartsAt        time.Time  `json:"starts_at"`
	EndsAt          *time.Time `json:"ends_at"`
	RSVPDeadline    *time.Time `json:"rsvp_deadline"`
	MaxCapacity     *int       `json:"max_capacity"`
	RequiresRSVP    bool       `json:"requires_rsvp"`
	WaitlistEnabled *bool      `json:"waitlist_enabled"`
}

// EventResponse is the success envelope for a single event.
type EventResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PublicEventResponse is the success envelope for GET /events/{slug}.
type PublicEventResponse struct {
	Data  *domain.PublicEvent `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

// EventStatsResponse is the success envelope for GET /admin/events/{eventID}/stats.
type EventStatsResponse struct {
	Data  *domain.EventStats `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ListEventsResponse is the data for GET /admin/events.
type ListEventsResponse struct {
	Items      []*domain.Event        `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// GetPublicEvent godoc
// @Summary Get an event by slug
// @Description Public event page data: the event, a capacity report for one seat, and whether RSVPs are open.
// @Tags events
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.PublicEventResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{slug} [get]
func (c *EventController) GetPublicEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := c.Service.GetPublicEvent(r.Context(), r.PathValue("slug"))
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ev)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event. The slug is derived from the title when omitted; a derived slug that is taken gets a numeric suffix.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} controllers.EventResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: duplicate_slug"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	ev, err := c.Service.CreateEvent(r.Context(), domain.CreateEventInput{
		Title:           req.Title,
		Slug:            req.Slug,
		Description:     req.Description,
		Location:        req.Location,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		RSVPDeadline:    req.RSVPDeadline,
		MaxCapacity:     req.MaxCapacity,
		RequiresRSVP:    req.RequiresRSVP,
		WaitlistEnabled: req.WaitlistEnabled,
	})
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, ev)
}

// ListEvents godoc
// @Summary List events
// @Description Paginated events ordered by start time.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} helpers.APIResponse{data=controllers.ListEventsResponse}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	params := helpers.ParsePagination(r)
	events, total, err := c.Service.ListEvents(r.Context(), params)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListEventsResponse{
		Items:      events,
		Pagination: helpers.NewPaginationMeta(params.Page, params.PageSize, total),
	})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes an event that has no reservations. Events with reservations of any status are kept.
// @Tags admin
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 204 "No Content"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_has_reservations"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID); err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetEventStats godoc
// @Summary Event reservation statistics
// @Description Counts and seat totals per reservation status, with the remaining capacity.
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventStatsResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /admin/events/{eventID}/stats [get]
func (c *EventController) GetEventStats(w http.ResponseWriter, r *http.Request) {
	eventID, ok := eventIDParam(w, r)
	if !ok {
		return
	}
	stats, err := c.Service.GetEventStats(r.Context(), eventID)
	if err != nil {
		writeError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, stats)
}
