package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/minetrack/minetrack-backend-go/internal/domain/event"
	"github.com/minetrack/minetrack-backend-go/internal/handler/http/response"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/timeutil"
)

const (
	defaultEventLimit = 200
	maxEventLimit     = 2000
)

type EventHandler interface {
	Ingest(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	ListPaged(w http.ResponseWriter, r *http.Request)
}

type EventHandlerImpl struct {
	eventService event.Service
}

func NewEventHandler(eventService event.Service) EventHandler {
	return &EventHandlerImpl{eventService: eventService}
}

// Ingest implements EventHandler. Authenticated by the pushing device's API
// key, not a user token.
func (h *EventHandlerImpl) Ingest(w http.ResponseWriter, r *http.Request) {
	apiKey := r.Header.Get("X-API-Key")
	if apiKey == "" {
		response.Unauthorized(w, "Missing device API key")
		return
	}

	var req event.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	results, err := h.eventService.Ingest(r.Context(), apiKey, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// List implements EventHandler.
func (h *EventHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	result, err := h.eventService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListPaged implements EventHandler.
func (h *EventHandlerImpl) ListPaged(w http.ResponseWriter, r *http.Request) {
	filter, err := parseEventFilter(r)
	if err != nil {
		response.BadRequest(w, err.Error(), nil)
		return
	}

	page := 1
	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	filter.Offset = (page - 1) * filter.Limit

	items, total, err := h.eventService.ListPaged(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	response.SuccessWithMeta(w, items, &response.Meta{
		Page:       page,
		Limit:      filter.Limit,
		TotalItems: total,
		TotalPages: totalPages,
	})
}

func parseEventFilter(r *http.Request) (event.Filter, error) {
	q := r.URL.Query()
	filter := event.Filter{
		EmployeeNo: q.Get("employee_no"),
		Limit:      defaultEventLimit,
	}

	if v := q.Get("date_from"); v != "" {
		t, err := parseFilterTime(v, false)
		if err != nil {
			return event.Filter{}, err
		}
		filter.DateFrom = &t
	}
	if v := q.Get("date_to"); v != "" {
		t, err := parseFilterTime(v, true)
		if err != nil {
			return event.Filter{}, err
		}
		filter.DateTo = &t
	}
	if v := q.Get("device_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return event.Filter{}, errInvalidQueryParam("device_id")
		}
		filter.DeviceID = &id
	}
	if v := q.Get("event_type"); v != "" {
		t := event.Type(v)
		if !t.Valid() {
			return event.Filter{}, errInvalidQueryParam("event_type")
		}
		filter.EventType = &t
	}
	if v := q.Get("status"); v != "" {
		st := event.Status(v)
		if st != event.StatusAccepted && st != event.StatusRejected {
			return event.Filter{}, errInvalidQueryParam("status")
		}
		filter.Status = &st
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxEventLimit {
			return event.Filter{}, errInvalidQueryParam("limit")
		}
		filter.Limit = n
	}

	return filter, nil
}

// parseFilterTime accepts RFC 3339 instants or facility-local days. A bare
// day in date_to means "through the end of that day".
func parseFilterTime(s string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	day, err := timeutil.ParseLocalDay(s)
	if err != nil {
		return time.Time{}, errInvalidQueryParam("date")
	}
	start, end := timeutil.LocalDayBounds(day)
	if endOfDay {
		return end, nil
	}
	return start, nil
}

type queryParamError string

func errInvalidQueryParam(name string) error {
	return queryParamError(name)
}

func (e queryParamError) Error() string {
	return "Invalid query parameter: " + string(e)
}
