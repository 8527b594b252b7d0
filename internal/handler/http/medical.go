package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/minetrack/minetrack-backend-go/internal/domain/medical"
	"github.com/minetrack/minetrack-backend-go/internal/handler/http/response"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/timeutil"
)

const defaultExamLimit = 100

type MedicalHandler interface {
	ListExams(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	SyncExams(w http.ResponseWriter, r *http.Request)
	EsmoEmployees(w http.ResponseWriter, r *http.Request)
	SyncEmployees(w http.ResponseWriter, r *http.Request)
}

type MedicalHandlerImpl struct {
	medicalService medical.Service
	syncTimeout    time.Duration
}

func NewMedicalHandler(medicalService medical.Service, syncTimeout time.Duration) MedicalHandler {
	return &MedicalHandlerImpl{medicalService: medicalService, syncTimeout: syncTimeout}
}

// ListExams implements MedicalHandler.
func (h *MedicalHandlerImpl) ListExams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := medical.Filter{
		Result: q.Get("result"),
		Limit:  defaultExamLimit,
	}

	if v := q.Get("employee_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.BadRequest(w, "Invalid employee_id", nil)
			return
		}
		filter.EmployeeID = &id
	}
	if v := q.Get("start_date"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.BadRequest(w, "Invalid start_date", nil)
			return
		}
		filter.StartDate = &day
	}
	if v := q.Get("end_date"); v != "" {
		day, err := time.Parse("2006-01-02", v)
		if err != nil {
			response.BadRequest(w, "Invalid end_date", nil)
			return
		}
		end := day.AddDate(0, 0, 1)
		filter.EndDate = &end
	}
	if v := q.Get("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Skip = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			filter.Limit = n
		}
	}

	result, err := h.medicalService.ListExams(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Stats implements MedicalHandler.
func (h *MedicalHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	target := time.Now()
	if v := r.URL.Query().Get("target_date"); v != "" {
		day, err := timeutil.ParseLocalDay(v)
		if err != nil {
			response.BadRequest(w, "Invalid target_date", nil)
			return
		}
		target = day
	}

	result, err := h.medicalService.Stats(r.Context(), target)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SyncExams implements MedicalHandler. The portal can hang for minutes when
// its session expired; the deadline turns that into a clean 504.
func (h *MedicalHandlerImpl) SyncExams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.syncTimeout)
	defer cancel()

	result, err := h.medicalService.SyncExams(ctx)
	if err != nil {
		if ctx.Err() != nil {
			response.HandleError(w, medical.ErrSyncTimeout)
			return
		}
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Sync complete", result)
}

// EsmoEmployees implements MedicalHandler.
func (h *MedicalHandlerImpl) EsmoEmployees(w http.ResponseWriter, r *http.Request) {
	result, err := h.medicalService.PortalEmployees(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SyncEmployees implements MedicalHandler.
func (h *MedicalHandlerImpl) SyncEmployees(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.syncTimeout)
	defer cancel()

	result, err := h.medicalService.SyncEmployees(ctx)
	if err != nil {
		if ctx.Err() != nil {
			response.HandleError(w, medical.ErrSyncTimeout)
			return
		}
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Employee sync complete", result)
}
