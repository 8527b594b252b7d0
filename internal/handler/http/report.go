package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/minetrack/minetrack-backend-go/internal/domain/report"
	"github.com/minetrack/minetrack-backend-go/internal/handler/http/response"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/timeutil"
)

type ReportHandler interface {
	Summary(w http.ResponseWriter, r *http.Request)
	InsideMine(w http.ResponseWriter, r *http.Request)
	ToolDebts(w http.ResponseWriter, r *http.Request)
	DailyMineSummary(w http.ResponseWriter, r *http.Request)
	BlockedAttempts(w http.ResponseWriter, r *http.Request)
	BlockedAttemptsCount(w http.ResponseWriter, r *http.Request)
	EsmoSummary(w http.ResponseWriter, r *http.Request)
	EsmoSummary24h(w http.ResponseWriter, r *http.Request)
	Dashboard(w http.ResponseWriter, r *http.Request)
}

type ReportHandlerImpl struct {
	reportService report.Service
}

func NewReportHandler(reportService report.Service) ReportHandler {
	return &ReportHandlerImpl{reportService: reportService}
}

// Summary implements ReportHandler.
func (h *ReportHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time

	if v := r.URL.Query().Get("date_from"); v != "" {
		t, err := parseFilterTime(v, false)
		if err != nil {
			response.BadRequest(w, err.Error(), nil)
			return
		}
		from = &t
	}
	if v := r.URL.Query().Get("date_to"); v != "" {
		t, err := parseFilterTime(v, true)
		if err != nil {
			response.BadRequest(w, err.Error(), nil)
			return
		}
		to = &t
	}

	result, err := h.reportService.Summary(r.Context(), from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// InsideMine implements ReportHandler.
func (h *ReportHandlerImpl) InsideMine(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.InsideMine(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ToolDebts implements ReportHandler.
func (h *ReportHandlerImpl) ToolDebts(w http.ResponseWriter, r *http.Request) {
	var day *time.Time
	if v := r.URL.Query().Get("day"); v != "" {
		d, err := timeutil.ParseLocalDay(v)
		if err != nil {
			response.BadRequest(w, "Invalid day", nil)
			return
		}
		day = &d
	}

	result, err := h.reportService.ToolDebts(r.Context(), day)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// DailyMineSummary implements ReportHandler. Defaults to today in the
// facility zone.
func (h *ReportHandlerImpl) DailyMineSummary(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if v := r.URL.Query().Get("day"); v != "" {
		d, err := timeutil.ParseLocalDay(v)
		if err != nil {
			response.BadRequest(w, "Invalid day", nil)
			return
		}
		day = d
	}

	result, err := h.reportService.DailyMineSummary(r.Context(), day)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// BlockedAttempts implements ReportHandler.
func (h *ReportHandlerImpl) BlockedAttempts(w http.ResponseWriter, r *http.Request) {
	var day *time.Time
	if v := r.URL.Query().Get("day"); v != "" {
		d, err := timeutil.ParseLocalDay(v)
		if err != nil {
			response.BadRequest(w, "Invalid day", nil)
			return
		}
		day = &d
	}

	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= maxEventLimit {
			limit = n
		}
	}

	result, err := h.reportService.BlockedAttempts(r.Context(), day, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// BlockedAttemptsCount implements ReportHandler.
func (h *ReportHandlerImpl) BlockedAttemptsCount(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if v := r.URL.Query().Get("day"); v != "" {
		d, err := timeutil.ParseLocalDay(v)
		if err != nil {
			response.BadRequest(w, "Invalid day", nil)
			return
		}
		day = d
	}

	count, err := h.reportService.BlockedAttemptsCount(r.Context(), day)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]int64{"count": count})
}

// EsmoSummary implements ReportHandler.
func (h *ReportHandlerImpl) EsmoSummary(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if v := r.URL.Query().Get("day"); v != "" {
		d, err := timeutil.ParseLocalDay(v)
		if err != nil {
			response.BadRequest(w, "Invalid day", nil)
			return
		}
		day = d
	}

	count, err := h.reportService.EsmoSummary(r.Context(), day)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, map[string]int64{"passed_employees": count})
}

// EsmoSummary24h implements ReportHandler.
func (h *ReportHandlerImpl) EsmoSummary24h(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if v := r.URL.Query().Get("day"); v != "" {
		d, err := timeutil.ParseLocalDay(v)
		if err != nil {
			response.BadRequest(w, "Invalid day", nil)
			return
		}
		day = d
	}

	result, err := h.reportService.EsmoSummary24h(r.Context(), day)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Dashboard implements ReportHandler.
func (h *ReportHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.Dashboard(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
