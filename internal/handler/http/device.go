package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/minetrack/minetrack-backend-go/internal/domain/audit"
	"github.com/minetrack/minetrack-backend-go/internal/domain/device"
	"github.com/minetrack/minetrack-backend-go/internal/handler/http/response"
)

type DeviceHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	TogglePower(w http.ResponseWriter, r *http.Request)
	DataStatus(w http.ResponseWriter, r *http.Request)
}

type DeviceHandlerImpl struct {
	deviceService device.Service
	auditRepo     audit.Repository
}

func NewDeviceHandler(deviceService device.Service, auditRepo audit.Repository) DeviceHandler {
	return &DeviceHandlerImpl{deviceService: deviceService, auditRepo: auditRepo}
}

// Create implements DeviceHandler.
func (h *DeviceHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req device.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.deviceService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	auditLog(r, h.auditRepo, "create", "device", result.ID, req)
	response.Created(w, "Device created", result)
}

// List implements DeviceHandler.
func (h *DeviceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.deviceService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements DeviceHandler.
func (h *DeviceHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid device id", nil)
		return
	}

	var req device.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.deviceService.Update(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	auditLog(r, h.auditRepo, "update", "device", id, req)
	response.Success(w, result)
}

// TogglePower implements DeviceHandler. The control password comes in the
// body; the audit entry records the outcome but never the password.
func (h *DeviceHandlerImpl) TogglePower(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid device id", nil)
		return
	}

	var req device.PowerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.deviceService.TogglePower(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	auditLog(r, h.auditRepo, "power_toggle", "device", id, map[string]bool{"is_active": req.IsActive})
	response.Success(w, result)
}

// DataStatus implements DeviceHandler.
func (h *DeviceHandlerImpl) DataStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.deviceService.DataStatus(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
