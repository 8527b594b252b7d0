package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/minetrack/minetrack-backend-go/internal/domain/audit"
	"github.com/minetrack/minetrack-backend-go/internal/domain/user"
	"github.com/minetrack/minetrack-backend-go/internal/handler/http/response"
)

type UserHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type UserHandlerImpl struct {
	userService user.Service
	auditRepo   audit.Repository
}

func NewUserHandler(userService user.Service, auditRepo audit.Repository) UserHandler {
	return &UserHandlerImpl{userService: userService, auditRepo: auditRepo}
}

// Create implements UserHandler.
func (h *UserHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req user.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.userService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	auditLog(r, h.auditRepo, "create", "user", result.ID, map[string]string{
		"username": req.Username, "role": string(req.Role),
	})
	response.Created(w, "User created", result)
}

// List implements UserHandler.
func (h *UserHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.userService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Update implements UserHandler.
func (h *UserHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user id", nil)
		return
	}

	var req user.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.userService.Update(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	details := map[string]interface{}{"password_changed": req.Password != nil}
	if req.Role != nil {
		details["role"] = *req.Role
	}
	if req.IsActive != nil {
		details["is_active"] = *req.IsActive
	}
	auditLog(r, h.auditRepo, "update", "user", id, details)
	response.Success(w, result)
}

// Delete implements UserHandler.
func (h *UserHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid user id", nil)
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	auditLog(r, h.auditRepo, "delete", "user", id, nil)
	response.SuccessWithMessage(w, "User deleted", nil)
}
