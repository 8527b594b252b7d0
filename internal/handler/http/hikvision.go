package http

import (
	"io"
	"net"
	"net/http"

	"github.com/minetrack/minetrack-backend-go/internal/handler/http/response"
	hikservice "github.com/minetrack/minetrack-backend-go/internal/service/hikvision"
)

// maxWebhookBody caps notification size; pushes with picture attachments can
// run large but anything past this is not an access event.
const maxWebhookBody = 1 << 20

type HikvisionHandler interface {
	Webhook(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
	SyncUsers(w http.ResponseWriter, r *http.Request)
}

type HikvisionHandlerImpl struct {
	hikService *hikservice.Service
}

func NewHikvisionHandler(hikService *hikservice.Service) HikvisionHandler {
	return &HikvisionHandlerImpl{hikService: hikService}
}

// Webhook implements HikvisionHandler. Turnstiles retry any non-200 forever,
// so this always answers 200 OK whatever happens to the payload.
func (h *HikvisionHandlerImpl) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err == nil && len(body) > 0 {
		remoteIP, _, splitErr := net.SplitHostPort(r.RemoteAddr)
		if splitErr != nil {
			remoteIP = r.RemoteAddr
		}
		h.hikService.HandleWebhook(r.Context(), body, remoteIP)
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// Status implements HikvisionHandler.
func (h *HikvisionHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	result, err := h.hikService.Status(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// SyncUsers implements HikvisionHandler.
func (h *HikvisionHandlerImpl) SyncUsers(w http.ResponseWriter, r *http.Request) {
	result, err := h.hikService.SyncUsers(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "User sync complete", result)
}
