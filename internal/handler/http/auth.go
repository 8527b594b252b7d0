package http

import (
	"log/slog"
	"net/http"

	"github.com/minetrack/minetrack-backend-go/internal/domain/auth"
	"github.com/minetrack/minetrack-backend-go/internal/handler/http/response"
)

type AuthHandler interface {
	Login(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) AuthHandler {
	return &AuthHandlerImpl{authService: authService}
}

// Login implements AuthHandler. The dashboard posts the OAuth2 password-grant
// form shape, so the body is form-encoded rather than JSON.
func (a *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "Invalid form body", nil)
		return
	}

	req := auth.LoginRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	result, err := a.authService.Login(r.Context(), req)
	if err != nil {
		slog.Debug("login failed", "username", req.Username, "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
