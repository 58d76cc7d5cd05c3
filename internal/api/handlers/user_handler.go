package handlers

import (
	"net/http"
	"time"

	"github.com/isdelr/blog-be/internal/auth"
	"github.com/isdelr/blog-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// UserHandler handles HTTP requests for signup, login and the current user.
type UserHandler struct {
	service      services.UserServiceProvider
	tokens       *auth.TokenService
	secureCookie bool
}

// NewUserHandler creates a new UserHandler. secureCookie marks the session
// cookie Secure, which production deployments need.
func NewUserHandler(service services.UserServiceProvider, tokens *auth.TokenService, secureCookie bool) *UserHandler {
	return &UserHandler{service: service, tokens: tokens, secureCookie: secureCookie}
}

// SignupPayload defines the structure for signup requests.
type SignupPayload struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

var signupStatus = statusOverrides{
	services.CodeValidation: http.StatusPreconditionFailed,
	services.CodeConflict:   http.StatusPreconditionFailed,
}

// Signup handles new user registration.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		badRequest(w, r, err)
		return
	}

	user, err := h.service.Signup(r.Context(), payload.Nickname, payload.Password, payload.Confirm)
	if err != nil {
		writeError(w, r, err, "failed to sign up", signupStatus)
		return
	}

	hlog.FromRequest(r).Info().Str("user_id", user.ID).Str("nickname", user.Nickname).Msg("User signed up")
	writeMessage(w, http.StatusCreated, "signed up")
}

// Login checks credentials and issues a session token, both in the body and
// as a cookie.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		badRequest(w, r, err)
		return
	}

	user, err := h.service.Authenticate(r.Context(), payload.Nickname, payload.Password)
	if err != nil {
		writeError(w, r, err, "failed to log in", nil)
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue token")
		writeJSON(w, http.StatusBadRequest, map[string]string{"errorMessage": "failed to log in"})
		return
	}

	cookie := &http.Cookie{
		Name:     auth.CookieName,
		Value:    "Bearer " + token,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	}
	if ttl := h.tokens.TTL(); ttl > 0 {
		cookie.Expires = time.Now().Add(ttl)
	}
	http.SetCookie(w, cookie)

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GetMe returns the user the guard resolved for this request.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		hlog.FromRequest(r).Error().Msg("Could not retrieve user from context")
		writeJSON(w, http.StatusBadRequest, map[string]string{"errorMessage": auth.LoginRequiredMessage})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
