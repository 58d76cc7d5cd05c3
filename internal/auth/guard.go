package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/isdelr/blog-be/internal/models"
	"github.com/isdelr/blog-be/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// CookieName is the cookie that carries "Bearer <token>" between requests.
const CookieName = "Authorization"

// LoginRequiredMessage is the only text a rejected request ever sees.
const LoginRequiredMessage = "please log in"

// Guard outcomes, also used as metric labels.
const (
	OutcomeMissing      = "missing"
	OutcomeMalformed    = "malformed"
	OutcomeInvalidToken = "invalid_token"
	OutcomeUnknownUser  = "unknown_user"
	OutcomeError        = "error"
	OutcomeVerified     = "verified"
)

var guardOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "blog_auth_guard_requests_total",
	Help: "Requests seen by the auth guard, by outcome",
}, []string{"outcome"})

type contextKey string

const userKey = contextKey("user")

// UserLookup resolves the account a token points at.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
}

// Guard authenticates requests carrying a Bearer session token.
type Guard struct {
	tokens *TokenService
	users  UserLookup
}

// NewGuard creates a new Guard.
func NewGuard(tokens *TokenService, users UserLookup) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the user attached by the guard.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

// Middleware rejects requests without a valid session and attaches the
// resolved user to the request context otherwise.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, outcome, err := g.authenticate(r)
		guardOutcomes.WithLabelValues(outcome).Inc()

		switch outcome {
		case OutcomeVerified:
			log.Debug().Str("user_id", user.ID).Str("nickname", user.Nickname).Msg("Authenticated user")
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		case OutcomeError:
			log.Error().Err(err).Msg("Failed to resolve user from token")
			reject(w, "failed to authenticate request")
		default:
			log.Debug().Err(err).Str("outcome", outcome).Msg("Rejected unauthenticated request")
			reject(w, LoginRequiredMessage)
		}
	})
}

func (g *Guard) authenticate(r *http.Request) (models.User, string, error) {
	credential := credentialFrom(r)
	if credential == "" {
		return models.User{}, OutcomeMissing, nil
	}

	scheme, token := splitCredential(credential)
	if scheme != "Bearer" || token == "" {
		return models.User{}, OutcomeMalformed, nil
	}

	userID, err := g.tokens.Verify(token)
	if err != nil {
		return models.User{}, OutcomeInvalidToken, err
	}

	user, err := g.users.GetUserByID(r.Context(), userID)
	if err != nil {
		if services.HasCode(err, services.CodeNotFound) {
			return models.User{}, OutcomeUnknownUser, err
		}
		return models.User{}, OutcomeError, err
	}
	return user, OutcomeVerified, nil
}

// credentialFrom prefers the Authorization header and falls back to the cookie.
func credentialFrom(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		return header
	}
	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// splitCredential splits on single spaces and keeps the first two fields, so
// "Bearer  tok" yields an empty token.
func splitCredential(v string) (scheme, token string) {
	parts := strings.Split(v, " ")
	scheme = parts[0]
	if len(parts) > 1 {
		token = parts[1]
	}
	return scheme, token
}

func reject(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"errorMessage": msg})
}
