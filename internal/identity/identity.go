// Package identity authenticates callers from a bearer JWT and carries the
// resulting models.Actor in the request context.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"reschedule-service/internal/models"
	"reschedule-service/pkg/response"
	"reschedule-service/pkg/sl"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type actorKey struct{}

func WithActor(ctx context.Context, actor models.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func FromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(models.Actor)
	return actor, ok
}

// Authenticator validates HS256 tokens signed with a shared secret.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Parse validates token and maps its sub and role claims to an Actor.
func (a *Authenticator) Parse(token string) (models.Actor, error) {
	const op = "identity.Parse"

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Actor{}, fmt.Errorf("%s: %w: %v", op, ErrUnauthenticated, err)
	}

	if claims.Subject == "" {
		return models.Actor{}, fmt.Errorf("%s: %w: empty subject", op, ErrUnauthenticated)
	}

	role := models.Role(strings.ToUpper(claims.Role))
	if role != models.RoleTutor && role != models.RoleStudent {
		return models.Actor{}, fmt.Errorf("%s: %w: unknown role %q", op, ErrUnauthenticated, claims.Role)
	}

	return models.Actor{UserID: claims.Subject, Role: role}, nil
}

// Middleware rejects requests without a valid bearer token with 401.
func (a *Authenticator) Middleware(log *slog.Logger) func(http.Handler) http.Handler {
	log = log.With(slog.String("component", "middleware/identity"))

	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				unauthenticated(w, r, "missing bearer token")
				return
			}

			actor, err := a.Parse(token)
			if err != nil {
				log.Debug("token rejected", sl.Err(err))
				unauthenticated(w, r, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), actor)))
		}

		return http.HandlerFunc(fn)
	}
}

func unauthenticated(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusUnauthorized)
	render.JSON(w, r, response.Error(string(response.UNAUTHENTICATED), msg))
}
