package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"jotion/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const UserIDKey contextKey = "userID"

var errNoToken = errors.New("no token provided")

// Authenticator resolves the caller's subject id from an HMAC-signed JWT.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// UserIDFromContext returns the authenticated subject, or "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// WithUserID stores userID on ctx the same way the middleware does.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// RequireAuth rejects requests without a valid token.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.authenticate(r)
		if err != nil {
			logger.Sugar.Debugf("Rejected request to %s: %v", r.URL.Path, err)
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// OptionalAuth attaches the subject when a valid token is present and lets
// anonymous requests through. A token that is present but invalid is still rejected.
func (a *Authenticator) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.authenticate(r)
		switch {
		case errors.Is(err, errNoToken):
			next.ServeHTTP(w, r)
		case err != nil:
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
		default:
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		}
	})
}

func (a *Authenticator) authenticate(r *http.Request) (string, error) {
	// Browsers cannot set headers on WebSocket upgrades, so the token may come in the query string.
	tokenString := r.URL.Query().Get("token")
	if tokenString == "" {
		tokenString = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}
	if tokenString == "" {
		return "", errNoToken
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		if len(a.secret) == 0 {
			return nil, errors.New("server is not configured to validate JWTs")
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", errors.New("user id (sub) claim is missing or invalid")
	}
	return subject, nil
}
