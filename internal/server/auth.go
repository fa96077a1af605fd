package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stridetrack/stridetrack/internal/models"
)

const tokenIssuer = "stridetrack"

// Identity is what handlers know about the caller.
type Identity struct {
	SignedIn bool   `json:"signed_in"`
	Email    string `json:"email,omitempty"`
}

type contextKey string

const identityKey contextKey = "identity"

// identityFrom returns the caller identity stored by BearerAuth.
func identityFrom(ctx context.Context) Identity {
	id, _ := ctx.Value(identityKey).(Identity)
	return id
}

var errInvalidToken = fmt.Errorf("%w: invalid bearer token", models.ErrAuthRequired)

// issueToken signs a session JWT for the given email.
func issueToken(secret, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": tokenIssuer,
		"sub": email,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// parseToken validates a session JWT and returns the subject email.
func parseToken(secret, raw string) (string, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", errInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", errInvalidToken
	}
	subject, _ := claims["sub"].(string)
	return subject, nil
}

// BearerAuth validates an Authorization bearer token and stores the caller
// identity in the request context. An empty secret disables token checks
// entirely; that mode is for tailnet deployments where the network is the
// perimeter, and callers appear as anonymous signed-out identities.
func BearerAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			raw = strings.TrimSpace(raw)
			if raw == "" {
				http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
				return
			}

			email, err := parseToken(secret, raw)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, Identity{SignedIn: true, Email: email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *Server) handleAuthToken(w http.ResponseWriter, r *http.Request) {
	if s.auth.JWTSecret == "" {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "token auth is not configured"})
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email required"})
		return
	}

	ttl := s.auth.TokenTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	token, err := issueToken(s.auth.JWTSecret, req.Email, ttl)
	if err != nil {
		s.log.Error("issuing token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "could not issue token"})
		return
	}

	s.tracker.SetAuth(true, req.Email)

	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_in": int(ttl.Seconds()),
	})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, identityFrom(r.Context()))
}
