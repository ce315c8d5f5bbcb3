package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sngm3741/coffee-map/internal/logger"
	"github.com/sngm3741/coffee-map/internal/metrics"
)

type contextKey string

const sessionContextKey contextKey = "session"

// ContextWithSession stores the browser session id into context.
func ContextWithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionContextKey, sessionID)
}

// SessionFromContext extracts the browser session id from context.
func SessionFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionContextKey).(string)
	return id, ok && id != ""
}

// SessionConfig defines how session cookies are signed and issued.
type SessionConfig struct {
	Secret     []byte
	Issuer     string
	TTL        time.Duration
	CookieName string
	Secure     bool
	Logger     logger.Logger
	Now        func() time.Time
}

// Sessions issues and verifies the session cookie. The cookie holds an HS256
// JWT whose subject is the session id.
type Sessions struct {
	secret     []byte
	issuer     string
	ttl        time.Duration
	cookieName string
	secure     bool
	logger     logger.Logger
	now        func() time.Time
}

func NewSessions(cfg SessionConfig) *Sessions {
	s := &Sessions{
		secret:     cfg.Secret,
		issuer:     strings.TrimSpace(cfg.Issuer),
		ttl:        cfg.TTL,
		cookieName: cfg.CookieName,
		secure:     cfg.Secure,
		logger:     cfg.Logger,
		now:        cfg.Now,
	}
	if s.cookieName == "" {
		s.cookieName = "coffee_map_session"
	}
	if s.ttl <= 0 {
		s.ttl = 24 * time.Hour
	}
	if s.logger == nil {
		s.logger = logger.NewNoOpLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Middleware resolves the session of every request, issuing a fresh one when
// the cookie is missing, expired or forged. The cookie is refreshed on each
// request so active sessions slide forward.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := ""
		if cookie, err := r.Cookie(s.cookieName); err == nil {
			id, err := s.Parse(cookie.Value)
			if err != nil {
				s.logger.Debug("discarding session cookie", map[string]interface{}{"reason": err.Error()})
			}
			sessionID = id
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			metrics.SessionsCreated.Inc()
		}

		token, err := s.Issue(sessionID)
		if err != nil {
			s.logger.WithError(err).Error("failed to sign session token", nil)
			WriteError(s.logger, w, http.StatusInternalServerError, "Failed to start session")
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   int(s.ttl / time.Second),
		})

		next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sessionID)))
	})
}

// Issue signs a session token for sessionID.
func (s *Sessions) Issue(sessionID string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("session secret not configured")
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies a session token and returns its session id.
func (s *Sessions) Parse(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30 * time.Second),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("invalid session token: %w", err)
	}
	if !token.Valid {
		return "", errors.New("invalid session token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("invalid session subject: %w", err)
	}
	return claims.Subject, nil
}
