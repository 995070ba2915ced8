package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CookieName is the session cookie set after a successful login.
const CookieName = "folio_session"

var ErrInvalidSession = errors.New("invalid session")

// Revoker records ended sessions so their tokens are refused until expiry.
type Revoker interface {
	RevokeSession(ctx context.Context, jti string, ttl time.Duration) error
	IsSessionRevoked(ctx context.Context, jti string) (bool, error)
}

// SessionConfig configures a Sessions manager.
type SessionConfig struct {
	Secret  string
	TTL     time.Duration
	Secure  bool    // set the Secure cookie attribute
	Revoker Revoker // optional
}

// Sessions issues and verifies signed session cookies.
type Sessions struct {
	secret  []byte
	ttl     time.Duration
	secure  bool
	revoker Revoker
	logger  zerolog.Logger
	now     func() time.Time
}

// NewSessions creates a session manager. A zero TTL defaults to 12 hours.
func NewSessions(cfg SessionConfig, logger zerolog.Logger) *Sessions {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Sessions{
		secret:  []byte(cfg.Secret),
		ttl:     ttl,
		secure:  cfg.Secure,
		revoker: cfg.Revoker,
		logger:  logger.With().Str("component", "sessions").Logger(),
		now:     time.Now,
	}
}

// Start issues a session for adminID and sets the cookie.
func (s *Sessions) Start(w http.ResponseWriter, adminID string) (*Identity, error) {
	now := s.now()
	id := &Identity{
		AdminID:   adminID,
		SessionID: uuid.NewString(),
		ExpiresAt: now.Add(s.ttl).Truncate(time.Second),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   id.AdminID,
		ID:        id.SessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(id.ExpiresAt),
	}).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  id.ExpiresAt,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return id, nil
}

// End revokes the request's session, if any, and clears the cookie.
func (s *Sessions) End(w http.ResponseWriter, r *http.Request) error {
	s.clearCookie(w)

	id := IdentityFromContext(r.Context())
	if id == nil || s.revoker == nil {
		return nil
	}
	ttl := id.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoker.RevokeSession(r.Context(), id.SessionID, ttl)
}

// Verify parses a session token.
func (s *Sessions) Verify(ctx context.Context, token string) (*Identity, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidSession
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsSessionRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidSession
		}
	}

	return &Identity{
		AdminID:   claims.Subject,
		SessionID: claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Load binds the identity from the session cookie to the request context.
// Requests without a valid session continue anonymously.
func (s *Sessions) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		id, err := s.Verify(r.Context(), cookie.Value)
		if err != nil {
			if !errors.Is(err, ErrInvalidSession) {
				s.logger.Error().Err(err).Msg("session lookup failed")
			}
			s.clearCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func (s *Sessions) clearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
