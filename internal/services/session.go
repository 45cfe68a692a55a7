// Package services provides the application's business logic between the
// HTTP handlers and the upstream management API.
//
// The services layer is responsible for:
//   - Session issuing and verification (signed cookie, no server-side state)
//   - Dashboard row derivation from the upstream user list
//   - Statistics aggregation over the daily login time series
//   - The combined overview fetch with all-or-nothing join semantics
package services

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ieraasyl/userboard/internal/models"
	"github.com/ieraasyl/userboard/pkg/config"
	"github.com/mileusna/useragent"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "app_session"

// SessionService issues and verifies sessions. A session is a signed
// HS256 JWT stored in a cookie; there is no server-side session store,
// so verification is purely local and side-effect free.
type SessionService struct {
	secret []byte        // HMAC signing secret
	expiry time.Duration // Session lifetime
}

// sessionClaims are the JWT claims of a session token. The subject lives
// in the registered claims; profile fields ride along for display.
type sessionClaims struct {
	Email                string `json:"email"`
	Name                 string `json:"name"`
	Picture              string `json:"picture"`
	jwt.RegisteredClaims        // Standard claims (sub, exp, iat, nbf)
}

// NewSessionService creates a session service with the configured signing
// secret and lifetime.
//
// Example:
//
//	sessions := services.NewSessionService(&cfg.Session)
//	token, expiresAt, err := sessions.Issue(&models.Session{Subject: "auth0|abc"})
func NewSessionService(cfg *config.SessionConfig) *SessionService {
	return &SessionService{
		secret: cfg.Secret,
		expiry: cfg.Expiry,
	}
}

// Issue creates a signed session token for the given identity.
// Returns the token string and its expiration time.
func (s *SessionService) Issue(session *models.Session) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)

	claims := sessionClaims{
		Email:   session.Email,
		Name:    session.Name,
		Picture: session.Picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// CurrentSession reads and verifies the session carried by the request.
// Returns the session and true when a valid, unexpired token is present;
// otherwise nil and false. It never writes anything.
//
// This is the SessionProvider capability consumed by the middleware and
// handlers; swapping the identity integration means replacing only this
// adapter.
func (s *SessionService) CurrentSession(r *http.Request) (*models.Session, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, false
	}

	token, err := jwt.ParseWithClaims(cookie.Value, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, false
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, false
	}

	return &models.Session{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, true
}

// VerifySubject reports whether the request carries a valid session whose
// subject equals targetUserID. This is the gate in front of every
// single-user read and mutation; it has no side effects and performs no
// role or permission checks beyond the identity match.
func (s *SessionService) VerifySubject(r *http.Request, targetUserID string) bool {
	session, ok := s.CurrentSession(r)
	if !ok {
		return false
	}
	return session.Subject == targetUserID
}

// GenerateState generates a random state string for OAuth CSRF protection.
// The value is stored in a short-lived cookie before the hosted redirect
// and compared when the provider calls back.
//
// Returns a URL-safe base64-encoded string of 16 random bytes.
func GenerateState() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DeviceSummary builds a compact human-readable device description from a
// User-Agent string, used when logging successful logins.
//
// Example:
//
//	services.DeviceSummary(r.UserAgent())
//	// "Chrome 120.0 / Windows 11 / Desktop"
func DeviceSummary(userAgent string) string {
	if userAgent == "" {
		return "Unknown Device"
	}

	ua := useragent.Parse(userAgent)

	var parts []string
	if ua.Name != "" {
		browser := ua.Name
		if ua.Version != "" {
			browser += " " + ua.Version
		}
		parts = append(parts, browser)
	}
	if ua.OS != "" {
		os := ua.OS
		if ua.OSVersion != "" {
			os += " " + ua.OSVersion
		}
		parts = append(parts, os)
	}
	switch {
	case ua.Mobile:
		parts = append(parts, "Mobile")
	case ua.Tablet:
		parts = append(parts, "Tablet")
	case ua.Desktop:
		parts = append(parts, "Desktop")
	}

	if len(parts) == 0 {
		return "Unknown Device"
	}
	return strings.Join(parts, " / ")
}
