package handler

import (
	"net/http"
	"time"

	"github.com/avoronov/account-service/internal/service"
)

const (
	// AccessTokenCookie carries the access token and is scoped to the
	// whole API.
	AccessTokenCookie = "access_token"
	// RefreshTokenCookie carries the refresh token and is scoped to the
	// auth path only, so it never rides along on ordinary API requests.
	RefreshTokenCookie = "refresh_token"
)

// CookieConfig controls session cookie placement.
type CookieConfig struct {
	// Secure marks cookies as HTTPS-only. Enabled in production.
	Secure      bool
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	RefreshPath string
}

// Cookies writes and clears the two http-only session cookies.
type Cookies struct {
	config CookieConfig
}

func NewCookies(config CookieConfig) *Cookies {
	if config.RefreshPath == "" {
		config.RefreshPath = "/api/v1/auth"
	}
	return &Cookies{config: config}
}

// SetSession places a freshly issued token pair into the response.
func (c *Cookies) SetSession(w http.ResponseWriter, pair service.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    pair.Access,
		Path:     "/",
		MaxAge:   int(c.config.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    pair.Refresh,
		Path:     c.config.RefreshPath,
		MaxAge:   int(c.config.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires both session cookies.
func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    "",
		Path:     c.config.RefreshPath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.config.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadAccessToken extracts the access token cookie value, or "" if absent.
func ReadAccessToken(r *http.Request) string {
	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// ReadRefreshToken extracts the refresh token cookie value, or "" if absent.
func ReadRefreshToken(r *http.Request) string {
	cookie, err := r.Cookie(RefreshTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
