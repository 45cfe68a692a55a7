package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ieraasyl/userboard/internal/middleware"
	"github.com/ieraasyl/userboard/internal/models"
	"github.com/ieraasyl/userboard/internal/services"
	"github.com/ieraasyl/userboard/pkg/config"
	"github.com/ieraasyl/userboard/pkg/utils"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// SessionStore mints signed session tokens after a successful login and
// reads them back from incoming requests. Satisfied by
// services.SessionService.
type SessionStore interface {
	Issue(session *models.Session) (string, time.Time, error)
	CurrentSession(r *http.Request) (*models.Session, bool)
}

// AuthHandler implements the hosted login flow against the identity
// provider: redirect to the provider's consent screen, exchange the
// callback code, read the userinfo profile, and set the session cookie.
// Everything about credential verification is delegated to the provider;
// this system only carries the resulting session.
type AuthHandler struct {
	oauth        *oauth2.Config // Authorization-code flow configuration
	issuerURL    string         // Provider base URL
	appURL       string         // Where to land after login/logout
	sessions     SessionStore   // Session token minting and lookup
	isProduction bool           // Secure cookie flag
}

// userInfo is the subset of the provider's userinfo response the session
// carries.
type userInfo struct {
	Sub     string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// NewAuthHandler creates an auth handler wired to the configured
// identity provider.
//
// Example:
//
//	authHandler := handlers.NewAuthHandler(cfg, sessionService)
//	r.Get("/api/auth/login", authHandler.Login)
//	r.Get("/api/auth/callback", authHandler.Callback)
//	r.Get("/api/auth/logout", authHandler.Logout)
func NewAuthHandler(cfg *config.Config, sessions SessionStore) *AuthHandler {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		RedirectURL:  cfg.OAuth.RedirectURL,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  cfg.Upstream.BaseURL + "/authorize",
			TokenURL: cfg.Upstream.BaseURL + "/oauth/token",
		},
	}

	return &AuthHandler{
		oauth:        oauthConfig,
		issuerURL:    cfg.Upstream.BaseURL,
		appURL:       cfg.Server.AppURL,
		sessions:     sessions,
		isProduction: cfg.Server.IsProduction(),
	}
}

// Login initiates the hosted login flow. It stores a CSRF state token in
// a short-lived cookie and redirects the browser to the provider's
// consent screen.
//
// @Summary      Initiate hosted login
// @Tags         auth
// @Success      307  {string}  string  "Redirect to identity provider"
// @Router       /api/auth/login [get]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := services.GenerateState()

	utils.SetAuthCookieWithMaxAge(w, "auth_state", state, 600, h.isProduction) // 10 minutes

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback completes the hosted login flow. It verifies the CSRF state,
// exchanges the authorization code, fetches the userinfo profile, and
// sets the signed session cookie before redirecting to the app.
//
// @Summary      Hosted login callback
// @Tags         auth
// @Param        state  query  string  true  "CSRF state"
// @Param        code   query  string  true  "Authorization code"
// @Success      303    {string}  string  "Redirect to app"
// @Failure      400    {object}  utils.ErrorResponse  "Invalid state or missing code"
// @Failure      401    {object}  utils.ErrorResponse  "Code exchange or userinfo failed"
// @Router       /api/auth/callback [get]
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("auth_state")
	if err != nil {
		log.Warn().Err(err).Msg("Missing auth state cookie")
		middleware.IncrementLoginAttempts("invalid_state")
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid auth state")
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		log.Warn().Msg("Auth state mismatch")
		middleware.IncrementLoginAttempts("invalid_state")
		utils.RespondWithError(w, r, http.StatusBadRequest, "Invalid auth state")
		return
	}

	utils.ClearAuthCookie(w, "auth_state")

	code := r.URL.Query().Get("code")
	if code == "" {
		log.Warn().Msg("Missing authorization code")
		middleware.IncrementLoginAttempts("missing_code")
		utils.RespondWithError(w, r, http.StatusBadRequest, "Missing authorization code")
		return
	}

	token, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("Failed to exchange authorization code")
		middleware.IncrementLoginAttempts("exchange_failed")
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Authentication failed")
		return
	}

	info, err := h.fetchUserInfo(r, token)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch userinfo")
		middleware.IncrementLoginAttempts("userinfo_failed")
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Authentication failed")
		return
	}

	session := &models.Session{
		Subject: info.Sub,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}

	sessionToken, expiresAt, err := h.sessions.Issue(session)
	if err != nil {
		log.Error().Err(err).Msg("Failed to issue session token")
		middleware.IncrementLoginAttempts("session_failed")
		utils.RespondWithError(w, r, http.StatusInternalServerError, "Something went wrong")
		return
	}

	utils.SetAuthCookie(w, services.SessionCookieName, sessionToken, expiresAt, h.isProduction)

	middleware.IncrementLoginAttempts("success")
	log.Info().
		Str("subject", info.Sub).
		Str("device", services.DeviceSummary(r.UserAgent())).
		Msg("User logged in")

	http.Redirect(w, r, h.appURL, http.StatusSeeOther)
}

// Logout clears the session cookie and redirects to the provider's
// logout endpoint so the hosted session ends too.
//
// @Summary      Logout
// @Tags         auth
// @Success      303  {string}  string  "Redirect to identity provider logout"
// @Router       /api/auth/logout [get]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	utils.ClearAuthCookie(w, services.SessionCookieName)

	logoutURL := fmt.Sprintf("%s/v2/logout?client_id=%s&returnTo=%s",
		h.issuerURL,
		url.QueryEscape(h.oauth.ClientID),
		url.QueryEscape(h.appURL),
	)

	http.Redirect(w, r, logoutURL, http.StatusSeeOther)
}

// Me returns the current session's identity, so the UI can discover the
// logged-in user without decoding the cookie itself.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Success      200  {object}  models.Session
// @Failure      401  {object}  utils.ErrorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := h.sessions.CurrentSession(r)
	if !ok {
		utils.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	utils.RespondWithJSON(w, r, http.StatusOK, session)
}

// fetchUserInfo reads the provider's userinfo endpoint with the freshly
// exchanged token.
func (h *AuthHandler) fetchUserInfo(r *http.Request, token *oauth2.Token) (*userInfo, error) {
	client := h.oauth.Client(r.Context(), token)

	resp, err := client.Get(h.issuerURL + "/userinfo")
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d", resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo: %w", err)
	}

	if info.Sub == "" {
		return nil, fmt.Errorf("userinfo response missing subject")
	}

	return &info, nil
}
