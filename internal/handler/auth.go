package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/templui/betterme/internal/config"
	"github.com/templui/betterme/internal/ctxkeys"
	"github.com/templui/betterme/internal/model"
	"github.com/templui/betterme/internal/service"
	"github.com/templui/betterme/internal/ui"
)

const (
	oauthStateCookie = "oauth_state"
	oauthFailed      = "OAuth authentication failed. Please try again."

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	githubAPIURL      = "https://api.github.com"
)

type AuthHandler struct {
	authService     *service.AuthService
	identityService *service.IdentityService
	google          *oauth2.Config
	github          *oauth2.Config

	// overridden in tests
	googleUserInfoURL string
	githubAPIURL      string
}

func NewAuthHandler(authService *service.AuthService, identityService *service.IdentityService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService:     authService,
		identityService: identityService,
		google: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/google/callback",
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		github: &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  cfg.AppURL + "/auth/github/callback",
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		googleUserInfoURL: googleUserInfoURL,
		githubAPIURL:      githubAPIURL,
	}
}

// Logout ends the session. The user row is untouched.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.ClearJWTCookie(w)
	ui.Render(w, r, http.StatusOK, nil)
}

// GoogleAuth redirects to the Google consent screen.
func (h *AuthHandler) GoogleAuth(w http.ResponseWriter, r *http.Request) {
	h.redirectToProvider(w, r, "google", h.google)
}

func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	h.callback(w, r, "google", h.google, h.fetchGoogleIdentity)
}

// GitHubAuth redirects to the GitHub consent screen.
func (h *AuthHandler) GitHubAuth(w http.ResponseWriter, r *http.Request) {
	h.redirectToProvider(w, r, "github", h.github)
}

func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	h.callback(w, r, "github", h.github, h.fetchGitHubIdentity)
}

func (h *AuthHandler) redirectToProvider(w http.ResponseWriter, r *http.Request, provider string, oauthCfg *oauth2.Config) {
	if oauthCfg.ClientID == "" {
		ui.RenderError(w, r, http.StatusNotFound, "Login provider not configured")
		return
	}

	state := generateOAuthState()

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   secureCookies(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})

	slog.Debug("redirecting to oauth provider", "provider", provider)
	http.Redirect(w, r, oauthCfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

type identityFetcher func(ctx context.Context, client *http.Client) (*model.ExternalIdentity, error)

// callback validates the state cookie, exchanges the code, fetches the
// provider profile and starts a session for it.
func (h *AuthHandler) callback(w http.ResponseWriter, r *http.Request, provider string, oauthCfg *oauth2.Config, fetch identityFetcher) {
	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		slog.Warn("oauth state validation failed", "provider", provider, "error", err)
		ui.RenderError(w, r, http.StatusBadRequest, oauthFailed)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:   oauthStateCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		slog.Warn("oauth callback missing code", "provider", provider)
		ui.RenderError(w, r, http.StatusBadRequest, oauthFailed)
		return
	}

	ctx := r.Context()
	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		slog.Error("oauth token exchange failed", "provider", provider, "error", err)
		ui.RenderError(w, r, http.StatusBadRequest, oauthFailed)
		return
	}

	identity, err := fetch(ctx, oauthCfg.Client(ctx, token))
	if err != nil {
		slog.Error("failed to fetch oauth profile", "provider", provider, "error", err)
		ui.RenderError(w, r, http.StatusBadRequest, oauthFailed)
		return
	}

	// provisions on first login so the welcome email goes out right away
	user := h.identityService.ResolveUser(identity)
	if user == nil {
		ui.RenderError(w, r, http.StatusInternalServerError, "Authentication failed. Please try again.")
		return
	}

	jwtToken, err := h.authService.GenerateJWT(identity)
	if err != nil {
		slog.Error("failed to generate JWT", "error", err, "user_id", user.ID)
		ui.RenderError(w, r, http.StatusInternalServerError, "Authentication failed. Please try again.")
		return
	}

	h.authService.SetJWTCookie(w, jwtToken)

	slog.Info("user logged in", "provider", provider, "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *AuthHandler) fetchGoogleIdentity(ctx context.Context, client *http.Client) (*model.ExternalIdentity, error) {
	var info struct {
		ID         string `json:"id"`
		Email      string `json:"email"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	err := getJSON(ctx, client, h.googleUserInfoURL, &info)
	if err != nil {
		return nil, err
	}
	if info.ID == "" || info.Email == "" {
		return nil, fmt.Errorf("google profile is missing id or email")
	}

	return &model.ExternalIdentity{
		ID:         model.ExternalID("google", info.ID),
		Email:      info.Email,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
		Picture:    info.Picture,
	}, nil
}

func (h *AuthHandler) fetchGitHubIdentity(ctx context.Context, client *http.Client) (*model.ExternalIdentity, error) {
	var info struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		AvatarURL string `json:"avatar_url"`
	}
	err := getJSON(ctx, client, h.githubAPIURL+"/user", &info)
	if err != nil {
		return nil, err
	}

	// private addresses only show up on /user/emails
	if info.Email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		err = getJSON(ctx, client, h.githubAPIURL+"/user/emails", &emails)
		if err != nil {
			return nil, err
		}
		for _, e := range emails {
			if e.Primary && e.Verified {
				info.Email = e.Email
				break
			}
		}
	}

	if info.ID == 0 || info.Email == "" {
		return nil, fmt.Errorf("github profile is missing id or email")
	}

	given, family, _ := strings.Cut(strings.TrimSpace(info.Name), " ")
	return &model.ExternalIdentity{
		ID:         model.ExternalID("github", strconv.FormatInt(info.ID, 10)),
		Email:      info.Email,
		GivenName:  given,
		FamilyName: strings.TrimSpace(family),
		Picture:    info.AvatarURL,
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, dst any) error {
	resp, err := resty.NewWithClient(client).R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		ForceContentType("application/json").
		SetResult(dst).
		Get(url)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", url, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode(), url)
	}
	return nil
}

// generateOAuthState creates a random state token for the OAuth round trip.
func generateOAuthState() string {
	bytes := make([]byte, 32)
	_, err := rand.Read(bytes)
	if err != nil {
		panic("failed to generate oauth state: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}

func secureCookies(r *http.Request) bool {
	cfg := ctxkeys.Config(r.Context())
	return cfg != nil && cfg.SecureCookies()
}
