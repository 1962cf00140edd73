package routes

import (
	"net/http"

	"github.com/templui/betterme/internal/app"
	"github.com/templui/betterme/internal/handler"
	"github.com/templui/betterme/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	home := handler.NewHomeHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService, app.IdentityService, app.Cfg)
	goal := handler.NewGoalHandler(app.GoalService)
	step := handler.NewStepHandler(app.StepService)
	seasons := handler.NewSeasonHandler(app.GoalService)
	settings := handler.NewSettingsHandler(app.UserService, app.AuthService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", home.Healthz)

	// OAuth (rate limited)
	rateLimiter := middleware.RateLimitAuth()

	mux.HandleFunc("GET /auth/google", rateLimiter(auth.GoogleAuth))
	mux.HandleFunc("GET /auth/google/callback", rateLimiter(auth.GoogleCallback))
	mux.HandleFunc("GET /auth/github", rateLimiter(auth.GitHubAuth))
	mux.HandleFunc("GET /auth/github/callback", rateLimiter(auth.GitHubCallback))
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	mux.HandleFunc("GET /api/me", middleware.RequireAuth(settings.Me))
	mux.HandleFunc("GET /api/dashboard", middleware.RequireAuth(seasons.Dashboard))

	// Goals
	mux.HandleFunc("GET /api/goals", middleware.RequireAuth(goal.List))
	mux.HandleFunc("POST /api/goals", middleware.RequireAuth(goal.Create))
	mux.HandleFunc("GET /api/goals/{id}", middleware.RequireAuth(goal.Get))
	mux.HandleFunc("PATCH /api/goals/{id}", middleware.RequireAuth(goal.Update))
	mux.HandleFunc("DELETE /api/goals/{id}", middleware.RequireAuth(goal.Delete))

	// Steps
	mux.HandleFunc("GET /api/goals/{id}/steps", middleware.RequireAuth(step.List))
	mux.HandleFunc("POST /api/goals/{id}/steps", middleware.RequireAuth(step.Create))
	mux.HandleFunc("PATCH /api/steps/{id}", middleware.RequireAuth(step.Update))
	mux.HandleFunc("POST /api/steps/{id}/toggle", middleware.RequireAuth(step.Toggle))
	mux.HandleFunc("DELETE /api/steps/{id}", middleware.RequireAuth(step.Delete))

	// Seasons
	mux.HandleFunc("GET /api/seasons", middleware.RequireAuth(seasons.Seasons))
	mux.HandleFunc("GET /api/seasons/{key}", middleware.RequireAuth(seasons.SeasonGoals))
	mux.HandleFunc("GET /api/archive", middleware.RequireAuth(seasons.Archive))

	// Settings & account
	mux.HandleFunc("GET /api/settings", middleware.RequireAuth(settings.Settings))
	mux.HandleFunc("PATCH /api/settings/profile", middleware.RequireAuth(settings.UpdateProfile))
	mux.HandleFunc("PUT /api/settings/theme", middleware.RequireAuth(settings.UpdateTheme))
	mux.HandleFunc("POST /api/settings/picture", middleware.RequireAuth(settings.UploadPicture))
	mux.HandleFunc("DELETE /api/account", middleware.RequireAuth(settings.DeleteAccount))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", home.NotFound)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // CSRF and OAuth read the cookie policy from it
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.AuthService, app.IdentityService),
	)

	return handler
}
