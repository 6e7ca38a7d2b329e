package routes

import (
	"net/http"

	"github.com/accountabro/backend/internal/app"
	"github.com/accountabro/backend/internal/handler"
	"github.com/accountabro/backend/internal/middleware"
)

func SetupRoutes(app *app.App, limiter *middleware.RateLimiter) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	profile := handler.NewProfileHandler(app.ProfileService)
	category := handler.NewCategoryHandler(app.CategoryService, app.QueueService, app.MatchingEngine)
	goal := handler.NewGoalHandler(app.GoalService, app.CategoryService)
	request := handler.NewRequestHandler(app.QueueService, app.CategoryService)
	match := handler.NewMatchHandler(app.LifecycleService, app.LedgerService, app.ReportService)
	block := handler.NewBlockHandler(app.SafetyService)

	mux := http.NewServeMux()

	// Writes are rate limited per client
	identity := middleware.NewIdentity(app.Cfg.AuthJWTSecret)
	rateLimited := middleware.RateLimit(limiter)
	write := func(h http.HandlerFunc) http.HandlerFunc {
		return identity.RequireProfile(rateLimited(h))
	}
	read := identity.RequireProfile

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /health", health.Health)

	// ============================================================================
	// PROFILE ROUTES (X-Profile-ID or bearer token)
	// ============================================================================

	// Profiles
	mux.HandleFunc("POST /api/profiles", write(profile.Create))
	mux.HandleFunc("GET /api/profiles/me", read(profile.Me))
	mux.HandleFunc("PUT /api/profiles/me/availability", write(profile.SetAvailability))

	// Categories
	mux.HandleFunc("GET /api/categories", read(category.List))
	mux.HandleFunc("POST /api/categories", write(category.Create))
	mux.HandleFunc("GET /api/categories/{slug}/queue", read(category.Queue))
	mux.HandleFunc("POST /api/categories/{slug}/passes", write(category.RunPass))

	// Goals
	mux.HandleFunc("PUT /api/goals/{category}", write(goal.Set))

	// Match requests
	mux.HandleFunc("POST /api/requests", write(request.Enqueue))
	mux.HandleFunc("DELETE /api/requests/{id}", write(request.Withdraw))

	// Matches
	mux.HandleFunc("GET /api/matches", read(match.List))
	mux.HandleFunc("GET /api/matches/{id}", read(match.Get))
	mux.HandleFunc("POST /api/matches/{id}/end", write(match.End))
	mux.HandleFunc("POST /api/matches/{id}/members", write(match.AddMember))
	mux.HandleFunc("POST /api/matches/{id}/reports", write(match.Report))

	// Check-ins
	mux.HandleFunc("GET /api/matches/{id}/checkins", read(match.CheckIns))
	mux.HandleFunc("POST /api/matches/{id}/checkins", write(match.RecordCheckIn))
	mux.HandleFunc("GET /api/matches/{id}/progress", read(match.Progress))

	// Blocks
	mux.HandleFunc("POST /api/blocks", write(block.Block))
	mux.HandleFunc("DELETE /api/blocks/{profile}", write(block.Unblock))

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.Recover,
	)
}
