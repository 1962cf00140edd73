package handler

import (
	"net/http"

	"github.com/templui/betterme/internal/ctxkeys"
	"github.com/templui/betterme/internal/model"
	"github.com/templui/betterme/internal/season"
	"github.com/templui/betterme/internal/service"
	"github.com/templui/betterme/internal/ui"
)

// SeasonHandler serves the season-shaped views: dashboard, season
// browser and archive.
type SeasonHandler struct {
	goalService *service.GoalService
}

func NewSeasonHandler(goalService *service.GoalService) *SeasonHandler {
	return &SeasonHandler{
		goalService: goalService,
	}
}

type dashboardResponse struct {
	Season season.View           `json:"season"`
	Goals  []*model.GoalWithSteps `json:"goals"`
}

func (h *SeasonHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, current, err := h.goalService.CurrentSeasonGoals(user.ID)
	if err != nil {
		renderServiceError(w, r, err, "Failed to load dashboard", "user_id", user.ID)
		return
	}

	ui.Render(w, r, http.StatusOK, dashboardResponse{
		Season: current.View(),
		Goals:  goals,
	})
}

func (h *SeasonHandler) Seasons(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	seasons, err := h.goalService.Seasons(user.ID)
	if err != nil {
		renderServiceError(w, r, err, "Failed to load seasons", "user_id", user.ID)
		return
	}

	ui.Render(w, r, http.StatusOK, seasons)
}

// SeasonGoals handles GET /api/seasons/{key}. Only active goals are listed
// unless scope=all is given.
func (h *SeasonHandler) SeasonGoals(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	key := r.PathValue("key")

	var (
		goals []*model.GoalWithSteps
		err   error
	)
	if r.URL.Query().Get("scope") == "all" {
		goals, err = h.goalService.GoalsBySeason(user.ID, key)
	} else {
		goals, err = h.goalService.SeasonGoals(user.ID, key)
	}
	if err != nil {
		renderServiceError(w, r, err, "Failed to load season", "user_id", user.ID, "season", key)
		return
	}

	s, _ := season.ParseKey(key)
	ui.Render(w, r, http.StatusOK, dashboardResponse{
		Season: s.View(),
		Goals:  goals,
	})
}

func (h *SeasonHandler) Archive(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	goals, err := h.goalService.ArchivedGoals(user.ID)
	if err != nil {
		renderServiceError(w, r, err, "Failed to load archive", "user_id", user.ID)
		return
	}

	ui.Render(w, r, http.StatusOK, goals)
}
