package handler

import (
	"net/http"
	"strings"

	"github.com/templui/betterme/internal/ctxkeys"
	"github.com/templui/betterme/internal/repository"
	"github.com/templui/betterme/internal/service"
	"github.com/templui/betterme/internal/ui"
)

type GoalHandler struct {
	goalService *service.GoalService
}

func NewGoalHandler(goalService *service.GoalService) *GoalHandler {
	return &GoalHandler{
		goalService: goalService,
	}
}

type createGoalRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Season      *string `json:"season"`
}

type updateGoalRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// List handles GET /api/goals?season=&status=&order=. status may repeat or
// hold a comma separated list.
func (h *GoalHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	query := r.URL.Query()

	filter := repository.GoalFilter{
		Season: query.Get("season"),
		Order:  query.Get("order"),
	}
	for _, value := range query["status"] {
		for status := range strings.SplitSeq(value, ",") {
			status = strings.TrimSpace(status)
			if status != "" {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}

	goals, err := h.goalService.ListGoals(user.ID, filter)
	if err != nil {
		renderServiceError(w, r, err, "Failed to load goals", "user_id", user.ID)
		return
	}

	ui.Render(w, r, http.StatusOK, goals)
}

func (h *GoalHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req createGoalRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		renderServiceError(w, r, err, "Failed to create goal")
		return
	}

	goal, err := h.goalService.CreateGoal(user.ID, service.CreateGoalInput{
		Title:       req.Title,
		Description: req.Description,
		Season:      req.Season,
	})
	if err != nil {
		renderServiceError(w, r, err, "Failed to create goal", "user_id", user.ID)
		return
	}

	ui.Render(w, r, http.StatusCreated, goal)
}

func (h *GoalHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	goal, err := h.goalService.GetGoal(goalID, user.ID)
	if err != nil {
		renderServiceError(w, r, err, "Failed to load goal", "user_id", user.ID, "goal_id", goalID)
		return
	}

	ui.Render(w, r, http.StatusOK, goal)
}

func (h *GoalHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	var req updateGoalRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		renderServiceError(w, r, err, "Failed to update goal")
		return
	}

	goal, err := h.goalService.UpdateGoal(goalID, user.ID, service.GoalPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	})
	if err != nil {
		renderServiceError(w, r, err, "Failed to update goal", "user_id", user.ID, "goal_id", goalID)
		return
	}

	ui.Render(w, r, http.StatusOK, goal)
}

func (h *GoalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	err := h.goalService.DeleteGoal(goalID, user.ID)
	if err != nil {
		renderServiceError(w, r, err, "Failed to delete goal", "user_id", user.ID, "goal_id", goalID)
		return
	}

	ui.Render(w, r, http.StatusOK, map[string]string{"id": goalID})
}
