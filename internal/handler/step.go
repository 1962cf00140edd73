package handler

import (
	"net/http"

	"github.com/templui/betterme/internal/ctxkeys"
	"github.com/templui/betterme/internal/service"
	"github.com/templui/betterme/internal/ui"
)

type StepHandler struct {
	stepService *service.StepService
}

func NewStepHandler(stepService *service.StepService) *StepHandler {
	return &StepHandler{
		stepService: stepService,
	}
}

type createStepRequest struct {
	Title string `json:"title"`
	Order *int   `json:"order"`
}

type updateStepRequest struct {
	Title       *string `json:"title"`
	IsCompleted *bool   `json:"is_completed"`
	Order       *int    `json:"order"`
}

func (h *StepHandler) List(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	steps, err := h.stepService.ListSteps(goalID, user.ID)
	if err != nil {
		renderServiceError(w, r, err, "Failed to load steps", "user_id", user.ID, "goal_id", goalID)
		return
	}

	ui.Render(w, r, http.StatusOK, steps)
}

func (h *StepHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	goalID := r.PathValue("id")

	var req createStepRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		renderServiceError(w, r, err, "Failed to create step")
		return
	}

	step, err := h.stepService.CreateStep(goalID, user.ID, req.Title, req.Order)
	if err != nil {
		renderServiceError(w, r, err, "Failed to create step", "user_id", user.ID, "goal_id", goalID)
		return
	}

	ui.Render(w, r, http.StatusCreated, step)
}

func (h *StepHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	stepID := r.PathValue("id")

	var req updateStepRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		renderServiceError(w, r, err, "Failed to update step")
		return
	}

	step, err := h.stepService.UpdateStep(stepID, user.ID, service.StepPatch{
		Title:       req.Title,
		IsCompleted: req.IsCompleted,
		Order:       req.Order,
	})
	if err != nil {
		renderServiceError(w, r, err, "Failed to update step", "user_id", user.ID, "step_id", stepID)
		return
	}

	ui.Render(w, r, http.StatusOK, step)
}

func (h *StepHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	stepID := r.PathValue("id")

	step, err := h.stepService.ToggleStep(stepID, user.ID)
	if err != nil {
		renderServiceError(w, r, err, "Failed to toggle step", "user_id", user.ID, "step_id", stepID)
		return
	}

	ui.Render(w, r, http.StatusOK, step)
}

func (h *StepHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	stepID := r.PathValue("id")

	goalID, err := h.stepService.DeleteStep(stepID, user.ID)
	if err != nil {
		renderServiceError(w, r, err, "Failed to delete step", "user_id", user.ID, "step_id", stepID)
		return
	}

	ui.Render(w, r, http.StatusOK, map[string]string{"id": stepID, "goal_id": goalID})
}
