package handler

import (
	"errors"
	"net/http"

	"github.com/templui/betterme/internal/ctxkeys"
	"github.com/templui/betterme/internal/service"
	"github.com/templui/betterme/internal/ui"
	"github.com/templui/betterme/internal/validation"
)

// pictures are capped by validation; the extra megabyte covers multipart framing
const maxPictureBody = validation.MaxPictureSize + 1<<20

type SettingsHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewSettingsHandler(userService *service.UserService, authService *service.AuthService) *SettingsHandler {
	return &SettingsHandler{
		userService: userService,
		authService: authService,
	}
}

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type updateThemeRequest struct {
	Theme string `json:"theme"`
}

// Me returns the user resolved from the session.
func (h *SettingsHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())
	ui.Render(w, r, http.StatusOK, h.userService.View(user))
}

func (h *SettingsHandler) Settings(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	settings, err := h.userService.Settings(user.ID)
	if err != nil {
		renderServiceError(w, r, err, "Failed to load settings", "user_id", user.ID)
		return
	}

	ui.Render(w, r, http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req updateProfileRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		renderServiceError(w, r, err, "Failed to update profile")
		return
	}

	settings, err := h.userService.UpdateProfile(user.ID, req.FirstName, req.LastName)
	if err != nil {
		renderServiceError(w, r, err, "Failed to update profile", "user_id", user.ID)
		return
	}

	ui.Render(w, r, http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	var req updateThemeRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		renderServiceError(w, r, err, "Failed to update theme")
		return
	}

	settings, err := h.userService.UpdateTheme(user.ID, req.Theme)
	if err != nil {
		renderServiceError(w, r, err, "Failed to update theme", "user_id", user.ID)
		return
	}

	ui.Render(w, r, http.StatusOK, settings)
}

// UploadPicture expects a multipart form with the image in "picture".
func (h *SettingsHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxPictureBody)
	err := r.ParseMultipartForm(maxPictureBody)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ui.RenderError(w, r, http.StatusBadRequest, "File too large")
			return
		}
		ui.RenderError(w, r, http.StatusBadRequest, "Invalid upload")
		return
	}

	_, header, err := r.FormFile("picture")
	if err != nil {
		ui.RenderError(w, r, http.StatusBadRequest, "Picture is required")
		return
	}

	settings, err := h.userService.UploadPicture(user.ID, header)
	if err != nil {
		renderServiceError(w, r, err, "Failed to upload picture", "user_id", user.ID)
		return
	}

	ui.Render(w, r, http.StatusOK, settings)
}

// DeleteAccount removes the user with all goals and steps and ends the session.
func (h *SettingsHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	user := ctxkeys.User(r.Context())

	err := h.userService.DeleteAccount(user.ID)
	if err != nil {
		renderServiceError(w, r, err, "Failed to delete account", "user_id", user.ID)
		return
	}

	h.authService.ClearJWTCookie(w)
	ui.Render(w, r, http.StatusOK, map[string]string{"id": user.ID})
}
