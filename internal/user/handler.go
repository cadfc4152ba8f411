package user

import (
	"errors"
	"net/http"

	"github.com/redmonkez12/wasteless-api/internal/httputil"
	"github.com/redmonkez12/wasteless-api/internal/identity"
	"github.com/redmonkez12/wasteless-api/internal/logging"
)

// Handler contains HTTP handlers for the profile endpoints
type Handler struct {
	service        *Service
	maxUploadBytes int64
}

func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// ProfileResponse is returned after a profile update
type ProfileResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// GetProfile returns the authenticated user's profile
// @Summary      Get profile
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} User
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /userProfile [get]
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := identity.FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	u, err := h.service.Profile(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get profile", "user_id", id.UserID, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, u, http.StatusOK)
}

// UpdateProfile sets the location and optionally the profile photo
// @Summary      Update profile
// @Description  The location is geocoded to fill the user's coordinates.
// @Tags         user
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        location formData string true "Address"
// @Param        fotoProfile formData file false "Profile photo, JPEG, PNG or WebP"
// @Success      200 {object} ProfileResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing or unresolvable location"
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      413 {object} httputil.ErrorResponse "Upload too large"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /userProfile [put]
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := identity.FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	logger = logger.WithFields(map[string]any{"user_id": id.UserID})

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondErrorWithCode(w, "upload too large", httputil.CodeUploadTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		logger.Warn("invalid multipart body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid multipart body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	photo, err := httputil.ReadFormFile(r, "fotoProfile")
	if err != nil {
		logger.Warn("failed to read profile photo", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to read photo", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	u, err := h.service.UpdateProfile(r.Context(), id.UserID, ProfileInput{
		Location: r.FormValue("location"),
		Photo:    photo,
	})
	if err != nil {
		var verrs httputil.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			logger.Warn("profile update failed: validation error", "error", err.Error())
			httputil.RespondValidation(w, verrs)
		case errors.Is(err, ErrInvalidLocation):
			httputil.RespondErrorWithCode(w, "invalid location", httputil.CodeInvalidLocation, http.StatusBadRequest)
		case errors.Is(err, ErrNotFound):
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		case errors.Is(err, ErrUpstream):
			logger.Error("profile update failed: upstream error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update profile", httputil.CodeUpstreamError, http.StatusInternalServerError)
		default:
			logger.Error("profile update failed: internal error", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to update profile", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("profile updated")
	httputil.RespondJSON(w, ProfileResponse{Message: "profile updated", User: u}, http.StatusOK)
}
