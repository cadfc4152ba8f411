package food

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/wasteless-api/internal/httputil"
	"github.com/redmonkez12/wasteless-api/internal/identity"
	"github.com/redmonkez12/wasteless-api/internal/logging"
)

const (
	msgNoDonations     = "no food has been donated yet"
	msgNoOwnedListings = "this user has not donated any food yet"
	msgNoRecommended   = "no food available for your preferences right now"
)

// Handler contains HTTP handlers for food listing endpoints
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

// PostFoodResponse is returned after a listing is created
type PostFoodResponse struct {
	Message string `json:"message"`
	Food    *Food  `json:"food"`
}

// ListResponse carries listings, or a message when there are none
type ListResponse struct {
	Message  string `json:"message,omitempty"`
	Category string `json:"category,omitempty"`
	Foods    []Food `json:"foods"`
}

// PostFood handles donation posting
// @Summary      Post a food donation
// @Description  Upload a photo and listing details. The location is geocoded before the photo is stored.
// @Tags         food
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        fotoMakanan formData file true "Food photo, JPEG, PNG or WebP"
// @Param        foodName formData string true "Name"
// @Param        description formData string true "Description"
// @Param        quantity formData int true "Quantity"
// @Param        location formData string true "Pickup address"
// @Param        expiredAt formData string true "Expiry date, DD-MM-YYYY"
// @Param        foodType formData string true "Category tag"
// @Success      201 {object} PostFoodResponse
// @Failure      400 {object} httputil.ErrorResponse "Missing fields or invalid location"
// @Failure      401 {object} httputil.ErrorResponse "Unauthenticated"
// @Failure      413 {object} httputil.ErrorResponse "Upload too large"
// @Failure      500 {object} httputil.ErrorResponse "Upload, geocoder or database failure"
// @Router       /postFood [post]
func (h *Handler) PostFood(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := identity.FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	// A body that is not multipart is read as a plain form and left to
	// validation, which then reports the missing photo with the other fields.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("donation upload too large", "limit", tooLarge.Limit)
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

	photo, err := httputil.ReadFormFile(r, "fotoMakanan")
	if err != nil {
		logger.Warn("failed to read photo", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to read photo", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	d := Donation{
		Name:        r.FormValue("foodName"),
		Description: r.FormValue("description"),
		Quantity:    r.FormValue("quantity"),
		Location:    r.FormValue("location"),
		ExpiredAt:   r.FormValue("expiredAt"),
		FoodType:    r.FormValue("foodType"),
		Photo:       photo,
	}

	logger = logger.WithFields(map[string]any{"user_id": id.UserID})

	f, err := h.service.Create(r.Context(), id.UserID, d)
	if err != nil {
		respondServiceError(w, logger, "donation failed", err)
		return
	}

	logger.Info("food donated", "food_id", f.ID, "food_type", f.FoodType)

	httputil.RespondJSON(w, PostFoodResponse{
		Message: "food donated successfully",
		Food:    f,
	}, http.StatusCreated)
}

// FoodList handles listing retrieval
// @Summary      List food
// @Description  Authenticated users get up to 4 listings of their predicted category. Anonymous users get every current listing.
// @Tags         food
// @Produce      json
// @Param        limit query int false "Page size for anonymous listing"
// @Param        offset query int false "Offset for anonymous listing"
// @Success      200 {object} ListResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /foodList [get]
func (h *Handler) FoodList(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, ok := identity.FromContext(r.Context())
	if !ok {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		foods, err := h.service.List(r.Context(), limit, offset)
		if err != nil {
			respondServiceError(w, logger, "failed to list food", err)
			return
		}
		respondList(w, ListResponse{Foods: foods}, msgNoDonations)
		return
	}

	rec, err := h.service.Recommend(r.Context(), id.UserID)
	if err != nil {
		respondServiceError(w, logger.WithFields(map[string]any{"user_id": id.UserID}), "failed to recommend food", err)
		return
	}

	respondList(w, ListResponse{Category: rec.Category.String(), Foods: rec.Foods}, msgNoRecommended)
}

// FoodListByUser handles listing a donor's food
// @Summary      List food by donor
// @Tags         food
// @Produce      json
// @Security     BearerAuth
// @Param        userId path string true "Donor ID"
// @Success      200 {object} ListResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /foodList/{userId} [get]
func (h *Handler) FoodListByUser(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userId"))
	if err != nil {
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	foods, err := h.service.ListByOwner(r.Context(), userID)
	if err != nil {
		respondServiceError(w, logger, "failed to list food by owner", err)
		return
	}

	respondList(w, ListResponse{Foods: foods}, msgNoOwnedListings)
}

// FoodDetail handles fetching one listing
// @Summary      Get a listing
// @Tags         food
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Food ID"
// @Success      200 {object} Food
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /foodDetail/{id} [get]
func (h *Handler) FoodDetail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// A malformed id cannot name an existing listing
	foodID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondErrorWithCode(w, ErrNotFound.Error(), httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	f, err := h.service.Detail(r.Context(), foodID)
	if err != nil {
		respondServiceError(w, logger, "failed to get food", err)
		return
	}

	httputil.RespondJSON(w, f, http.StatusOK)
}

// Search handles free-text search
// @Summary      Search food
// @Tags         food
// @Produce      json
// @Param        q query string true "Search text"
// @Success      200 {object} ListResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /food/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	q := r.URL.Query().Get("q")

	foods, err := h.service.Search(r.Context(), q)
	if err != nil {
		respondServiceError(w, logger, "search failed", err)
		return
	}

	if len(foods) == 0 {
		httputil.RespondErrorWithCode(w, fmt.Sprintf("no food matches %q", q), httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	httputil.RespondJSON(w, ListResponse{Foods: foods}, http.StatusOK)
}

func respondList(w http.ResponseWriter, resp ListResponse, emptyMessage string) {
	if len(resp.Foods) == 0 {
		resp.Message = emptyMessage
		resp.Foods = []Food{}
	}
	httputil.RespondJSON(w, resp, http.StatusOK)
}

// respondServiceError maps pipeline errors to status codes
func respondServiceError(w http.ResponseWriter, logger *logging.Logger, msg string, err error) {
	var verrs httputil.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		logger.Warn(msg+": validation error", "error", err.Error())
		httputil.RespondValidation(w, verrs)
	case errors.Is(err, ErrInvalidSearchQuery):
		logger.Warn(msg, "error", err.Error())
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeValidationFailed, http.StatusBadRequest)
	case errors.Is(err, ErrInvalidLocation):
		logger.Warn(msg+": location could not be resolved")
		httputil.RespondErrorWithCode(w, "invalid location", httputil.CodeInvalidLocation, http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeNotFound, http.StatusNotFound)
	case errors.Is(err, ErrGeocoderFailed), errors.Is(err, ErrUploadFailed), errors.Is(err, ErrRecommendationFailed):
		logger.Error(msg+": upstream error", "error", err.Error())
		httputil.RespondErrorWithCode(w, upstreamMessage(err), httputil.CodeUpstreamError, http.StatusInternalServerError)
	default:
		logger.Error(msg+": internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}

// upstreamMessage returns the sentinel text without the wrapped cause
func upstreamMessage(err error) string {
	for _, sentinel := range []error{ErrGeocoderFailed, ErrUploadFailed, ErrRecommendationFailed} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "upstream service failed"
}
