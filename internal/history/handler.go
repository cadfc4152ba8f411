package history

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/redmonkez12/wasteless-api/internal/httputil"
	"github.com/redmonkez12/wasteless-api/internal/identity"
	"github.com/redmonkez12/wasteless-api/internal/logging"
)

// Handler contains HTTP handlers for the request ledger
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateRequest represents the body of POST /history
type CreateRequest struct {
	FoodID string `json:"foodId"`
}

// UpdateRequest represents the body of PUT /history
type UpdateRequest struct {
	HistoryID string `json:"historyId"`
	Status    bool   `json:"status"`
}

// ListResponse wraps ledger entries
type ListResponse struct {
	Message   string  `json:"message,omitempty"`
	Histories []Entry `json:"histories"`
}

// List handles GET /history
// @Summary      List requests
// @Description  Entries where the caller is requester or donor. Narrow with role=requester or role=donor.
// @Tags         history
// @Produce      json
// @Security     BearerAuth
// @Param        role query string false "requester or donor"
// @Success      200 {object} ListResponse
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /history [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id, ok := identity.FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	role, ok := ParseRole(r.URL.Query().Get("role"))
	if !ok {
		httputil.RespondErrorWithCode(w, "role must be requester or donor", httputil.CodeValidationFailed, http.StatusBadRequest)
		return
	}

	entries, err := h.service.List(r.Context(), id.UserID, role)
	if err != nil {
		logger.Error("failed to list history", "user_id", id.UserID, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list history", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	resp := ListResponse{Histories: entries}
	if len(entries) == 0 {
		resp.Message = "no history yet"
	}
	httputil.RespondJSON(w, resp, http.StatusOK)
}

// Create handles POST /history
// @Summary      Request food
// @Tags         history
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateRequest true "Listing to request"
// @Success      201 {object} Entry
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      403 {object} httputil.ErrorResponse "Own listing"
// @Failure      404 {object} httputil.ErrorResponse
// @Failure      409 {object} httputil.ErrorResponse "Already requested"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /history [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id, ok := identity.FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid history request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	foodID, err := uuid.Parse(req.FoodID)
	if err != nil {
		var errs httputil.ValidationErrors
		errs.Add("foodId", "foodId must be a valid id")
		httputil.RespondValidation(w, errs)
		return
	}

	entry, err := h.service.Request(r.Context(), id.UserID, foodID)
	if err != nil {
		respondServiceError(w, logger, "failed to request food", err)
		return
	}

	logger.Info("food requested", "history_id", entry.ID, "food_id", foodID)
	httputil.RespondJSON(w, entry, http.StatusCreated)
}

// Update handles PUT /history
// @Summary      Mark a request fulfilled
// @Description  Only the donor may fulfill a request, and only once.
// @Tags         history
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateRequest true "Entry to fulfill"
// @Success      200 {object} Entry
// @Failure      400 {object} httputil.ErrorResponse
// @Failure      401 {object} httputil.ErrorResponse
// @Failure      403 {object} httputil.ErrorResponse "Not the donor"
// @Failure      404 {object} httputil.ErrorResponse
// @Failure      409 {object} httputil.ErrorResponse "Already fulfilled"
// @Failure      500 {object} httputil.ErrorResponse
// @Router       /history [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	id, ok := identity.FromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "unauthorized", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid history update body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	var errs httputil.ValidationErrors
	entryID, err := uuid.Parse(req.HistoryID)
	if err != nil {
		errs.Add("historyId", "historyId must be a valid id")
	}
	if !req.Status {
		errs.Add("status", "status can only be set to true")
	}
	if len(errs) > 0 {
		httputil.RespondValidation(w, errs)
		return
	}

	entry, err := h.service.Fulfill(r.Context(), id.UserID, entryID)
	if err != nil {
		respondServiceError(w, logger, "failed to fulfill request", err)
		return
	}

	logger.Info("request fulfilled", "history_id", entry.ID)
	httputil.RespondJSON(w, entry, http.StatusOK)
}

func respondServiceError(w http.ResponseWriter, logger *logging.Logger, msg string, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrFoodNotFound):
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeNotFound, http.StatusNotFound)
	case errors.Is(err, ErrOwnListing), errors.Is(err, ErrNotDonor):
		logger.Warn(msg, "error", err.Error())
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeForbidden, http.StatusForbidden)
	case errors.Is(err, ErrAlreadyRequested), errors.Is(err, ErrAlreadyFulfilled):
		logger.Warn(msg, "error", err.Error())
		httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeConflict, http.StatusConflict)
	default:
		logger.Error(msg+": internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "internal server error", httputil.CodeInternalError, http.StatusInternalServerError)
	}
}
