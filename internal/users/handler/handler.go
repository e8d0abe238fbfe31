package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"signup/internal/users/models"
	dErrors "signup/pkg/domain-errors"
	"signup/pkg/platform/httputil"
	"signup/pkg/requestcontext"
)

// maxBodyBytes caps a registration request body.
const maxBodyBytes = 1 << 20

// Service defines the registration operations the handler needs.
type Service interface {
	List(ctx context.Context) ([]*models.User, error)
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error)
}

// Handler exposes user registration over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a users handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the users endpoints. Both routes answer with and without the
// trailing slash.
func (h *Handler) Register(r chi.Router) {
	for _, path := range []string{"/api/users", "/api/users/"} {
		r.Get(path, h.HandleList)
		r.Post(path, h.HandleCreate)
	}
}

// HandleList handles GET /api/users/.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	users, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list users",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, users)
}

// HandleCreate handles POST /api/users/.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	var req models.CreateUserRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "failed to decode create user request",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, decodeError(err))
		return
	}

	user, err := h.service.Create(ctx, &req)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeValidation) {
			h.logger.InfoContext(ctx, "user registration rejected",
				"request_id", requestID,
				"error", err,
			)
		} else {
			h.logger.ErrorContext(ctx, "user registration failed",
				"request_id", requestID,
				"error", err,
			)
		}
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "user registered",
		"request_id", requestID,
		"user_id", user.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, user)
}

// decodeError reports a wrongly typed field in the field envelope; anything
// else is a malformed body.
func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		fields := dErrors.Fields{}
		fields.Add(typeErr.Field, "not a valid string")
		return dErrors.Validation(fields, err)
	}
	return dErrors.New(dErrors.CodeBadRequest, "invalid JSON body")
}
