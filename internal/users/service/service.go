package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"signup/internal/users/metrics"
	"signup/internal/users/models"
	dErrors "signup/pkg/domain-errors"
	"signup/pkg/platform/sentinel"
	"signup/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, user *models.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ListNewestFirst(ctx context.Context) ([]*models.User, error)
}

// Notifier announces a persisted registration. It must not fail the caller.
type Notifier interface {
	UserCreated(ctx context.Context, user *models.User)
}

// Service orchestrates registration: validation, persistence, then the
// notification fan-out.
type Service struct {
	users     Store
	notifier  Notifier
	validator *Validator
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(users Store, notifier Notifier, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("users store is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	s := &Service{
		users:     users,
		notifier:  notifier,
		validator: NewValidator(users),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// List returns every user, newest first. An empty store yields an empty slice.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.users.ListNewestFirst(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// Create validates and persists a user, then runs the notification fan-out.
// Once the user is stored the call succeeds whatever the notifications do.
func (s *Service) Create(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	start := time.Now()
	defer s.observeCreate(start)

	req.Normalize()
	if err := s.validator.Validate(ctx, req); err != nil {
		return nil, err
	}

	user := models.NewUser(req.Name, req.Email, req.PhoneValue())
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			// Lost the race against a concurrent registration.
			fields := dErrors.Fields{}
			fields.Add("email", models.ErrDuplicateEmail.Error())
			return nil, dErrors.Validation(fields, models.ErrDuplicateEmail)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.logger.InfoContext(ctx, "user_created",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", user.ID,
	)
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}

	s.notifier.UserCreated(ctx, user)
	return user, nil
}

func (s *Service) observeCreate(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveCreate(start)
	}
}
