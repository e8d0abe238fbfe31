package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"signup/internal/platform/config"
	"signup/internal/users/metrics"
	"signup/internal/users/models"
	"signup/pkg/requestcontext"
)

const tracerName = "signup/internal/users/notify"

// FanOut announces a new registration on every configured channel, webhook
// first and email second. Each step is attempted once. A failure, including a
// panic inside a step, is logged and never stops the other step or reaches
// the caller.
type FanOut struct {
	webhook    *Webhook
	mailer     Mailer
	adminEmail string
	fromEmail  string
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*FanOut)

func WithLogger(logger *slog.Logger) Option {
	return func(f *FanOut) {
		f.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(f *FanOut) {
		f.metrics = m
	}
}

// New builds a fan-out from cfg. An empty ServiceURL disables the webhook;
// an empty AdminEmail makes the email step log a warning and skip.
func New(cfg config.Notification, mailer Mailer, opts ...Option) *FanOut {
	f := &FanOut{
		mailer:     mailer,
		adminEmail: cfg.AdminEmail,
		fromEmail:  cfg.FromEmail,
		logger:     slog.New(slog.DiscardHandler),
		tracer:     otel.Tracer(tracerName),
	}
	if cfg.ServiceURL != "" {
		f.webhook = NewWebhook(cfg.ServiceURL, &http.Client{Timeout: cfg.Timeout})
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// UserCreated runs both notification steps for user.
func (f *FanOut) UserCreated(ctx context.Context, user *models.User) {
	f.notifyWebhook(ctx, user)
	f.notifyAdmin(ctx, user)
}

func (f *FanOut) notifyWebhook(ctx context.Context, user *models.User) {
	if f.webhook == nil {
		f.record(ChannelWebhook, metrics.OutcomeSkipped)
		return
	}

	ctx, span := f.tracer.Start(ctx, "notify.webhook",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.Int64("user.id", user.ID),
			attribute.String("url.full", f.webhook.Endpoint()),
		),
	)
	defer span.End()
	defer func() {
		if rec := recover(); rec != nil {
			f.webhookFailed(ctx, span, user, fmt.Errorf("panic: %v", rec))
		}
	}()

	status, err := f.webhook.Send(ctx, user)
	if err != nil {
		f.webhookFailed(ctx, span, user, err)
		return
	}

	span.SetAttributes(attribute.Int("http.response.status_code", status))
	f.logger.InfoContext(ctx, "notification service called",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", user.ID,
		"status", status,
	)
	f.record(ChannelWebhook, metrics.OutcomeSent)
}

func (f *FanOut) webhookFailed(ctx context.Context, span trace.Span, user *models.User, err error) {
	derr := &DeliveryError{Channel: ChannelWebhook, Err: err}
	span.RecordError(derr)
	span.SetStatus(codes.Error, "webhook failed")
	f.logger.WarnContext(ctx, "notification service call failed",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", user.ID,
		"error", derr,
	)
	f.record(ChannelWebhook, metrics.OutcomeFailed)
}

func (f *FanOut) notifyAdmin(ctx context.Context, user *models.User) {
	if f.adminEmail == "" {
		f.logger.WarnContext(ctx, "ADMIN_EMAIL not configured, skipping admin notification",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", user.ID,
		)
		f.record(ChannelEmail, metrics.OutcomeSkipped)
		return
	}

	ctx, span := f.tracer.Start(ctx, "notify.email",
		trace.WithAttributes(attribute.Int64("user.id", user.ID)),
	)
	defer span.End()
	defer func() {
		if rec := recover(); rec != nil {
			f.emailFailed(ctx, span, user, fmt.Errorf("panic: %v", rec))
		}
	}()

	if err := f.mailer.Send(ctx, AdminMessage(f.fromEmail, f.adminEmail, user)); err != nil {
		f.emailFailed(ctx, span, user, err)
		return
	}

	f.logger.InfoContext(ctx, "admin email sent",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", user.ID,
	)
	f.record(ChannelEmail, metrics.OutcomeSent)
}

func (f *FanOut) emailFailed(ctx context.Context, span trace.Span, user *models.User, err error) {
	derr := &DeliveryError{Channel: ChannelEmail, Err: err}
	span.RecordError(derr)
	span.SetStatus(codes.Error, "email failed")
	f.logger.ErrorContext(ctx, "admin email failed",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", user.ID,
		"error", derr,
	)
	f.record(ChannelEmail, metrics.OutcomeFailed)
}

func (f *FanOut) record(channel, outcome string) {
	if f.metrics == nil {
		return
	}
	f.metrics.IncrementNotification(channel, outcome)
}

// AdminMessage is the email sent to the administrator for a new user.
func AdminMessage(from, to string, user *models.User) Message {
	return Message{
		From:    from,
		To:      to,
		Subject: "New user registered: " + user.Name,
		Body:    fmt.Sprintf("User %s (%s) registered.", user.Name, user.Email),
	}
}
