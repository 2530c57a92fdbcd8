package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/observability/metrics"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/observability/tracing"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/service/deadline"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/service/urgency"
)

// DefaultDedupWindow is the sliding window in which a (request, urgency) pair notifies once.
const DefaultDedupWindow = 24 * time.Hour

const (
	// claimLease bounds how long an unconfirmed claim survives a crashed evaluator.
	claimLease     = time.Minute
	releaseTimeout = 5 * time.Second
)

type Service struct {
	calculator       *deadline.Calculator
	classifier       *urgency.Classifier
	notificationRepo domain.NotificationRepository
	claimStore       domain.DedupClaimStore
	dedupWindow      time.Duration
	monitorMetrics   *metrics.MonitorMetrics
}

// NewService wires the dispatcher. claimStore and monitorMetrics may be nil.
func NewService(
	calculator *deadline.Calculator,
	classifier *urgency.Classifier,
	notificationRepo domain.NotificationRepository,
	claimStore domain.DedupClaimStore,
	dedupWindow time.Duration,
	monitorMetrics *metrics.MonitorMetrics,
) *Service {
	if dedupWindow <= 0 {
		dedupWindow = DefaultDedupWindow
	}
	return &Service{
		calculator:       calculator,
		classifier:       classifier,
		notificationRepo: notificationRepo,
		claimStore:       claimStore,
		dedupWindow:      dedupWindow,
		monitorMetrics:   monitorMetrics,
	}
}

// Evaluate classifies one request at now and writes a notification unless one
// of the same urgency already exists inside the dedup window.
func (s *Service) Evaluate(ctx context.Context, req *domain.Request, now time.Time) (*Decision, error) {
	if req == nil || !req.IsEligible() {
		return nil, domain.ErrRequestNotEligible
	}

	ctx, span := tracing.StartEvaluationSpan(ctx, req.ID, req.Jurisdiction)
	defer span.End()
	started := time.Now()

	decision, err := s.evaluate(ctx, req, now)

	tracing.RecordEvaluationResult(span, decision.DueDate, decision.DaysRemaining, decision.Urgency.String(), decision.Outcome.String(), err)
	if s.monitorMetrics != nil {
		s.monitorMetrics.RecordEvaluation(ctx, decision.Urgency.String(), decision.Outcome.String(), time.Since(started))
	}

	return decision, err
}

func (s *Service) evaluate(ctx context.Context, req *domain.Request, now time.Time) (*Decision, error) {
	dueDate := s.calculator.ComputeDeadline(*req.SubmittedAt, req.Jurisdiction, req.ExplicitDueDate)
	daysRemaining := urgency.DaysRemaining(dueDate, now)
	classified := s.classifier.Classify(daysRemaining)

	decision := &Decision{
		RequestID:     req.ID,
		DueDate:       dueDate,
		DaysRemaining: daysRemaining,
		Urgency:       classified,
		Outcome:       OutcomeNoAction,
	}

	slog.DebugContext(ctx, "request classified",
		slog.String("request_id", req.ID),
		slog.String("jurisdiction", req.Jurisdiction),
		slog.Time("due_date", dueDate),
		slog.Int("days_remaining", daysRemaining),
		slog.String("urgency", classified.String()),
	)

	if !classified.IsActionable() {
		return decision, nil
	}

	key := domain.DedupKey{RequestID: req.ID, Urgency: classified}

	claimHeld, suppressed := s.claim(ctx, key, now)
	if suppressed {
		slog.DebugContext(ctx, "notification suppressed by dedup claim",
			slog.String("request_id", req.ID),
			slog.String("urgency", classified.String()),
		)
		decision.Outcome = OutcomeSuppressed
		return decision, nil
	}

	exists, err := s.notificationRepo.ExistsSince(ctx, key, now.Add(-s.dedupWindow))
	if err != nil {
		s.release(ctx, key, claimHeld)
		decision.Outcome = OutcomeFailed
		return decision, fmt.Errorf("failed to check recent notifications: %w", err)
	}
	if exists {
		// The existing row defines the window; a fresh claim would outlive it.
		s.release(ctx, key, claimHeld)
		slog.DebugContext(ctx, "notification suppressed by recent notification",
			slog.String("request_id", req.ID),
			slog.String("urgency", classified.String()),
		)
		decision.Outcome = OutcomeSuppressed
		return decision, nil
	}

	title, message := BuildMessage(req, classified, daysRemaining, dueDate)
	notification := domain.NewNotification(req, classified, title, message, now)

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.release(ctx, key, claimHeld)
		decision.Outcome = OutcomeFailed
		return decision, fmt.Errorf("failed to create notification: %w", err)
	}

	s.confirm(ctx, key, claimHeld)

	decision.Outcome = OutcomeCreated
	decision.NotificationID = notification.ID

	if s.monitorMetrics != nil {
		s.monitorMetrics.RecordNotificationCreated(ctx, classified.String(), string(notification.Type))
	}

	slog.InfoContext(ctx, "deadline notification created",
		slog.String("request_id", req.ID),
		slog.String("notification_id", notification.ID),
		slog.String("urgency", classified.String()),
		slog.Int("days_remaining", daysRemaining),
	)

	return decision, nil
}

// claim reports whether a claim is held and whether the key is already claimed elsewhere.
func (s *Service) claim(ctx context.Context, key domain.DedupKey, now time.Time) (held bool, suppressed bool) {
	if s.claimStore == nil {
		return false, false
	}

	claimed, err := s.claimStore.Claim(ctx, key, now, now.Add(s.dedupWindow), claimLease)
	if err != nil {
		slog.WarnContext(ctx, "failed to claim dedup key, relying on notification store",
			slog.String("dedup_key", key.String()),
			slog.String("error", err.Error()),
		)
		// Continue processing - the store query still guards the window
		return false, false
	}

	return claimed, !claimed
}

func (s *Service) confirm(ctx context.Context, key domain.DedupKey, held bool) {
	if !held {
		return
	}
	// An unconfirmed claim lapses with its lease; the stored row still guards the window.
	if err := s.claimStore.Confirm(ctx, key, s.dedupWindow); err != nil {
		slog.WarnContext(ctx, "failed to confirm dedup claim",
			slog.String("dedup_key", key.String()),
			slog.String("error", err.Error()),
		)
	}
}

// release drops a held claim even when the evaluation context is already done.
func (s *Service) release(ctx context.Context, key domain.DedupKey, held bool) {
	if !held {
		return
	}

	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := s.claimStore.Release(releaseCtx, key); err != nil {
		slog.WarnContext(ctx, "failed to release dedup claim",
			slog.String("dedup_key", key.String()),
			slog.String("error", err.Error()),
		)
	}
}
