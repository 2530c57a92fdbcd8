package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/observability/metrics"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/observability/tracing"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/service/dispatch"
)

const DefaultWorkers = 4

var ErrLoadRequests = errors.New("failed to load open requests")

//go:generate mockgen -source=service.go -destination=evaluator_mock.go -package=monitor

type Evaluator interface {
	Evaluate(ctx context.Context, req *domain.Request, now time.Time) (*dispatch.Decision, error)
}

type Service struct {
	requestRepo    domain.RequestRepository
	evaluator      Evaluator
	resultRecorder domain.RunResultRecorder
	monitorMetrics *metrics.MonitorMetrics
	workers        int
}

// NewService wires the run orchestrator. resultRecorder and monitorMetrics may be nil.
func NewService(
	requestRepo domain.RequestRepository,
	evaluator Evaluator,
	resultRecorder domain.RunResultRecorder,
	monitorMetrics *metrics.MonitorMetrics,
	workers int,
) *Service {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Service{
		requestRepo:    requestRepo,
		evaluator:      evaluator,
		resultRecorder: resultRecorder,
		monitorMetrics: monitorMetrics,
		workers:        workers,
	}
}

// Run evaluates every open request at now. Only a failure to load the request
// list is returned as an error; per-request failures land in Summary.Errors.
func (s *Service) Run(ctx context.Context, now time.Time, runID string) (*Summary, error) {
	if runID == "" {
		runID = uuid.NewString()
	}

	ctx, span := tracing.StartRunSpan(ctx, runID, now)
	defer span.End()
	started := time.Now()

	requests, err := s.requestRepo.ListOpenRequests(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch open requests",
			slog.String("run_id", runID),
			slog.String("error", err.Error()),
		)
		tracing.RecordRunResult(span, 0, 0, 0, 0, err)
		if s.monitorMetrics != nil {
			s.monitorMetrics.RecordRun(ctx, "failed", time.Since(started))
		}
		failed := newSummary(runID, now)
		failed.finish(now.Add(time.Since(started)))
		return failed, fmt.Errorf("%w: %w", ErrLoadRequests, err)
	}

	eligible, skipped := selectEligible(requests)

	slog.InfoContext(ctx, "evaluating open requests",
		slog.String("run_id", runID),
		slog.Int("fetched_count", len(requests)),
		slog.Int("eligible_count", len(eligible)),
		slog.Int("skipped_count", skipped),
		slog.Int("workers", s.workers),
	)

	summary := newSummary(runID, now)
	summary.SkippedCount = skipped

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(s.workers)

	for _, req := range eligible {
		g.Go(func() error {
			decision, err := s.evaluateIsolated(ctx, req, now)

			mu.Lock()
			defer mu.Unlock()
			summary.add(req.ID, decision, err)
			return nil
		})
	}
	_ = g.Wait()

	summary.finish(now.Add(time.Since(started)))

	tracing.RecordRunResult(span, summary.RequestsEvaluated, summary.NotificationsCreated, summary.SuppressedCount, len(summary.Errors), nil)
	if s.monitorMetrics != nil {
		s.monitorMetrics.RecordRun(ctx, "success", time.Since(started))
	}

	slog.InfoContext(ctx, "monitor run completed",
		slog.String("event", "monitor.run.complete"),
		slog.String("run_id", runID),
		slog.Int("requests_evaluated", summary.RequestsEvaluated),
		slog.Int("notifications_created", summary.NotificationsCreated),
		slog.Int("suppressed_count", summary.SuppressedCount),
		slog.Int("failed_count", len(summary.Errors)),
		slog.Duration("duration", time.Since(started)),
	)

	if s.resultRecorder != nil {
		if err := s.resultRecorder.RecordRun(ctx, summary.record()); err != nil {
			slog.WarnContext(ctx, "failed to record run result",
				slog.String("run_id", runID),
				slog.String("error", err.Error()),
			)
		}
	}

	return summary, nil
}

// evaluateIsolated turns a panic in one evaluation into an error for that request only.
func (s *Service) evaluateIsolated(ctx context.Context, req *domain.Request, now time.Time) (decision *dispatch.Decision, err error) {
	defer func() {
		if r := recover(); r != nil {
			decision = nil
			err = fmt.Errorf("panic during evaluation: %v", r)
		}
	}()

	decision, err = s.evaluator.Evaluate(ctx, req, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to evaluate request",
			slog.String("request_id", req.ID),
			slog.String("error", err.Error()),
		)
	}
	return decision, err
}

func (s *Summary) add(requestID string, decision *dispatch.Decision, err error) {
	s.RequestsEvaluated++

	if err != nil {
		s.Errors = append(s.Errors, RunError{RequestID: requestID, Reason: err.Error()})
	}
	if decision == nil {
		return
	}

	s.Decisions = append(s.Decisions, *decision)
	if decision.Urgency.IsActionable() {
		s.ByUrgency[decision.Urgency]++
	}

	switch decision.Outcome {
	case dispatch.OutcomeCreated:
		s.NotificationsCreated++
	case dispatch.OutcomeSuppressed:
		s.SuppressedCount++
	}
}

func (s *Summary) finish(finishedAt time.Time) {
	s.FinishedAt = finishedAt
	sort.Slice(s.Errors, func(i, j int) bool {
		return s.Errors[i].RequestID < s.Errors[j].RequestID
	})
	sort.Slice(s.Decisions, func(i, j int) bool {
		return s.Decisions[i].RequestID < s.Decisions[j].RequestID
	})
}

// selectEligible drops ineligible and repeated requests. Order is preserved.
func selectEligible(requests []*domain.Request) ([]*domain.Request, int) {
	seen := make(map[string]struct{}, len(requests))
	eligible := make([]*domain.Request, 0, len(requests))
	skipped := 0

	for _, req := range requests {
		if req == nil || !req.IsEligible() {
			skipped++
			continue
		}
		if _, ok := seen[req.ID]; ok {
			skipped++
			continue
		}
		seen[req.ID] = struct{}{}
		eligible = append(eligible, req)
	}

	return eligible, skipped
}
