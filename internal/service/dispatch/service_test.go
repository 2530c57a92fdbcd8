package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/mock/gomock"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/domain"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/service/deadline"
	"github.com/KasumiMercury/primind-deadline-monitor/internal/service/urgency"
)

// createTestService creates a Service backed by a small rule table.
func createTestService(t *testing.T, repo domain.NotificationRepository, claims domain.DedupClaimStore) *Service {
	t.Helper()

	table, err := deadline.NewRuleTable([]deadline.Rule{
		{Jurisdiction: "georgia", BusinessDays: 3},
		{Jurisdiction: "federal", BusinessDays: 20},
	}, deadline.DefaultBusinessDays)
	if err != nil {
		t.Fatalf("failed to build rule table: %v", err)
	}

	calculator := deadline.NewCalculator(table, time.UTC)
	return NewService(calculator, urgency.NewClassifier(), repo, claims, DefaultDedupWindow, nil)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// fridayRequest is submitted Friday 2024-01-05 09:00 under a 3 business day window,
// so it is due Wednesday 2024-01-10 09:00.
func fridayRequest() *domain.Request {
	return &domain.Request{
		ID:           "req-1",
		OwnerID:      "user-1",
		Subject:      "Police overtime records",
		AgencyName:   "City Police Department",
		Jurisdiction: "georgia",
		Status:       domain.RequestStatusSubmitted,
		SubmittedAt:  timePtr(time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)),
	}
}

func TestEvaluate_DueSoonCreatesNotification(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockNotificationRepository(ctrl)
	mockClaims := domain.NewMockDedupClaimStore(ctrl)

	now := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	key := domain.DedupKey{RequestID: "req-1", Urgency: domain.UrgencyDueSoon}

	mockClaims.EXPECT().Claim(gomock.Any(), key, now, now.Add(DefaultDedupWindow), claimLease).Return(true, nil)
	mockRepo.EXPECT().ExistsSince(gomock.Any(), key, now.Add(-DefaultDedupWindow)).Return(false, nil)
	mockClaims.EXPECT().Confirm(gomock.Any(), key, DefaultDedupWindow).Return(nil)
	mockRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *domain.Notification) error {
			if n.OwnerID != "user-1" {
				t.Errorf("OwnerID: got %q, want %q", n.OwnerID, "user-1")
			}
			if n.Type != domain.NotificationTypeDeadline {
				t.Errorf("Type: got %q, want %q", n.Type, domain.NotificationTypeDeadline)
			}
			if n.Urgency != domain.UrgencyDueSoon {
				t.Errorf("Urgency: got %q, want %q", n.Urgency, domain.UrgencyDueSoon)
			}
			if n.RelatedEntityType != "request" || n.RelatedEntityID != "req-1" {
				t.Errorf("related entity: got %s/%s", n.RelatedEntityType, n.RelatedEntityID)
			}
			if !n.CreatedAt.Equal(now) {
				t.Errorf("CreatedAt: got %v, want %v", n.CreatedAt, now)
			}
			if !strings.Contains(n.Message, "Police overtime records") || !strings.Contains(n.Message, "City Police Department") {
				t.Errorf("message missing subject or agency: %q", n.Message)
			}
			if !strings.Contains(n.Message, "due today") {
				t.Errorf("message missing remaining days: %q", n.Message)
			}
			return nil
		})

	svc := createTestService(t, mockRepo, mockClaims)

	decision, err := svc.Evaluate(context.Background(), fridayRequest(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantDue := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	if !decision.DueDate.Equal(wantDue) {
		t.Errorf("DueDate: got %v, want %v", decision.DueDate, wantDue)
	}
	if decision.DaysRemaining != 0 {
		t.Errorf("DaysRemaining: got %d, want 0", decision.DaysRemaining)
	}
	if decision.Outcome != OutcomeCreated {
		t.Errorf("Outcome: got %s, want %s", decision.Outcome, OutcomeCreated)
	}
	if decision.NotificationID == "" {
		t.Error("expected notification id to be set")
	}
}

func TestEvaluate_SuppressedByClaim(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockNotificationRepository(ctrl)
	mockClaims := domain.NewMockDedupClaimStore(ctrl)

	mockClaims.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)

	svc := createTestService(t, mockRepo, mockClaims)
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	decision, err := svc.Evaluate(context.Background(), fridayRequest(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Outcome != OutcomeSuppressed {
		t.Errorf("Outcome: got %s, want %s", decision.Outcome, OutcomeSuppressed)
	}
}

func TestEvaluate_SuppressedByRecentNotificationReleasesClaim(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockNotificationRepository(ctrl)
	mockClaims := domain.NewMockDedupClaimStore(ctrl)

	key := domain.DedupKey{RequestID: "req-1", Urgency: domain.UrgencyDueSoon}

	gomock.InOrder(
		mockClaims.EXPECT().Claim(gomock.Any(), key, gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil),
		mockRepo.EXPECT().ExistsSince(gomock.Any(), key, gomock.Any()).Return(true, nil),
		mockClaims.EXPECT().Release(gomock.Any(), key).Return(nil),
	)

	svc := createTestService(t, mockRepo, mockClaims)
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	decision, err := svc.Evaluate(context.Background(), fridayRequest(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Outcome != OutcomeSuppressed {
		t.Errorf("Outcome: got %s, want %s", decision.Outcome, OutcomeSuppressed)
	}
}

func TestEvaluate_CreateErrorReleasesClaim(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockNotificationRepository(ctrl)
	mockClaims := domain.NewMockDedupClaimStore(ctrl)

	expectedErr := errors.New("connection reset")

	mockClaims.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(true, nil)
	mockRepo.EXPECT().ExistsSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(expectedErr)
	mockClaims.EXPECT().Release(gomock.Any(), gomock.Any()).Return(nil)

	svc := createTestService(t, mockRepo, mockClaims)
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	decision, err := svc.Evaluate(context.Background(), fridayRequest(), now)
	if !errors.Is(err, expectedErr) {
		t.Fatalf("expected error %v, got %v", expectedErr, err)
	}
	if decision.Outcome != OutcomeFailed {
		t.Errorf("Outcome: got %s, want %s", decision.Outcome, OutcomeFailed)
	}
}

func TestEvaluate_ClaimErrorFallsBackToStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockNotificationRepository(ctrl)
	mockClaims := domain.NewMockDedupClaimStore(ctrl)

	mockClaims.EXPECT().Claim(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(false, errors.New("redis down"))
	mockRepo.EXPECT().ExistsSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(false, nil)
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	svc := createTestService(t, mockRepo, mockClaims)
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	decision, err := svc.Evaluate(context.Background(), fridayRequest(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Outcome != OutcomeCreated {
		t.Errorf("Outcome: got %s, want %s", decision.Outcome, OutcomeCreated)
	}
}

func TestEvaluate_ExplicitDueDateYesterdayIsOverdue(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockNotificationRepository(ctrl)

	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	req := fridayRequest()
	req.Jurisdiction = "federal"
	req.ExplicitDueDate = timePtr(now.Add(-24 * time.Hour))

	mockRepo.EXPECT().
		ExistsSince(gomock.Any(), domain.DedupKey{RequestID: "req-1", Urgency: domain.UrgencyOverdue}, gomock.Any()).
		Return(false, nil)
	mockRepo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n *domain.Notification) error {
			if n.Urgency != domain.UrgencyOverdue {
				t.Errorf("Urgency: got %q, want overdue", n.Urgency)
			}
			if !strings.Contains(n.Message, "1 day past") {
				t.Errorf("message missing overdue magnitude: %q", n.Message)
			}
			return nil
		})

	svc := createTestService(t, mockRepo, nil)

	decision, err := svc.Evaluate(context.Background(), req, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.DaysRemaining != -1 {
		t.Errorf("DaysRemaining: got %d, want -1", decision.DaysRemaining)
	}
	if decision.Urgency != domain.UrgencyOverdue {
		t.Errorf("Urgency: got %s, want overdue", decision.Urgency)
	}
}

func TestEvaluate_NoActionTouchesNoStore(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := domain.NewMockNotificationRepository(ctrl)
	mockClaims := domain.NewMockDedupClaimStore(ctrl)

	svc := createTestService(t, mockRepo, mockClaims)
	// Due Wednesday 09:00; five days earlier is neither due_soon nor one week out.
	now := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

	decision, err := svc.Evaluate(context.Background(), fridayRequest(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Outcome != OutcomeNoAction {
		t.Errorf("Outcome: got %s, want %s", decision.Outcome, OutcomeNoAction)
	}
	if decision.DaysRemaining != 5 {
		t.Errorf("DaysRemaining: got %d, want 5", decision.DaysRemaining)
	}
}

func TestEvaluate_IneligibleRequests(t *testing.T) {
	svc := createTestService(t, nil, nil)
	now := time.Now()

	tests := []struct {
		name string
		req  *domain.Request
	}{
		{name: "nil request", req: nil},
		{
			name: "draft without submission",
			req:  &domain.Request{ID: "req-draft", Status: domain.RequestStatusDraft},
		},
		{
			name: "completed",
			req: &domain.Request{
				ID:              "req-done",
				Status:          domain.RequestStatusCompleted,
				SubmittedAt:     timePtr(now.Add(-90 * 24 * time.Hour)),
				ExplicitDueDate: timePtr(now.Add(-30 * 24 * time.Hour)),
			},
		},
		{
			name: "denied",
			req: &domain.Request{
				ID:          "req-denied",
				Status:      domain.RequestStatusDenied,
				SubmittedAt: timePtr(now.Add(-90 * 24 * time.Hour)),
			},
		},
		{
			name: "submitted status but no timestamp",
			req:  &domain.Request{ID: "req-odd", Status: domain.RequestStatusProcessing},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Evaluate(context.Background(), tt.req, now)
			if !errors.Is(err, domain.ErrRequestNotEligible) {
				t.Errorf("expected ErrRequestNotEligible, got %v", err)
			}
		})
	}
}

func TestBuildMessage(t *testing.T) {
	req := &domain.Request{Subject: "Budget memos", AgencyName: "Dept. of Finance"}
	due := time.Date(2024, 1, 17, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		urgency       domain.Urgency
		daysRemaining int
		wantTitle     string
		wantContains  string
	}{
		{name: "overdue plural", urgency: domain.UrgencyOverdue, daysRemaining: -4, wantTitle: "Records request overdue", wantContains: "4 days past"},
		{name: "due soon", urgency: domain.UrgencyDueSoon, daysRemaining: 2, wantTitle: "Response due soon", wantContains: "due in 2 days"},
		{name: "due tomorrow", urgency: domain.UrgencyDueSoon, daysRemaining: 1, wantTitle: "Response due soon", wantContains: "due in 1 day "},
		{name: "one week", urgency: domain.UrgencyOneWeekOut, daysRemaining: 7, wantTitle: "Response due in one week", wantContains: "due in 7 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, message := BuildMessage(req, tt.urgency, tt.daysRemaining, due)
			if title != tt.wantTitle {
				t.Errorf("title: got %q, want %q", title, tt.wantTitle)
			}
			if !strings.Contains(message, tt.wantContains) {
				t.Errorf("message %q does not contain %q", message, tt.wantContains)
			}
			if !strings.Contains(message, "Budget memos") || !strings.Contains(message, "Dept. of Finance") {
				t.Errorf("message %q missing subject or agency", message)
			}
		})
	}
}
