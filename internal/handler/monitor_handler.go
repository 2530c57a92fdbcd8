package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-deadline-monitor/internal/service/monitor"
)

const runIDHeader = "X-Run-ID"

type Runner interface {
	Run(ctx context.Context, now time.Time, runID string) (*monitor.Summary, error)
}

type MonitorHandler struct {
	runner     Runner
	runTimeout time.Duration
	clock      func() time.Time
}

func NewMonitorHandler(runner Runner, runTimeout time.Duration) *MonitorHandler {
	return &MonitorHandler{
		runner:     runner,
		runTimeout: runTimeout,
		clock:      time.Now,
	}
}

type errorResponse struct {
	Error   string           `json:"error"`
	Summary *monitor.Summary `json:"summary,omitempty"`
}

// HandleRun triggers one monitor run. An RFC3339 "now" query parameter
// evaluates deadlines at a virtual time.
func (h *MonitorHandler) HandleRun(c *gin.Context) {
	ctx := c.Request.Context()

	now := h.clock()
	if nowStr := c.Query("now"); nowStr != "" {
		parsed, err := time.Parse(time.RFC3339, nowStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid now time format, expected RFC3339"})
			return
		}
		now = parsed
		slog.InfoContext(ctx, "using virtual time",
			slog.Time("virtual_now", now),
		)
	}

	if h.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.runTimeout)
		defer cancel()
	}

	summary, err := h.runner.Run(ctx, now, c.GetHeader(runIDHeader))
	if err != nil {
		slog.ErrorContext(ctx, "monitor run failed",
			slog.String("event", "monitor.run.fail"),
			slog.String("error", err.Error()),
		)

		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		if summary != nil {
			c.Header(runIDHeader, summary.RunID)
		}
		c.JSON(status, errorResponse{Error: err.Error(), Summary: summary})
		return
	}

	c.Header(runIDHeader, summary.RunID)
	c.JSON(http.StatusOK, summary)
}
