// Package observability provides structured logging, metrics, and
// tracing for the studio client.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds workflow context to a logger.
// Returns a new logger with workflow_id and user fields.
func EnrichLogger(logger *slog.Logger, workflowID, user string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("workflow_id", workflowID),
		slog.String("user", user),
	)
}

// LogSubmit logs a workflow submission.
func LogSubmit(logger *slog.Logger, jobID string, nodeCount int) {
	if logger == nil {
		return
	}
	logger.Info("workflow submitted",
		slog.String("job_id", jobID),
		slog.Int("node_count", nodeCount),
	)
}

// LogJobDone logs a terminal job event.
func LogJobDone(logger *slog.Logger, jobID string, success bool, detail string) {
	if logger == nil {
		return
	}
	if success {
		logger.Info("workflow completed",
			slog.String("job_id", jobID),
			slog.String("result", detail),
		)
		return
	}
	logger.Error("workflow failed",
		slog.String("job_id", jobID),
		slog.String("error", detail),
	)
}

// LogNodeRun logs a single-node run triggered from the inspector.
func LogNodeRun(logger *slog.Logger, nodeID string, durationMs float64, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Error("node run failed",
			slog.String("node_id", nodeID),
			slog.Float64("duration_ms", durationMs),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Debug("node run completed",
		slog.String("node_id", nodeID),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogDiscovery logs a completed discovery fetch.
func LogDiscovery(logger *slog.Logger, rule, nodeID string, options int) {
	if logger == nil {
		return
	}
	logger.Debug("discovery merged",
		slog.String("rule", rule),
		slog.String("node_id", nodeID),
		slog.Int("options", options),
	)
}

// LogDiscoverySkipped logs a discovery evaluation that hit the cache tag.
func LogDiscoverySkipped(logger *slog.Logger, rule, nodeID, key string) {
	if logger == nil {
		return
	}
	logger.Debug("discovery skipped, inputs unchanged",
		slog.String("rule", rule),
		slog.String("node_id", nodeID),
		slog.String("key", key),
	)
}

// LogDiscoveryStale logs a response discarded by the freshness guard.
func LogDiscoveryStale(logger *slog.Logger, rule, nodeID string) {
	if logger == nil {
		return
	}
	logger.Debug("stale discovery response dropped",
		slog.String("rule", rule),
		slog.String("node_id", nodeID),
	)
}

// LogDiscoveryError logs a swallowed discovery failure. Discovery is
// best-effort enrichment; the error goes no further than this line.
func LogDiscoveryError(logger *slog.Logger, rule, nodeID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("discovery failed",
		slog.String("rule", rule),
		slog.String("node_id", nodeID),
		slog.String("error", err.Error()),
	)
}

// LogChannelOpen logs a collaboration channel connection.
func LogChannelOpen(logger *slog.Logger, room string) {
	if logger == nil {
		return
	}
	logger.Info("collaboration channel connected",
		slog.String("room", room),
	)
}

// LogChannelClosed logs a collaboration channel teardown.
func LogChannelClosed(logger *slog.Logger, room string, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Warn("collaboration channel closed",
			slog.String("room", room),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Info("collaboration channel closed",
		slog.String("room", room),
	)
}

// LogRequestError logs a background request failure that is handled
// locally and not propagated.
func LogRequestError(logger *slog.Logger, endpoint string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("request failed",
		slog.String("endpoint", endpoint),
		slog.String("error", err.Error()),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in
// milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
