package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics_ImplementsInterface(t *testing.T) {
	var _ MetricsRecorder = NoopMetrics{}
}

func TestNoopMetrics_RecordRequest(t *testing.T) {
	m := NoopMetrics{}

	t.Run("does not panic with valid args", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordRequest(context.Background(), "/nodes", 100*time.Millisecond, nil)
		})
	})

	t.Run("does not panic with error", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordRequest(context.Background(), "/nodes", 100*time.Millisecond, errors.New("test"))
		})
	})

	t.Run("does not panic with nil context", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordRequest(nil, "/nodes", 0, nil)
		})
	})

	t.Run("does not panic with empty endpoint", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordRequest(context.Background(), "", 0, nil)
		})
	})
}

func TestNoopMetrics_RecordDiscovery(t *testing.T) {
	m := NoopMetrics{}

	t.Run("does not panic for cache hit", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordDiscovery(context.Background(), "smartdb-projects", true)
		})
	})

	t.Run("does not panic for cache miss", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordDiscovery(context.Background(), "smartdb-projects", false)
		})
	})

	t.Run("does not panic with nil context", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordDiscovery(nil, "", false)
		})
	})
}

func TestNoopMetrics_RecordJob(t *testing.T) {
	m := NoopMetrics{}

	t.Run("does not panic with success=true", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordJob(context.Background(), true, 500*time.Millisecond)
		})
	})

	t.Run("does not panic with success=false", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordJob(context.Background(), false, 100*time.Millisecond)
		})
	})

	t.Run("does not panic with nil context", func(t *testing.T) {
		assert.NotPanics(t, func() {
			m.RecordJob(nil, true, 0)
		})
	})
}

func TestNoopSpanManager_ImplementsInterface(t *testing.T) {
	var _ SpanManager = NoopSpanManager{}
}

func TestNoopSpanManager_StartSubmitSpan(t *testing.T) {
	sm := NoopSpanManager{}

	t.Run("returns same context", func(t *testing.T) {
		ctx := context.Background()
		newCtx, span := sm.StartSubmitSpan(ctx, "job-1", 3)

		assert.Equal(t, ctx, newCtx, "Context should be unchanged")
		assert.NotNil(t, span, "Span should not be nil")
	})

	t.Run("span is valid noop span", func(t *testing.T) {
		_, span := sm.StartSubmitSpan(context.Background(), "job-1", 3)

		// Noop spans are not recording
		assert.False(t, span.IsRecording())
	})

	t.Run("does not panic with empty args", func(t *testing.T) {
		assert.NotPanics(t, func() {
			sm.StartSubmitSpan(context.Background(), "", 0)
		})
	})
}

func TestNoopSpanManager_StartDiscoverySpan(t *testing.T) {
	sm := NoopSpanManager{}

	t.Run("returns same context", func(t *testing.T) {
		ctx := context.Background()
		newCtx, span := sm.StartDiscoverySpan(ctx, "rule", "node-1")

		assert.Equal(t, ctx, newCtx, "Context should be unchanged")
		assert.NotNil(t, span, "Span should not be nil")
	})

	t.Run("span is valid noop span", func(t *testing.T) {
		_, span := sm.StartDiscoverySpan(context.Background(), "rule", "node-1")

		assert.False(t, span.IsRecording())
	})
}

func TestNoopSpanManager_StartRequestSpan(t *testing.T) {
	sm := NoopSpanManager{}

	t.Run("returns same context", func(t *testing.T) {
		ctx := context.Background()
		newCtx, span := sm.StartRequestSpan(ctx, "GET", "/stats")

		assert.Equal(t, ctx, newCtx, "Context should be unchanged")
		assert.NotNil(t, span, "Span should not be nil")
	})

	t.Run("does not panic with empty args", func(t *testing.T) {
		assert.NotPanics(t, func() {
			sm.StartRequestSpan(context.Background(), "", "")
		})
	})
}

func TestNoopSpanManager_EndSpanWithError(t *testing.T) {
	sm := NoopSpanManager{}

	t.Run("does not panic with nil span", func(t *testing.T) {
		assert.NotPanics(t, func() {
			sm.EndSpanWithError(nil, nil)
		})
	})

	t.Run("does not panic with nil error", func(t *testing.T) {
		_, span := sm.StartSubmitSpan(context.Background(), "job", 1)
		assert.NotPanics(t, func() {
			sm.EndSpanWithError(span, nil)
		})
	})

	t.Run("does not panic with error", func(t *testing.T) {
		_, span := sm.StartSubmitSpan(context.Background(), "job", 1)
		assert.NotPanics(t, func() {
			sm.EndSpanWithError(span, errors.New("test error"))
		})
	})
}

func TestNoopImplementations_NoSideEffects(t *testing.T) {
	// Noop metrics and spans must be safe through a full
	// submit/discover/request cycle.
	metrics := NoopMetrics{}
	spans := NoopSpanManager{}

	ctx := context.Background()

	ctx, submitSpan := spans.StartSubmitSpan(ctx, "job-123", 3)

	for i, endpoint := range []string{"/nodes", "/run/async", "/stats"} {
		reqCtx, reqSpan := spans.StartRequestSpan(ctx, "GET", endpoint)

		var err error
		if i == 1 {
			err = errors.New("simulated error")
		}
		metrics.RecordRequest(reqCtx, endpoint, time.Millisecond, err)
		spans.EndSpanWithError(reqSpan, err)
	}

	discCtx, discSpan := spans.StartDiscoverySpan(ctx, "smartdb-projects", "smartDB-1")
	metrics.RecordDiscovery(discCtx, "smartdb-projects", false)
	spans.EndSpanWithError(discSpan, nil)

	metrics.RecordJob(ctx, true, 100*time.Millisecond)
	spans.EndSpanWithError(submitSpan, nil)

	// If we get here without panicking, the test passes
}
