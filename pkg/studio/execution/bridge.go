// Package execution bridges the local graph to backend workflow runs.
// A Bridge submits the current graph, tracks the one job allowed in
// flight, mirrors per-node start and end events into the store's
// executing flags, and keeps the chat transcript of prompts and
// results.
package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tyboo/studiograph/pkg/studio"
	"github.com/tyboo/studiograph/pkg/studio/observability"
)

// ErrJobInFlight is returned by Submit while a previous job is still
// running. No request is issued.
var ErrJobInFlight = errors.New("execution: a workflow job is already running")

// JobState is the bridge's coarse lifecycle.
type JobState int

const (
	// Idle means no job is running; Submit is accepted.
	Idle JobState = iota
	// Running means a job was accepted and has not terminated yet.
	Running
)

// String implements fmt.Stringer.
func (s JobState) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Runner is the backend surface the bridge submits through.
// *api.Client satisfies it.
type Runner interface {
	RunAsync(ctx context.Context, message string, doc studio.Document) (string, error)
	RunNode(ctx context.Context, nodeID string, doc studio.Document) (any, error)
}

// Event types delivered by the status stream.
const (
	EventNodeStart         = "node_start"
	EventNodeEnd           = "node_end"
	EventWorkflowCompleted = "workflow_completed"
	EventWorkflowFailed    = "workflow_failed"
)

// StatusEvent is one message from the backend's status stream.
type StatusEvent struct {
	Type   string `json:"type"`
	NodeID string `json:"node_id,omitempty"`
	JobID  string `json:"job_id,omitempty"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Message roles in the transcript.
const (
	RoleUser = "user"
	RoleBot  = "bot"
)

// Message is one transcript entry.
type Message struct {
	ID   string `json:"id"`
	Role string `json:"role"`
	Text string `json:"text"`
}

// Options configures a Bridge.
type Options struct {
	Logger  *slog.Logger
	Metrics observability.MetricsRecorder
	Spans   observability.SpanManager
}

// Bridge coordinates workflow submission and status handling for one
// graph store.
type Bridge struct {
	store   *studio.Store
	runner  Runner
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	mu       sync.Mutex
	state    JobState
	jobID    string
	started  time.Time
	log      []Message
	onChange func()
}

// NewBridge returns an idle bridge over the store.
func NewBridge(store *studio.Store, runner Runner, opts Options) *Bridge {
	b := &Bridge{
		store:   store,
		runner:  runner,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		spans:   opts.Spans,
	}
	if b.metrics == nil {
		b.metrics = observability.NoopMetrics{}
	}
	if b.spans == nil {
		b.spans = observability.NoopSpanManager{}
	}
	return b
}

// OnChange registers a callback fired after every state or transcript
// change. Only one callback is kept.
func (b *Bridge) OnChange(fn func()) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

func (b *Bridge) fire() {
	b.mu.Lock()
	fn := b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// State reports the current lifecycle state.
func (b *Bridge) State() JobState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// JobID reports the id of the running job, or "" when idle.
func (b *Bridge) JobID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.jobID
}

// Messages returns a copy of the transcript in append order.
func (b *Bridge) Messages() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.log))
	copy(out, b.log)
	return out
}

// ClearMessages empties the transcript.
func (b *Bridge) ClearMessages() {
	b.mu.Lock()
	b.log = nil
	b.mu.Unlock()
	b.fire()
}

func (b *Bridge) append(role, text string) {
	b.mu.Lock()
	b.log = append(b.log, Message{ID: uuid.NewString(), Role: role, Text: text})
	b.mu.Unlock()
	b.fire()
}

// Submit sends the whole graph with a prompt and transitions to
// Running. While Running, further Submit calls fail with
// ErrJobInFlight before any request is issued.
func (b *Bridge) Submit(ctx context.Context, message string) (string, error) {
	b.mu.Lock()
	if b.state == Running {
		b.mu.Unlock()
		return "", ErrJobInFlight
	}
	b.state = Running
	b.started = time.Now()
	b.mu.Unlock()
	b.fire()

	b.append(RoleUser, message)

	doc := b.store.Export("")
	ctx, span := b.spans.StartSubmitSpan(ctx, "", len(doc.Nodes))

	jobID, err := b.runner.RunAsync(ctx, message, doc)
	b.spans.EndSpanWithError(span, err)
	if err != nil {
		b.mu.Lock()
		b.state = Idle
		b.started = time.Time{}
		b.mu.Unlock()
		b.append(RoleBot, "Error: "+err.Error())
		b.metrics.RecordJob(ctx, false, 0)
		return "", err
	}

	b.mu.Lock()
	b.jobID = jobID
	b.mu.Unlock()
	b.fire()
	observability.LogSubmit(b.logger, jobID, len(doc.Nodes))
	return jobID, nil
}

// RunNode executes a single node synchronously, toggling its executing
// flag around the call. The result or error lands in the transcript
// either way.
func (b *Bridge) RunNode(ctx context.Context, nodeID string) (any, error) {
	doc := b.store.Export("")
	b.store.SetExecuting(nodeID, true)
	start := time.Now()

	result, err := b.runner.RunNode(ctx, nodeID, doc)

	b.store.SetExecuting(nodeID, false)
	observability.LogNodeRun(b.logger, nodeID, float64(time.Since(start).Milliseconds()), err)
	if err != nil {
		b.append(RoleBot, "Node error: "+err.Error())
		return nil, err
	}
	b.append(RoleBot, renderResult(result))
	return result, nil
}

// HandleEvent applies one status-stream event. Events naming unknown
// node ids are no-ops; unknown event types are ignored.
func (b *Bridge) HandleEvent(ev StatusEvent) {
	switch ev.Type {
	case EventNodeStart:
		b.store.SetExecuting(ev.NodeID, true)
	case EventNodeEnd:
		b.store.SetExecuting(ev.NodeID, false)
	case EventWorkflowCompleted:
		b.finish(true, ev.Result)
	case EventWorkflowFailed:
		b.finish(false, ev.Error)
	}
}

// finish returns the bridge to Idle and records the outcome. Terminal
// events arriving while already idle still append their text so a late
// result is not lost.
func (b *Bridge) finish(success bool, detail string) {
	b.mu.Lock()
	jobID := b.jobID
	var elapsed time.Duration
	if b.state == Running {
		elapsed = time.Since(b.started)
	}
	b.state = Idle
	b.jobID = ""
	b.started = time.Time{}
	b.mu.Unlock()

	// Terminal state trumps any node_end the backend dropped.
	for _, n := range b.store.Nodes() {
		if n.Data.IsExecuting {
			b.store.SetExecuting(n.ID, false)
		}
	}

	text := detail
	if text == "" {
		if success {
			text = "Workflow completed."
		} else {
			text = "Workflow failed."
		}
	}
	if !success {
		text = "Error: " + text
	}
	b.append(RoleBot, text)
	b.metrics.RecordJob(context.Background(), success, elapsed)
	observability.LogJobDone(b.logger, jobID, success, detail)
}

func renderResult(result any) string {
	switch v := result.(type) {
	case nil:
		return "Done."
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
