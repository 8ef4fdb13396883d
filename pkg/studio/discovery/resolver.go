// Package discovery enriches node field schemas with server-computed
// option lists: SmartDB projects and tables, Supabase tables, and the
// stored credential list for any credentials-typed field.
//
// The resolver watches the selected node through the binder and reacts
// to value changes with asynchronous, best-effort fetches. Results are
// merged back through the graph store's update path and are guarded two
// ways: a cache key derived from the exact input values suppresses
// refetches (including the loop that merging a result would otherwise
// cause), and a freshness check drops any response whose originating
// inputs no longer match the node's current values.
package discovery

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/tyboo/studiograph/pkg/studio"
	"github.com/tyboo/studiograph/pkg/studio/observability"
)

// Options configures a Resolver.
type Options struct {
	// Timeout bounds each discovery call. Default: 15s.
	Timeout time.Duration

	// Rules overrides the built-in rule set. Nil uses DefaultRules.
	Rules []Rule

	// Logger receives swallowed discovery errors. Nil disables logging.
	Logger *slog.Logger

	// Metrics defaults to a no-op.
	Metrics observability.MetricsRecorder
	// Spans defaults to a no-op.
	Spans observability.SpanManager
}

// Resolver drives discovery for the selected node.
type Resolver struct {
	store   *studio.Store
	binder  *studio.Binder
	backend Backend
	rules   []Rule
	timeout time.Duration
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager

	mu     sync.Mutex
	closed bool
	// inflight is keyed by rule, node, and cache key, so a changed
	// input can start its own fetch while an older one is still out.
	inflight map[string]bool
	// seen holds last-applied cache keys for rules that do not record a
	// tag in node data, keyed by rule name + node id.
	seen map[string]string
	// credNode is the node id credentials were last fetched for.
	credNode string

	wg    sync.WaitGroup
	unsub func()
}

// NewResolver wires a resolver to the binder's change feed and starts
// watching immediately.
func NewResolver(store *studio.Store, binder *studio.Binder, backend Backend, opts Options) *Resolver {
	r := &Resolver{
		store:    store,
		binder:   binder,
		backend:  backend,
		rules:    opts.Rules,
		timeout:  opts.Timeout,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		spans:    opts.Spans,
		inflight: make(map[string]bool),
		seen:     make(map[string]string),
	}
	if r.rules == nil {
		r.rules = DefaultRules(backend)
	}
	if r.timeout <= 0 {
		r.timeout = 15 * time.Second
	}
	if r.metrics == nil {
		r.metrics = observability.NoopMetrics{}
	}
	if r.spans == nil {
		r.spans = observability.NoopSpanManager{}
	}
	r.unsub = binder.OnChange(r.evaluate)
	return r
}

// Close stops watching and waits for in-flight fetches to finish.
// Their results are discarded.
func (r *Resolver) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	if r.unsub != nil {
		r.unsub()
		r.unsub = nil
	}
	r.wg.Wait()
}

// Wait blocks until all currently in-flight fetches have settled.
// Intended for tests and graceful shutdown.
func (r *Resolver) Wait() {
	r.wg.Wait()
}

// evaluate runs after every inspector change: selection set, cleared,
// or the selected node's data replaced.
func (r *Resolver) evaluate() {
	node, ok := r.binder.Selected()
	if !ok {
		return
	}
	r.evaluateCredentials(node)
	for i := range r.rules {
		r.evaluateRule(&r.rules[i], node)
	}
}

// cacheKey joins the watched values in declaration order, e.g.
// "{base_url}-{api_key}" or "{project_id}".
func cacheKey(values []string) string {
	return strings.Join(values, "-")
}

func (r *Resolver) evaluateRule(rule *Rule, node studio.Node) {
	if rule.Template != "" && node.Data.TemplateID != rule.Template {
		return
	}

	watched := make([]string, len(rule.Watch))
	for i, key := range rule.Watch {
		watched[i] = node.Data.StringValue(key)
		if watched[i] == "" {
			return
		}
	}
	for _, key := range rule.Requires {
		if node.Data.StringValue(key) == "" {
			return
		}
	}

	key := cacheKey(watched)
	flight := rule.Name + "|" + node.ID + "|" + key

	r.mu.Lock()
	if r.closed || r.inflight[flight] {
		r.mu.Unlock()
		return
	}
	if r.appliedKey(rule, node) == key {
		r.mu.Unlock()
		r.metrics.RecordDiscovery(context.Background(), rule.Name, true)
		observability.LogDiscoverySkipped(r.logger, rule.Name, node.ID, key)
		return
	}
	r.inflight[flight] = true
	r.mu.Unlock()

	r.metrics.RecordDiscovery(context.Background(), rule.Name, false)

	inputs := r.fetchInputs(rule, node)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			delete(r.inflight, flight)
			r.mu.Unlock()
		}()
		r.fetch(rule, node.ID, key, inputs)
	}()
}

// appliedKey returns the cache key recorded for a rule on a node,
// either from the node's own tag or from the resolver's memory for
// untagged rules. Caller holds r.mu.
func (r *Resolver) appliedKey(rule *Rule, node studio.Node) string {
	if rule.Tag != "" {
		return node.Data.Tags[rule.Tag]
	}
	return r.seen[rule.Name+"|"+node.ID]
}

// fetchInputs collects the watched and required values, translating any
// watched label through its recorded label-to-value mapping (a user
// picks a project by label; the dependent fetch needs its id).
func (r *Resolver) fetchInputs(rule *Rule, node studio.Node) map[string]string {
	inputs := make(map[string]string, len(rule.Watch)+len(rule.Requires))
	for _, key := range append(append([]string(nil), rule.Watch...), rule.Requires...) {
		inputs[key] = node.Data.StringValue(key)
	}
	for key, mappingKey := range rule.Translate {
		label := inputs[key]
		for _, opt := range node.Data.Mappings[mappingKey] {
			if opt.Label == label {
				inputs[key] = opt.Value
				break
			}
		}
	}
	return inputs
}

// fetch performs the network call and merges the result, unless the
// node has changed underneath it.
func (r *Resolver) fetch(rule *Rule, nodeID, key string, inputs map[string]string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	ctx, span := r.spans.StartDiscoverySpan(ctx, rule.Name, nodeID)

	options, err := rule.Fetch(ctx, inputs)
	r.spans.EndSpanWithError(span, err)
	if err != nil {
		// Best-effort enrichment: log and keep the prior option list.
		observability.LogDiscoveryError(r.logger, rule.Name, nodeID, err)
		return
	}
	if len(options) == 0 {
		return
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return
	}

	// Freshness guard: the watched values may have moved on while the
	// request was in flight. Applying then would clobber newer options
	// with stale ones, so re-derive the key from the node's current
	// values and drop the response on mismatch.
	node, ok := r.store.Node(nodeID)
	if !ok {
		return
	}
	current := make([]string, len(rule.Watch))
	for i, k := range rule.Watch {
		current[i] = node.Data.StringValue(k)
	}
	if cacheKey(current) != key {
		observability.LogDiscoveryStale(r.logger, rule.Name, nodeID)
		return
	}

	patch := studio.DiscoveryPatch{
		Field:      rule.Field,
		Options:    options,
		TagKey:     rule.Tag,
		TagValue:   key,
		MappingKey: rule.Mapping,
	}
	if err := r.store.ApplyDiscovery(nodeID, patch); err != nil {
		return
	}
	if rule.Tag == "" {
		r.mu.Lock()
		r.seen[rule.Name+"|"+nodeID] = key
		r.mu.Unlock()
	}
	observability.LogDiscovery(r.logger, rule.Name, nodeID, len(options))
}

// evaluateCredentials fetches the stored credential list for any
// credentials-typed field whenever the selection moves to a new node.
// The fetch takes no parameters, so selection identity is the only
// trigger.
func (r *Resolver) evaluateCredentials(node studio.Node) {
	var fields []string
	for _, f := range node.Data.Inputs {
		if studio.WidgetFor(f) == studio.WidgetCredentials {
			fields = append(fields, f.Name)
		}
	}
	if len(fields) == 0 {
		return
	}

	r.mu.Lock()
	if r.closed || r.credNode == node.ID {
		r.mu.Unlock()
		return
	}
	r.credNode = node.ID
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		options, err := r.backend.Credentials(ctx)
		if err != nil {
			observability.LogDiscoveryError(r.logger, "credentials", node.ID, err)
			return
		}
		if len(options) == 0 {
			return
		}
		for _, field := range fields {
			// A deleted node makes this a silent no-op.
			_ = r.store.SetFieldOptions(node.ID, field, options)
		}
		observability.LogDiscovery(r.logger, "credentials", node.ID, len(options))
	}()
}
