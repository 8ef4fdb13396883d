package api

import (
	"context"
	"sync"
	"time"

	"github.com/tyboo/studiograph/pkg/studio"
	"github.com/tyboo/studiograph/pkg/studio/observability"
)

// Library fetches the node template catalog, grouped by category.
// Older backends serve it at /library; the /nodes path is tried first
// and /library is the fallback.
func (c *Client) Library(ctx context.Context) (*studio.Library, error) {
	var categories map[string][]studio.NodeData
	if err := c.get(ctx, "/nodes", nil, &categories); err != nil {
		if err := c.get(ctx, "/library", nil, &categories); err != nil {
			return nil, err
		}
	}
	return studio.NewLibrary(categories), nil
}

// Stats is the system-health report shown in the header strip.
type Stats struct {
	Status          string `json:"status"`
	TotalNodes      int    `json:"total_nodes"`
	FailedWorkflows int    `json:"failed_workflows"`
	WorkerStatus    string `json:"worker_status"`
	Uptime          string `json:"uptime"`
}

// Stats fetches the current system-health report.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := c.get(ctx, "/stats", nil, &stats)
	return stats, err
}

// StatsPoller refetches system health on a fixed interval for as long
// as it is running. Fetch failures are logged and the previous report
// is kept; a result arriving after Close is dropped.
type StatsPoller struct {
	client   *Client
	interval time.Duration

	mu     sync.RWMutex
	latest Stats
	ok     bool

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewStatsPoller starts polling. interval <= 0 defaults to 10s, the
// studio's header refresh period.
func NewStatsPoller(client *Client, interval time.Duration) *StatsPoller {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	p := &StatsPoller{
		client:   client,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

// Latest returns the most recent report and whether one has arrived.
func (p *StatsPoller) Latest() (Stats, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.ok
}

// Close stops the polling loop and waits for it to exit.
func (p *StatsPoller) Close() {
	p.once.Do(func() { close(p.stop) })
	<-p.done
}

func (p *StatsPoller) run() {
	defer close(p.done)

	// First fetch immediately, then on the interval.
	p.fetch()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.fetch()
		case <-p.stop:
			return
		}
	}
}

func (p *StatsPoller) fetch() {
	ctx, cancel := context.WithTimeout(context.Background(), p.interval)
	defer cancel()
	stats, err := p.client.Stats(ctx)
	if err != nil {
		observability.LogRequestError(p.client.logger, "/stats", err)
		return
	}
	select {
	case <-p.stop:
		// Closed while the request was in flight; drop the result.
		return
	default:
	}
	p.mu.Lock()
	p.latest = stats
	p.ok = true
	p.mu.Unlock()
}
