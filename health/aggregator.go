package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Aggregator runs every registered checker concurrently under one
// deadline. Any failing checker makes the whole response unhealthy.
type Aggregator struct {
	mu       sync.RWMutex
	checkers []Checker
	timeout  time.Duration
	metadata map[string]interface{}
}

// NewAggregator defaults timeout to 5s
func NewAggregator(timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{timeout: timeout, metadata: map[string]interface{}{}}
}

func (a *Aggregator) Register(checkers ...Checker) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, c := range checkers {
		if c != nil {
			a.checkers = append(a.checkers, c)
		}
	}
}

// SetMetadata adds a key echoed in every response, e.g. version
func (a *Aggregator) SetMetadata(key string, value interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metadata[key] = value
}

// Names lists registered checkers in sorted order
func (a *Aggregator) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.checkers))
	for _, c := range a.checkers {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	return names
}

func (a *Aggregator) Check(ctx context.Context) *Response {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.mu.RLock()
	checkers := append([]Checker(nil), a.checkers...)
	metadata := make(map[string]interface{}, len(a.metadata))
	for k, v := range a.metadata {
		metadata[k] = v
	}
	a.mu.RUnlock()

	results := make([]CheckResult, len(checkers))
	var g errgroup.Group
	for i, c := range checkers {
		g.Go(func() error {
			results[i] = checkOne(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	resp := &Response{
		Status:    StatusHealthy,
		Checks:    make(map[string]CheckResult, len(results)),
		Metadata:  metadata,
		Timestamp: time.Now(),
		Duration:  time.Since(start),
	}
	for _, r := range results {
		resp.Checks[r.Name] = r
		if r.Status != StatusHealthy {
			resp.Status = StatusUnhealthy
		}
	}
	return resp
}

// checkOne gives up when ctx expires even if the checker ignores it
func checkOne(ctx context.Context, c Checker) CheckResult {
	start := time.Now()
	result := CheckResult{Name: c.Name(), Timestamp: start, Status: StatusHealthy}

	done := make(chan error, 1)
	go func() { done <- c.Check(ctx) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ctx.Err()
	}
	result.Duration = time.Since(start)
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	return result
}
