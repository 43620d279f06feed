package parallel

import (
	"context"
	"sync"
)

// Counter hands out run indices per name. Indices for a name start at 0 and have no gaps or
// duplicates, however many workers draw from the same counter.
//
// A counter must be created once and shared. Workers that each build their own would hand out
// the same indices.
type Counter struct {
	mu   sync.Mutex
	runs map[string]int
}

func NewCounter() *Counter {
	return &Counter{
		runs: make(map[string]int),
	}
}

// Next returns the next index for name.
func (c *Counter) Next(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	run := c.runs[name]
	c.runs[name] = run + 1
	return run
}

// Runs returns how many indices were handed out for name.
func (c *Counter) Runs(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runs[name]
}

type counterKey struct{}

// WithCounter returns a context carrying counter.
func WithCounter(ctx context.Context, counter *Counter) context.Context {
	return context.WithValue(ctx, counterKey{}, counter)
}

// CounterFrom returns the counter carried by ctx, if any.
func CounterFrom(ctx context.Context) (*Counter, bool) {
	counter, ok := ctx.Value(counterKey{}).(*Counter)
	return counter, ok && counter != nil
}
