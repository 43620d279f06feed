package parallel

import (
	"context"
	"runtime"

	"go.uber.org/zap"
)

const (
	defaultMaxTasks = 100
)

type Config struct {
	workers  int
	maxTasks int
	init     []func(ctx context.Context) context.Context
	metrics  *metrics
	log      *zap.Logger
}

type ConfigFunc = func(c *Config)

// Workers sets the size of the pool. The default is runtime.GOMAXPROCS(0).
func (c *Config) Workers(workers int) {
	if workers < 1 {
		panic("workers can't be < 1")
	}
	c.workers = workers
}

// MaxTasks sets how many jobs a worker runs before it is replaced by a fresh one.
func (c *Config) MaxTasks(tasks int) {
	if tasks < 1 {
		panic("max tasks can't be < 1")
	}
	c.maxTasks = tasks
}

// Initializer adds a function run at the start of every worker, including the replacements of
// recycled workers. It derives the context the worker's jobs receive.
func (c *Config) Initializer(init func(ctx context.Context) context.Context) {
	if init == nil {
		panic("initializer can't be nil")
	}
	c.init = append(c.init, init)
}

// Counter hands the same counter to every worker through the job context. See [CounterFrom].
func (c *Config) Counter(counter *Counter) {
	if counter == nil {
		panic("counter can't be nil")
	}
	c.Initializer(func(ctx context.Context) context.Context {
		return WithCounter(ctx, counter)
	})
}

func (c *Config) Prometheus(prometheus *PrometheusConfig) {
	if prometheus == nil {
		panic("prometheus can't be nil")
	}
	c.metrics = prometheus.metrics()
}

func (c *Config) Logger(log *zap.Logger) {
	if log == nil {
		panic("logger can't be nil")
	}
	c.log = log
}

func newConfig(configFuncs ...ConfigFunc) *Config {
	cfg := &Config{}
	cfg.Workers(runtime.GOMAXPROCS(0))
	cfg.MaxTasks(defaultMaxTasks)
	cfg.Logger(zap.NewNop())
	for _, cf := range configFuncs {
		cf(cfg)
	}
	if cfg.metrics == nil {
		cfg.Prometheus(Prometheus(nil))
	}
	return cfg
}

func (c *Config) initialize(ctx context.Context) context.Context {
	for _, init := range c.init {
		ctx = init(ctx)
	}
	return ctx
}
