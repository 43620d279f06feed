package parallel

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusConfig is a config of the Prometheus metrics provided by the dispatcher.
//
// An instance can be created only by the [Prometheus] function. The zero value is invalid.
type PrometheusConfig struct {
	// Namespace of the metrics.
	Namespace string
	// Subsystem of the metrics.
	Subsystem string
	// Options for the started jobs counter.
	JobsStarted prometheus.CounterOpts
	// Options for the failed jobs counter.
	JobsFailed prometheus.CounterOpts
	// Options for the recycled workers counter.
	WorkersRecycled prometheus.CounterOpts
	// Options for the busy workers gauge.
	BusyWorkers prometheus.GaugeOpts
	// Options for the job duration histogram.
	JobDuration prometheus.HistogramOpts

	registerer prometheus.Registerer
	once       sync.Once
	m          *metrics
}

// Prometheus returns a [PrometheusConfig] with the provided registerer. If registerer is nil,
// metrics will not be registered. Many default parameters can be configured by passing
// configuration functions.
//
// The metrics are registered once per config, so one config can be shared by many calls to
// [Run].
func Prometheus(
	registerer prometheus.Registerer,
	configFuncs ...func(c *PrometheusConfig),
) *PrometheusConfig {
	const (
		namespace = "decu"
		subsystem = "parallel"
	)

	c := PrometheusConfig{
		registerer: registerer,
		Namespace:  namespace,
		Subsystem:  subsystem,
		JobsStarted: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_started",
			Help:      "Number of jobs started by workers",
		},
		JobsFailed: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "jobs_failed",
			Help:      "Number of jobs that returned an error or panicked",
		},
		WorkersRecycled: prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workers_recycled",
			Help:      "Number of workers replaced after reaching their task limit",
		},
		BusyWorkers: prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "busy_workers",
			Help:      "Number of workers currently running a job",
		},
		JobDuration: prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "job_duration",
			Help:      "Duration of jobs in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 12),
		},
	}

	for _, cf := range configFuncs {
		if cf != nil {
			cf(&c)
		}
	}

	return &c
}

func (c *PrometheusConfig) metrics() *metrics {
	c.once.Do(func() {
		m := metrics{
			jobsStarted:     prometheus.NewCounter(c.JobsStarted),
			jobsFailed:      prometheus.NewCounter(c.JobsFailed),
			workersRecycled: prometheus.NewCounter(c.WorkersRecycled),
			busyWorkers:     prometheus.NewGauge(c.BusyWorkers),
			jobDuration:     prometheus.NewHistogram(c.JobDuration),
		}

		if c.registerer != nil {
			c.registerer.MustRegister(
				m.jobsStarted,
				m.jobsFailed,
				m.workersRecycled,
				m.busyWorkers,
				m.jobDuration,
			)
		}

		c.m = &m
	})

	return c.m
}

type metrics struct {
	jobsStarted     prometheus.Counter
	jobsFailed      prometheus.Counter
	workersRecycled prometheus.Counter
	busyWorkers     prometheus.Gauge
	jobDuration     prometheus.Histogram
}
