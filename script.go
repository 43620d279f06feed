// Package decu is a harness for experimental-computation scripts.
//
// A [Script] fixes where logs, results and figures of one script execution go and how they are
// named. [Experiment] wraps a computation so that every call is logged, timed and has its result
// persisted through the script's [result.Registry]. [RunParallel] and [RunParallelShared] fan a
// batch of parameters out to a worker pool while keeping run indices unique.
package decu

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/teenjuna/decu/parallel"
	"github.com/teenjuna/decu/result"
)

type Config struct {
	settings   *Settings
	registry   *result.Registry
	log        *zap.Logger
	now        func() time.Time
	registerer prometheus.Registerer
}

type ConfigFunc = func(c *Config)

// Settings replaces the settings otherwise loaded by [LoadSettings].
func (c *Config) Settings(settings *Settings) {
	if settings == nil {
		panic("settings can't be nil")
	}
	c.settings = settings
}

// Registry replaces the result registry otherwise built by [NewRegistry].
func (c *Config) Registry(registry *result.Registry) {
	if registry == nil {
		panic("registry can't be nil")
	}
	c.registry = registry
}

// Logger replaces the per-script log file. No log file is created then.
func (c *Config) Logger(log *zap.Logger) {
	if log == nil {
		panic("logger can't be nil")
	}
	c.log = log
}

// Clock sets the source of the start time.
func (c *Config) Clock(now func() time.Time) {
	if now == nil {
		panic("clock can't be nil")
	}
	c.now = now
}

// Prometheus sets the registerer of the dispatcher metrics. By default they aren't registered.
func (c *Config) Prometheus(registerer prometheus.Registerer) {
	c.registerer = registerer
}

// Script is one execution of a user script inside a project directory.
type Script struct {
	StartTime  time.Time
	ProjectDir string
	Module     string

	settings   *Settings
	log        *zap.Logger
	logFile    string
	closer     io.Closer
	results    *result.Registry
	runs       *parallel.Counter
	prometheus *parallel.PrometheusConfig
}

func New(projectDir, module string, configFuncs ...ConfigFunc) (*Script, error) {
	if module == "" {
		return nil, errors.New("module can't be blank")
	}

	cfg := &Config{}
	cfg.Clock(time.Now)
	for _, cf := range configFuncs {
		cf(cfg)
	}

	if cfg.settings == nil {
		settings, err := LoadSettings(projectDir)
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		cfg.settings = settings
	}

	s := &Script{
		StartTime:  cfg.now(),
		ProjectDir: projectDir,
		Module:     module,
		settings:   cfg.settings,
		log:        cfg.log,
		runs:       parallel.NewCounter(),
		prometheus: parallel.Prometheus(cfg.registerer),
	}

	if s.log == nil {
		dir := s.Dir(s.settings.Logging.LogsDir)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create logs dir: %w", err)
		}

		s.logFile = filepath.Join(dir, Expand(s.settings.Logging.LogFile, s.vars()))
		log, closer, err := newLogger(s.settings, s.logFile)
		if err != nil {
			return nil, err
		}
		s.log, s.closer = log, closer
	}
	s.log = s.log.With(zap.String("module", module))

	s.results = cfg.registry
	if s.results == nil {
		registry, err := NewRegistry(s.settings, s.log)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("create result registry: %w", err)
		}
		s.results = registry
	}

	return s, nil
}

func (s *Script) Settings() *Settings {
	return s.settings
}

func (s *Script) Log() *zap.Logger {
	return s.log
}

// LogFile returns the path of the log file, or "" when the logger was provided by a [ConfigFunc].
func (s *Script) LogFile() string {
	return s.logFile
}

func (s *Script) Results() *result.Registry {
	return s.results
}

// Counter returns the run counter shared by every experiment of the script.
func (s *Script) Counter() *parallel.Counter {
	return s.runs
}

// Runs returns how many runs of the experiment were started.
func (s *Script) Runs(experiment string) int {
	return s.runs.Runs(experiment)
}

// Dir returns dir relative to the project directory.
func (s *Script) Dir(dir string) string {
	return filepath.Join(s.ProjectDir, dir)
}

// ResultBasename returns the path, without extension, of the result of the given run.
func (s *Script) ResultBasename(experiment string, run int) string {
	vars := s.vars()
	vars["exp_name"] = experiment
	vars["run"] = strconv.Itoa(run)
	return filepath.Join(s.Dir(s.settings.Script.ResultsDir), Expand(s.settings.Script.ResultFile, vars))
}

// FigureBasename returns the path of a figure. The suffix tells apart figures of the same name.
func (s *Script) FigureBasename(figure, suffix string) string {
	vars := s.vars()
	vars["fig_name"] = figure
	vars["suffix"] = suffix
	vars["ext"] = s.settings.Script.FigureFmt

	tmpl := s.settings.Script.FigureFile
	if suffix != "" {
		tmpl = s.settings.Script.FigureSuffixFile
	}

	return filepath.Join(s.Dir(s.settings.Script.FiguresDir), Expand(tmpl, vars))
}

// Close flushes and closes the log file.
func (s *Script) Close() error {
	// Syncing stderr fails on some terminals.
	_ = s.log.Sync()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

func (s *Script) vars() map[string]string {
	return map[string]string{
		"time":        s.StartTime.Format(s.settings.Script.TimeFmt),
		"module_name": s.Module,
	}
}
