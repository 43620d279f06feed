package decu

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrMissingScript matches any [MissingScriptError].
var ErrMissingScript = errors.New("missing script")

// MissingScriptError is returned by [Lookup] for a name nothing was registered under.
type MissingScriptError struct {
	Name string
}

func (e *MissingScriptError) Error() string {
	return fmt.Sprintf("no script registered as %q", e.Name)
}

func (e *MissingScriptError) Is(target error) bool {
	return target == ErrMissingScript
}

// Runner is the entry point of a user script.
type Runner interface {
	Main(ctx context.Context, s *Script) error
}

// RunnerFunc adapts a function to [Runner].
type RunnerFunc func(ctx context.Context, s *Script) error

func (f RunnerFunc) Main(ctx context.Context, s *Script) error {
	return f(ctx, s)
}

var (
	scriptsMu sync.RWMutex
	scripts   = make(map[string]func() Runner)
)

// Register makes a script available under name, usually from an init function. The factory is
// called once per execution. Register panics if name is blank or taken, or if factory is nil.
func Register(name string, factory func() Runner) {
	if strings.TrimSpace(name) == "" {
		panic("script name can't be blank")
	}
	if factory == nil {
		panic("script factory can't be nil")
	}

	scriptsMu.Lock()
	defer scriptsMu.Unlock()

	if _, ok := scripts[name]; ok {
		panic(fmt.Sprintf("script %q already registered", name))
	}
	scripts[name] = factory
}

// Lookup returns a fresh instance of the script registered under name.
func Lookup(name string) (Runner, error) {
	scriptsMu.RLock()
	factory, ok := scripts[name]
	scriptsMu.RUnlock()
	if !ok {
		return nil, &MissingScriptError{Name: name}
	}
	return factory(), nil
}

// Scripts returns the sorted names of the registered scripts.
func Scripts() []string {
	scriptsMu.RLock()
	defer scriptsMu.RUnlock()

	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Exec runs the script registered under module inside projectDir.
func Exec(ctx context.Context, projectDir, module string, configFuncs ...ConfigFunc) (err error) {
	runner, err := Lookup(module)
	if err != nil {
		return err
	}

	s, err := New(projectDir, module, configFuncs...)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, s.Close())
	}()

	s.log.Info("script started")
	if err := runner.Main(ctx, s); err != nil {
		s.log.Error("script failed", zap.Error(err))
		return fmt.Errorf("script %s: %w", module, err)
	}
	s.log.Info("script finished", zap.Duration("elapsed", time.Since(s.StartTime)))

	return nil
}
