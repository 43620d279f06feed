package decu_test

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/teenjuna/decu"
	"github.com/teenjuna/decu/internal/testing/require"
	"github.com/teenjuna/decu/result"
	"github.com/teenjuna/decu/result/table"
)

var startTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newScript(t *testing.T, dir string, configFuncs ...decu.ConfigFunc) *decu.Script {
	t.Helper()

	s, err := decu.New(dir, "sim", append([]decu.ConfigFunc{
		func(c *decu.Config) {
			c.Settings(decu.DefaultSettings())
			c.Clock(func() time.Time { return startTime })
		},
	}, configFuncs...)...)
	require.Nil(t, err)
	t.Cleanup(func() {
		require.Nil(t, s.Close())
	})

	return s
}

func readLog(t *testing.T, s *decu.Script) string {
	t.Helper()
	data, err := os.ReadFile(s.LogFile())
	require.Nil(t, err)
	return string(data)
}

func TestScriptNames(t *testing.T) {
	dir := t.TempDir()
	s := newScript(t, dir)

	require.Equal(t, s.StartTime, startTime)
	require.Equal(t, s.LogFile(), filepath.Join(dir, "logs", "2024-01-02_03-04-05--sim.log"))
	require.Equal(t,
		s.ResultBasename("spread", 3),
		filepath.Join(dir, "results", "2024-01-02_03-04-05--sim--spread--3"),
	)
	require.Equal(t,
		s.FigureBasename("hist", ""),
		filepath.Join(dir, "pics", "2024-01-02_03-04-05--sim--hist.png"),
	)
	require.Equal(t,
		s.FigureBasename("hist", "a"),
		filepath.Join(dir, "pics", "2024-01-02_03-04-05--sim--hist--a.png"),
	)

	_, err := os.Stat(s.LogFile())
	require.Nil(t, err)
}

func TestScriptSettingsTemplates(t *testing.T) {
	settings := decu.DefaultSettings()
	settings.Script.ResultFile = "$exp_name.$$.$run"
	settings.Script.FigureFmt = "svg"

	dir := t.TempDir()
	s := newScript(t, dir, func(c *decu.Config) {
		c.Settings(settings)
	})

	require.Equal(t, s.ResultBasename("e", 0), filepath.Join(dir, "results", "e.$.0"))
	require.True(t, strings.HasSuffix(s.FigureBasename("f", ""), ".svg"), "figure format")
}

func TestScriptCapabilities(t *testing.T) {
	s := newScript(t, t.TempDir())
	capabilities := s.Results().Capabilities()
	for _, name := range []string{"array", "table", "graph"} {
		require.True(t, slices.Contains(capabilities, name), name)
	}

	settings := decu.DefaultSettings()
	settings.Result.Disable = []string{"table"}
	s = newScript(t, t.TempDir(), func(c *decu.Config) {
		c.Settings(settings)
	})
	require.True(t, !slices.Contains(s.Results().Capabilities(), "table"), "table disabled")

	_, err := s.Results().Extension(reflect.TypeFor[*table.Frame]())
	require.ErrorIs(t, err, result.ErrUnsupportedType)
}

func TestNewWithoutModule(t *testing.T) {
	_, err := decu.New(t.TempDir(), "")
	require.NotNil(t, err)
}

func TestConfigValidation(t *testing.T) {
	c := &decu.Config{}

	require.PanicWithError(t, "settings can't be nil", func() {
		c.Settings(nil)
	})

	require.PanicWithError(t, "registry can't be nil", func() {
		c.Registry(nil)
	})

	require.PanicWithError(t, "logger can't be nil", func() {
		c.Logger(nil)
	})

	require.PanicWithError(t, "clock can't be nil", func() {
		c.Clock(nil)
	})
}
