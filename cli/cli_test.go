package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/teenjuna/decu"
	"github.com/teenjuna/decu/internal/testing/require"
	"github.com/teenjuna/decu/result/table"
)

func init() {
	decu.Register("cli-sweep", func() decu.Runner {
		return decu.RunnerFunc(func(ctx context.Context, s *decu.Script) error {
			exp := decu.Experiment(s, "half", func(ctx context.Context, n int) (float64, error) {
				return float64(n) / 2, nil
			})
			_, err := decu.RunParallel(ctx, s, exp, []int{1, 2, 3, 4})
			return err
		})
	})
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	code := Execute(t.Context(), args, strings.NewReader(""), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestInit(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "project")

	code, stdout, _ := run(t, "init", dir)
	require.Equal(t, code, 0)
	require.True(t, strings.Contains(stdout, dir), stdout)

	for _, name := range decu.DefaultSettings().Dirs() {
		_, err := os.Stat(filepath.Join(dir, name))
		require.Nil(t, err)
	}
}

func TestInitBadArguments(t *testing.T) {
	code, _, stderr := run(t, "init", "a", "b")
	require.Equal(t, code, 1)
	require.True(t, strings.HasPrefix(stderr, "error: "), stderr)
}

func TestExec(t *testing.T) {
	dir := t.TempDir()

	code, _, stderr := run(t, "exec", "--project", dir, filepath.Join("src", "cli-sweep.go"))
	require.Equal(t, code, 0)
	require.Equal(t, stderr, "")

	results, err := os.ReadDir(filepath.Join(dir, "results"))
	require.Nil(t, err)
	require.Equal(t, len(results), 4)

	logs, err := os.ReadDir(filepath.Join(dir, "logs"))
	require.Nil(t, err)
	require.Equal(t, len(logs), 1)
	require.True(t, strings.HasSuffix(logs[0].Name(), "--cli-sweep.log"), logs[0].Name())
}

func TestExecWithMetrics(t *testing.T) {
	code, _, stderr := run(t, "exec", "--project", t.TempDir(), "--metrics-addr", "127.0.0.1:0", "cli-sweep")
	require.Equal(t, code, 0)
	require.Equal(t, stderr, "")
}

func TestExecMissingScript(t *testing.T) {
	code, _, stderr := run(t, "exec", "--project", t.TempDir(), "nope.go")
	require.Equal(t, code, 1)
	require.True(t, strings.Contains(stderr, `no script registered as "nope"`), stderr)
	require.True(t, strings.Contains(stderr, "registered scripts: cli-sweep"), stderr)
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	registry, err := decu.NewRegistry(decu.DefaultSettings(), zap.NewNop())
	require.Nil(t, err)

	path, err := registry.Write(map[string]any{"alpha": 0.5}, filepath.Join(dir, "params"))
	require.Nil(t, err)

	code, stdout, _ := run(t, "inspect", "--project", dir, path)
	require.Equal(t, code, 0)
	require.Equal(t, stdout, "map[alpha:0.5]\n")

	frame := table.NewFrame("x", "y")
	require.Nil(t, frame.Append("r0", 1, 2))
	path, err = registry.Write(frame, filepath.Join(dir, "frame"))
	require.Nil(t, err)

	code, stdout, _ = run(t, "inspect", "--project", dir, path)
	require.Equal(t, code, 0)
	require.True(t, strings.Contains(stdout, "r0"), stdout)
}

func TestInspectErrors(t *testing.T) {
	dir := t.TempDir()

	code, _, _ := run(t, "inspect", filepath.Join(dir, "missing.int"))
	require.Equal(t, code, 1)

	path := filepath.Join(dir, "file.xyz")
	require.Nil(t, os.WriteFile(path, []byte("?"), 0o644))
	code, _, stderr := run(t, "inspect", path)
	require.Equal(t, code, 1)
	require.True(t, strings.Contains(stderr, "unsupported result extension"), stderr)

	code, _, _ = run(t, "inspect")
	require.Equal(t, code, 1)
}

func TestModuleName(t *testing.T) {
	require.Equal(t, moduleName("src/sweep.go"), "sweep")
	require.Equal(t, moduleName("sweep"), "sweep")
	require.Equal(t, moduleName("a/b/c.tar.gz"), "c.tar")
}
