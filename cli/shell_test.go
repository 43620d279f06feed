package cli

import (
	"testing"

	"github.com/teenjuna/decu/internal/testing/require"
	"github.com/teenjuna/decu/result/network"
	"github.com/teenjuna/decu/result/table"
)

func TestShellEval(t *testing.T) {
	sh := &shell{path: "x.json", value: map[string]any{"b": 2.0, "a": 1.0}}

	tests := []struct {
		line string
		want string
		quit bool
	}{
		{"", "", false},
		{"  ", "", false},
		{"value", "map[a:1 b:2]", false},
		{"type", "map[string]interface {}", false},
		{"len", "2", false},
		{"keys", "a\nb", false},
		{"help", shellHelp, false},
		{"plot", `unknown command "plot", type help for commands`, false},
		{"quit", "", true},
		{" exit ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			output, quit := sh.eval(tt.line)
			require.Equal(t, output, tt.want)
			require.Equal(t, quit, tt.quit)
		})
	}
}

func TestShellEvalScalar(t *testing.T) {
	sh := &shell{value: 42}

	output, _ := sh.eval("len")
	require.Equal(t, output, "int has no length")

	output, _ = sh.eval("keys")
	require.Equal(t, output, "int has no keys")

	output, _ = sh.eval("value")
	require.Equal(t, output, "42")
}

func TestShellEvalStructured(t *testing.T) {
	frame := table.NewFrame("x", "y")
	require.Nil(t, frame.Append("r0", 1, 2))
	require.Nil(t, frame.Append("r1", 3, 4))

	sh := &shell{value: frame}
	output, _ := sh.eval("len")
	require.Equal(t, output, "2")
	output, _ = sh.eval("keys")
	require.Equal(t, output, "x\ny")

	g := network.New()
	require.Nil(t, g.AddEdge(1, "b"))
	require.Nil(t, g.AddEdge(1, 2))

	sh = &shell{value: g}
	output, _ = sh.eval("len")
	require.Equal(t, output, "3")
	output, _ = sh.eval("keys")
	require.Equal(t, output, "1\n2\nb")
}
