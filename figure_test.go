package decu_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/teenjuna/decu"
	"github.com/teenjuna/decu/internal/testing/require"
)

func render(ctx context.Context) (io.WriterTo, error) {
	return bytes.NewBufferString("<svg/>"), nil
}

func TestFigure(t *testing.T) {
	s := newScript(t, t.TempDir())
	fig := decu.Figure(s, "hist", render)

	path, err := fig(t.Context(), "")
	require.Nil(t, err)
	require.Equal(t, path, s.FigureBasename("hist", ""))

	data, err := os.ReadFile(path)
	require.Nil(t, err)
	require.Equal(t, string(data), "<svg/>")

	path, err = fig(t.Context(), "log")
	require.Nil(t, err)
	require.Equal(t, path, s.FigureBasename("hist", "log"))

	log := readLog(t, s)
	require.True(t, strings.Contains(log, "Wrote figure hist to "+path+"."), log)
}

func TestFigureNotSaved(t *testing.T) {
	s := newScript(t, t.TempDir())
	fig := decu.Figure(s, "hist", render, func(c *decu.FigureConfig) {
		c.Save(false)
	})

	path, err := fig(t.Context(), "")
	require.Nil(t, err)
	require.Equal(t, path, "")

	_, err = os.Stat(filepath.Join(s.ProjectDir, "pics"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestFigureFailure(t *testing.T) {
	s := newScript(t, t.TempDir())
	failure := errors.New("no data")

	_, err := decu.Figure(s, "hist", func(ctx context.Context) (io.WriterTo, error) {
		return nil, failure
	})(t.Context(), "")
	require.ErrorIs(t, err, failure)

	_, err = decu.Figure(s, "hist", func(ctx context.Context) (io.WriterTo, error) {
		return nil, nil
	})(t.Context(), "")
	require.NotNil(t, err)
}
