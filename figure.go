package decu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

type FigureConfig struct {
	save bool
}

type FigureConfigFunc = func(c *FigureConfig)

// Save sets whether the figure is written to disk. The default is true.
func (c *FigureConfig) Save(save bool) {
	c.save = save
}

// FigureFunc renders a figure in the format named by the figure_fmt setting.
type FigureFunc = func(ctx context.Context) (io.WriterTo, error)

// Figure wraps fn so that its rendering is written to [Script.FigureBasename]. The returned
// function takes the suffix of the file name and returns the path written, or "" when saving is
// off.
func Figure(
	s *Script,
	name string,
	fn FigureFunc,
	configFuncs ...FigureConfigFunc,
) func(ctx context.Context, suffix string) (string, error) {
	cfg := &FigureConfig{}
	cfg.Save(true)
	for _, cf := range configFuncs {
		cf(cfg)
	}

	return func(ctx context.Context, suffix string) (string, error) {
		fig, err := fn(ctx)
		if err != nil {
			return "", fmt.Errorf("figure %s: %w", name, err)
		}
		if fig == nil {
			return "", fmt.Errorf("figure %s: nothing rendered", name)
		}
		if !cfg.save {
			return "", nil
		}

		if err := os.MkdirAll(s.Dir(s.settings.Script.FiguresDir), 0o755); err != nil {
			return "", fmt.Errorf("create figures dir: %w", err)
		}

		path := s.FigureBasename(name, suffix)
		if err := writeFigure(path, fig); err != nil {
			return "", fmt.Errorf("figure %s: %w", name, err)
		}

		s.log.Info(
			Expand(s.settings.Figure.WriteMsg, map[string]string{"fig_name": name, "outfile": path}),
			zap.String("figure", name),
		)

		return path, nil
	}
}

func writeFigure(path string, fig io.WriterTo) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	_, err = fig.WriteTo(file)
	return err
}
