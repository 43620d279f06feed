package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/teenjuna/decu"
)

func newExecCommand() *cobra.Command {
	var (
		project     string
		metricsAddr string
		console     bool
	)

	cmd := &cobra.Command{
		Use:   "exec <script>",
		Short: "Run a registered script",
		Long: "Run the script registered under the base name of <script> without its extension, " +
			"so both \"exec src/sweep.go\" and \"exec sweep\" run the script named sweep.\n\n" +
			"Scripts are compiled into the binary: they call decu.Register from an init function " +
			"of a package imported by the binary's main package. The stock decu binary imports " +
			"none, so a project builds its own main that imports its scripts and calls cli.Execute.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module := moduleName(args[0])

			settings, err := decu.LoadSettings(project)
			if err != nil {
				return err
			}
			if console {
				settings.Logging.Console = true
			}

			configFuncs := []decu.ConfigFunc{
				func(c *decu.Config) {
					c.Settings(settings)
				},
			}

			if metricsAddr != "" {
				registry := prometheus.NewRegistry()
				stop, err := serveMetrics(metricsAddr, registry)
				if err != nil {
					return err
				}
				defer stop()

				configFuncs = append(configFuncs, func(c *decu.Config) {
					c.Prometheus(registry)
				})
			}

			err = decu.Exec(cmd.Context(), project, module, configFuncs...)
			if errors.Is(err, decu.ErrMissingScript) {
				return fmt.Errorf("%w (registered scripts: %s)", err, registered())
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", ".", "project directory")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	cmd.Flags().BoolVar(&console, "console", false, "copy the log to stderr")

	return cmd
}

func registered() string {
	names := decu.Scripts()
	if len(names) == 0 {
		return "none, this binary was built without scripts"
	}
	return strings.Join(names, ", ")
}

func moduleName(script string) string {
	base := filepath.Base(script)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func serveMetrics(addr string, gatherer prometheus.Gatherer) (func(), error) {
	router := chi.NewRouter()
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics: %w", err)
	}

	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		_ = server.Serve(listener)
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}, nil
}
