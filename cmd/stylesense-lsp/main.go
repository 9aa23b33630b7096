// Command stylesense-lsp serves C and C++ style diagnostics to an editor
// over stdio.
package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"stylesense/config"
	"stylesense/logging"
	lspserver "stylesense/lsp-server"
	"stylesense/metrics"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logging.Default().Error("command failed", logging.FieldError, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath  string
		logLevel    string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "stylesense-lsp",
		Short: "Language server reporting C and C++ spacing style issues",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Resolve(configPath)
			if err != nil {
				return err
			}
			if logLevel == "" {
				logLevel = cfg.LogLevel
			}
			logging.SetLevel(logLevel)
			logger := logging.Default()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			ctx = logging.WithLogger(ctx, logger)

			mt := metrics.New()
			if metricsAddr != "" {
				srv := &http.Server{Addr: metricsAddr, Handler: mt.Handler()}
				go func() {
					logger.Info("serving metrics", logging.FieldAddr, metricsAddr)
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						logger.Error("metrics server stopped", logging.FieldError, err)
					}
				}()
				defer srv.Close()
			}

			s := newServer(cfg, mt)
			lspserver.StartServer(ctx, s.methods(), lspserver.Stdio())
			s.wait()
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file (default ./"+config.DefaultFileName+" when present)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return cmd
}
