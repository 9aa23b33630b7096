// Command stylesense-lint reports C and C++ spacing style issues in files.
package main

import (
	"errors"
	"os"
	"runtime"

	"stylesense/analysis"
	"stylesense/config"
	"stylesense/logging"

	"github.com/spf13/cobra"
)

// errIssuesFound signals a non-zero exit without being logged.
var errIssuesFound = errors.New("style issues found")

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, errIssuesFound) {
			logging.Default().Error("command failed", logging.FieldError, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		configPath string
		logLevel   string
		opts       lintOptions
	)

	cmd := &cobra.Command{
		Use:   "stylesense-lint [paths...]",
		Short: "Lint C and C++ files for spacing style issues",
		Long: `Lint C and C++ files for spacing style issues.

Directories are searched recursively for C and C++ sources. Each issue is
printed as "line:col - line:col<TAB>file<TAB>message (source)" with zero based
positions.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Resolve(configPath)
			if err != nil {
				return err
			}
			if logLevel == "" {
				logLevel = cfg.LogLevel
			}
			logging.SetLevel(logLevel)

			files, err := collectFiles(args)
			if err != nil {
				return err
			}

			ctx := logging.WithLogger(cmd.Context(), logging.Default())
			issues, err := lintFiles(ctx, analysis.New(cfg), files, opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if issues > 0 {
				return errIssuesFound
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config file (default ./"+config.DefaultFileName+" when present)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&opts.fix, "fix", false, "rewrite files with the suggested fixes applied")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", runtime.NumCPU(), "number of files analyzed at once")

	return cmd
}
