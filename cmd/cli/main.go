package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	config "github.com/cochaviz/slnbuild/config"
	"github.com/cochaviz/slnbuild/internal/build"
	"github.com/cochaviz/slnbuild/internal/logging"
	"github.com/cochaviz/slnbuild/internal/profile"
	"github.com/cochaviz/slnbuild/internal/setup"
)

const (
	defaultLogLevel  = "info"
	defaultLogFormat = "cli"
)

// Process exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitConfig      = 2
	exitInterrupted = 130
)

func main() {
	var levelVar slog.LevelVar
	levelVar.Set(slog.LevelInfo)

	logs := logging.NewSwitcher(os.Stderr, &levelVar, logging.Interactive(os.Stderr))
	logger := logs.Logger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCommand(logs, &levelVar)
	err := root.ExecuteContext(ctx)
	code := exitCode(err)
	switch code {
	case exitOK:
	case exitInterrupted:
		logger.Warn("command interrupted", "error", err)
	default:
		logger.Error("command execution failed", "error", err)
	}
	stop()
	os.Exit(code)
}

// exitCode maps a command error onto the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, context.Canceled):
		return exitInterrupted
	case errors.Is(err, build.ErrConfiguration):
		return exitConfig
	default:
		return exitFailure
	}
}

func newRootCommand(logs *logging.Switcher, levelVar *slog.LevelVar) *cobra.Command {
	logger := logs.Logger()
	setup.SetLogger(logger.With("component", "setup"))

	logLevel := defaultLogLevel
	logFormat := defaultLogFormat

	root := &cobra.Command{
		Use:           "slnbuild",
		Short:         "Build every configuration of a Visual Studio solution and package the results",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.PersistentFlags().StringVar(&logLevel, "log-level", defaultLogLevel, "Set log verbosity (debug, info, warning, error)")
	root.PersistentFlags().StringVar(&logFormat, "log-format", defaultLogFormat, "Set log output format (cli, json)")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := logs.SetFormat(logFormat); err != nil {
			return fmt.Errorf("%w: %v", build.ErrConfiguration, err)
		}
		level, err := logging.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("%w: %v", build.ErrConfiguration, err)
		}
		if levelVar != nil {
			levelVar.Set(level)
		}
		return nil
	}

	root.AddCommand(
		newBuildCommand(logger),
		newConfigsCommand(logger),
		newCheckCommand(logger),
		newInitCommand(logger),
	)
	return root
}

func newBuildCommand(logger *slog.Logger) *cobra.Command {
	var opts config.Options

	cmd := &cobra.Command{
		Use:   "build",
		Args:  cobra.NoArgs,
		Short: "Build the selected configurations and run the packaging generator",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdLogger := logger.With("command", "build")
			opts.Output = cmd.OutOrStdout()
			opts.ErrOutput = cmd.ErrOrStderr()

			result, err := config.Build(cmd.Context(), opts, cmdLogger)
			if err != nil {
				return err
			}

			cmdLogger.Debug("build completed", "artifacts", result.Mapping.Len())
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ProfilePath, "profile", "", "Path to a YAML build profile")
	cmd.Flags().StringArrayVar(&opts.Only, "config", nil, "Build only this configuration; repeat to select several")
	cmd.Flags().BoolVar(&opts.NoRebuild, "no-rebuild", false, "Do not pass the clean and rebuild target")
	cmd.Flags().BoolVar(&opts.NoParallel, "no-parallel", false, "Do not let the build tool run in parallel")
	cmd.Flags().BoolVar(&opts.SkipPackage, "skip-package", false, "Build and verify artifacts without packaging them")

	return cmd
}

func newConfigsCommand(logger *slog.Logger) *cobra.Command {
	var opts config.Options

	cmd := &cobra.Command{
		Use:   "configs",
		Args:  cobra.NoArgs,
		Short: "List configurations and their expected artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			targets, err := config.List(opts, logger.With("command", "configs"))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, target := range targets {
				fmt.Fprintf(out, "%s\t%s\n", target.Configuration, target.Artifact)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ProfilePath, "profile", "", "Path to a YAML build profile")

	return cmd
}

func newCheckCommand(logger *slog.Logger) *cobra.Command {
	var opts config.Options

	cmd := &cobra.Command{
		Use:   "check",
		Args:  cobra.NoArgs,
		Short: "Validate the profile and the environment without building",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdLogger := logger.With("command", "check")

			env, err := config.Check(opts, cmdLogger)
			if err != nil {
				cmdLogger.Info("set the tool and solution variables to existing directories and retry")
				return err
			}

			cmdLogger.Info("environment verified", "tool_dir", env.ToolDir, "solution_root", env.SolutionRoot)
			fmt.Fprintln(cmd.OutOrStdout(), "OK")
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.ProfilePath, "profile", "", "Path to a YAML build profile")

	return cmd
}

func newInitCommand(logger *slog.Logger) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Args:  cobra.MaximumNArgs(1),
		Short: "Write the built-in profile to a file for editing",
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}

			written, err := profile.WriteDefault(path, force)
			if err != nil {
				return err
			}

			logger.Info("profile written", "command", "init", "path", written)
			fmt.Fprintln(cmd.OutOrStdout(), written)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing profile")

	return cmd
}
