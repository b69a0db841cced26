// dynup is a small dynamic-DNS update client. It loads a provider
// configuration, detects the current public address, and keeps the
// configured hostnames pointed at it.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gitlab.bluewillows.net/root/dynup/internal/config"
	"gitlab.bluewillows.net/root/dynup/internal/health"
	"gitlab.bluewillows.net/root/dynup/internal/metrics"
	"gitlab.bluewillows.net/root/dynup/internal/updater"
)

// Version and BuildDate are set via ldflags during build.
var (
	Version   = "dev"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

type cliFlags struct {
	configPath  string
	iface       string
	once        bool
	checkConfig bool
	healthPort  int
	logLevel    string
	logFormat   string
}

func newRootCmd() *cobra.Command {
	flags := &cliFlags{}

	cmd := &cobra.Command{
		Use:           "dynup",
		Short:         "Dynamic DNS update client",
		Long:          "dynup keeps DDNS hostnames pointed at the current public address of this machine.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.configPath, "config", "f", "/etc/dynup.yaml", "configuration file (.yaml or .toml)")
	cmd.Flags().StringVarP(&flags.iface, "iface", "i", "", "network interface to bind, overrides the configured one")
	cmd.Flags().BoolVarP(&flags.once, "once", "1", false, "run exactly one update cycle and exit")
	cmd.Flags().BoolVar(&flags.checkConfig, "check-config", false, "validate the configuration, print the catalog, and exit")
	cmd.Flags().IntVar(&flags.healthPort, "health-port", 0, "port for the health and metrics endpoints, 0 disables them")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&flags.logFormat, "log-format", "text", "log format (text, json)")

	return cmd
}

func run(ctx context.Context, flags *cliFlags) error {
	logger := setupLogger(flags.logLevel, flags.logFormat)
	slog.SetDefault(logger)

	metrics.SetBuildInfo(Version, runtime.Version())

	opts := config.LoadOptions{
		Options: config.Options{
			Once:  flags.once,
			Iface: flags.iface,
		},
		Logger: logger,
	}

	if flags.checkConfig {
		lines, err := config.CheckConfig(flags.configPath, opts)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	}

	catalog, settings, err := config.Load(flags.configPath, opts)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	defer catalog.Drain()

	if catalog.Len() == 0 {
		return fmt.Errorf("no DDNS providers configured in %s", flags.configPath)
	}

	logger.Info("dynup starting",
		slog.String("version", Version),
		slog.String("build_date", BuildDate),
		slog.String("go_version", runtime.Version()),
		slog.Int("providers", catalog.Len()),
		slog.Bool("once", flags.once),
	)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	upOpts := []updater.Option{updater.WithLogger(logger)}

	if flags.healthPort > 0 {
		hs := health.New(flags.healthPort, health.WithLogger(logger))
		if err := hs.Start(); err != nil {
			return fmt.Errorf("starting health server: %w", err)
		}
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := hs.Shutdown(shutdownCtx); err != nil {
				logger.Warn("health server shutdown failed", slog.String("error", err.Error()))
			}
		}()

		upOpts = append(upOpts, updater.WithCycleObserver(func(res updater.Result) {
			hs.ReportCycle(health.CycleSummary{
				Updated: res.Updated,
				Skipped: res.Skipped,
				Failed:  res.Failed,
			})
		}))
	}

	up, err := updater.New(catalog, settings, upOpts...)
	if err != nil {
		return fmt.Errorf("creating updater: %w", err)
	}

	if err := up.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("dynup stopped")
	return nil
}

// setupLogger builds the process logger from the CLI flags.
func setupLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}
