package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dharmasatrya/tripfares/internal/app"
	"github.com/dharmasatrya/tripfares/internal/config"
)

var Version = "dev"

var (
	noCache  bool
	logLevel string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tripctl",
		Short:         "tripctl - operator tool for the tripfares service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&noCache, "no-cache", false, "bypass the configured cache store")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level")

	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(calendarCmd())
	rootCmd.AddCommand(prewarmCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadApp() (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	// Logs go to stderr so stdout stays parseable.
	cfg.Log.Format = "text"
	app.SetupLogger(cfg.Log)

	a, err := app.New(cfg, app.Options{DisableCache: noCache})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	return a, nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
