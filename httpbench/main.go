// Command httpbench serves an HTTP echo endpoint backed by a msgq.Queue. Each
// POST becomes a Request on the queue that a pool of workers answers, which
// makes it easy to load-test the request/response path with any HTTP tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "httpbench",
		Short: "Load-test harness for msgq",
	}
	root.AddCommand(newServeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the echo endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromFlags(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			if err := serve(cmd.Context(), cfg, logger); err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("config", "", "YAML config file")
	cmd.Flags().Int("port", 0, "Port to listen on (default 8080)")
	cmd.Flags().Int("workers", 0, "Number of worker goroutines answering requests (default 4)")
	cmd.Flags().Duration("get-timeout", 0, "How long a worker waits for a request before checking for shutdown (default 1s)")
	cmd.Flags().String("queue-name", "", "Queue name used in logs")
	cmd.Flags().String("log-level", "", "Log level: debug|info|warn|error")
	cmd.Flags().String("log-format", "", "Log format: text|json")
	return cmd
}

// configFromFlags loads the config file, then overlays the flags that were
// set explicitly.
func configFromFlags(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}

	var set Config
	if flags.Changed("port") {
		set.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("workers") {
		set.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("get-timeout") {
		set.GetTimeout, _ = flags.GetDuration("get-timeout")
	}
	set.QueueName, _ = flags.GetString("queue-name")
	set.LogLevel, _ = flags.GetString("log-level")
	set.LogFormat, _ = flags.GetString("log-format")
	cfg.Merge(&set)
	return cfg, nil
}
