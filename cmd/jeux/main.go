// The jeux command is the server's entrypoint: it parses flags, builds the
// process-wide logger and registries, starts the accept loop, and drives
// graceful shutdown on SIGHUP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jeux/internal/core"
	"jeux/internal/server"
)

func main() {
	var port int
	var configPath string
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "jeux",
		Short: "jeux Tic-Tac-Toe server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(port, configPath, logLevel)
		},
	}
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (required)")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the directory containing the server config file")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level (debug, info, warn, error)")
	_ = rootCmd.MarkFlagRequired("port")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(port int, configPath, logLevel string) error {
	cfg := core.LoadConfig(configPath)
	cfg.Port = port
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log, err := core.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}

	core.StartPprofServer(cfg, log)

	backend := server.NewBackend(cfg.MaxConnections, log)
	srv := server.New(cfg, backend, log)

	ctx, cancel := context.WithCancel(context.Background())

	// SIGHUP triggers graceful shutdown: half-close every session socket,
	// wait for each session loop to observe EOF and unregister, then exit.
	// SIGPIPE is left to Go's default handling (a write to a closed socket
	// surfaces as an error, never a process-terminating signal), so it is
	// deliberately not registered here.
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	go func() {
		<-sighup
		log.Info("received SIGHUP, shutting down gracefully")
		backend.Clients.ShutdownAll()
		backend.Clients.WaitForEmpty()
		cancel()
		os.Exit(0)
	}()

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	return nil
}
