// Command chatgate runs the chat gateway server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"chatgate/internal/app"
	"chatgate/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "chatgate",
		Short: "Persistent-connection chat gateway",
		Long: "chatgate serves a websocket chat gateway with binary framing,\n" +
			"hour-of-day message policies and Redis-backed connection admission.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			return run(cfg)
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file (optional)")
	return cmd
}

func run(cfg *config.Config) error {
	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-signalCh
	log.Printf("received signal %v, shutting down gracefully", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	return application.Stop(shutdownCtx)
}
