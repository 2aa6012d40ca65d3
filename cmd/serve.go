package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulseroom/meeting-pipeline/config"
	"github.com/pulseroom/meeting-pipeline/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis pipeline over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		log := newLogger(cfg.Logging.Level, cfg.Logging.Format)

		if !cfg.HTTP.Enabled {
			return fmt.Errorf("http is disabled in configuration")
		}

		p, st, met, err := buildPipeline(cfg, log)
		if err != nil {
			return err
		}

		srv := server.New(cfg.HTTP, p, st, met, log)
		srv.Start()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		sig := <-sigCh
		log.WithField("signal", sig.String()).Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
