package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/f3rmion/tabconv/internal/config"
	"github.com/f3rmion/tabconv/internal/convert"
	"github.com/f3rmion/tabconv/internal/dispatch"
	"github.com/f3rmion/tabconv/internal/history"
	"github.com/f3rmion/tabconv/internal/logging"
	"github.com/f3rmion/tabconv/internal/server"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the converter over HTTP",
	Long: `Start an HTTP server exposing the converter.

Endpoints:
  POST /v1/latex   {"input": "...", "round_mode": "decimal", "decimals": "2"}
  POST /v1/csv     same body, CSV output
  GET  /healthz    {"ready": true|false}

Conversion endpoints answer 503 until the converter has loaded. Changes to
log.level in config.yaml are applied without a restart.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "listen address (default from config, 127.0.0.1:8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)

	addr := cfg.Server.Addr
	if cmd.Flags().Changed("addr") {
		addr, _ = cmd.Flags().GetString("addr")
	}

	opts := []dispatch.ControllerOption{dispatch.WithLogger(logger)}
	if store := openHistory(cfg, logger); store != nil {
		defer logging.SafeClose(store, logger, "close history")
		opts = append(opts, dispatch.WithObserver(history.Observer(store, logger)))
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(logger)
	gate := dispatch.NewGate(opts...)
	load := dispatch.EngineLoader(convert.WithColumnAlign(cfg.LaTeX.Align))
	go func() {
		if err := gate.Attach(ctx, load, srv); err != nil {
			logging.LogError(logger, "converter failed to load", err, logrus.Fields{"component": "http_server"})
			return
		}
		logging.LogOperation(logger, "converter_ready", logrus.Fields{"component": "http_server"})
	}()

	watchConfig(viper.GetViper(), logger)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	logging.LogOperation(logger, "server_start", logrus.Fields{"addr": addr})

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving HTTP: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	logging.LogOperation(logger, "server_stop", logrus.Fields{"addr": addr})
	return nil
}

// watchConfig re-reads the config file when it changes and applies the new
// log level. --verbose pins the level to debug.
func watchConfig(v *viper.Viper, logger *logrus.Logger) {
	if _, err := os.Stat(v.ConfigFileUsed()); err != nil {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		applyConfigChange(v, logger, e)
	})
	v.WatchConfig()
}

// applyConfigChange decodes the re-read config in v and applies its log
// level unless verbose is set. A config that fails to decode leaves the
// logger untouched.
func applyConfigChange(v *viper.Viper, logger *logrus.Logger, e fsnotify.Event) {
	reloaded, err := config.Decode(v)
	if err != nil {
		logging.LogError(logger, "reloading config", err, logrus.Fields{"file": e.Name})
		return
	}
	if !v.GetBool("verbose") {
		logging.SetLevel(logger, reloaded.Log.Level)
	}
	logging.LogOperation(logger, "config_reloaded", logrus.Fields{
		"file":      e.Name,
		"op":        e.Op.String(),
		"log_level": logger.GetLevel().String(),
	})
}
