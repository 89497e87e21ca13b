// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thediveo/spaportal/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		listen     string
		backendURL string
		publicDir  string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:          "spaportal",
		Short:        "spaportal serves the portal landing page and the static CMS admin panel",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Read(configPath)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("listen") {
				cfg.Listen = listen
			}
			if flags.Changed("backend-url") {
				cfg.BackendURL = backendURL
			}
			if flags.Changed("public") {
				cfg.PublicDir = publicDir
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), debug)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configPath, "config", "", "YAML configuration file")
	flags.StringVar(&listen, "listen", ":8080", "address to listen on")
	flags.StringVar(&backendURL, "backend-url", "", "backend base URL (overrides $"+config.BackendURLEnv+")")
	flags.StringVar(&publicDir, "public", "public", "directory with the static admin panel files")
	flags.BoolVar(&debug, "debug", false, "enable verbose logging")
	return cmd
}

// newLogger returns a JSON logger writing to w, with UTC timestamps.
func newLogger(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	}))
}

// serve runs the portal server until ctx is done, then shuts it down
// gracefully.
func serve(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	srv, health := newServer(cfg, log)
	errch := make(chan error, 1)
	go func() {
		log.Info("portal listening",
			slog.String("addr", cfg.Listen),
			slog.String("backend", cfg.BackendURL),
			slog.String("public", cfg.PublicDir))
		errch <- srv.ListenAndServe()
	}()
	select {
	case err := <-errch:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	// Handlers might still be running when Shutdown gives up, so they could
	// still fire pings; Close refuses these instead of racing them.
	health.Close()
	return err
}
