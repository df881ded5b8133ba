// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/benvh/wordhunt/internal/config"
	"github.com/benvh/wordhunt/internal/game"
	"github.com/benvh/wordhunt/internal/handlers"
	"github.com/benvh/wordhunt/internal/middleware"
	"github.com/benvh/wordhunt/internal/words"
)

const releaseVersion = "0.1.0"

func main() {
	cfg := &config.Config{}
	cobra.CheckErr(newCmd(cfg).Execute())
}

func newCmd(cfg *config.Config) *cobra.Command {
	v := config.NewViper()

	cmd := &cobra.Command{
		Use:           "wordhunt",
		Short:         "In-memory session server for the wordhunt party game.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	config.RegisterFlags(cmd.Flags(), cfg)
	config.BindEnv(v, cmd.Flags())

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetVersionTemplate("wordhunt v{{.Version}}\n")

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logrus.New()
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	pools, err := words.Load()
	if err != nil {
		return err
	}
	if cfg.WordsDir != "" {
		if err := pools.LoadDir(cfg.WordsDir); err != nil {
			return err
		}
	}
	logger.Infof("word pools loaded: %v", pools.Languages())

	svc := game.NewService(game.NewRegistry(), pools, logger)
	svc.Countdown = cfg.Countdown
	svc.ReconnectGrace = cfg.ReconnectGrace
	svc.IdleLimit = cfg.IdleLimit
	svc.StartedExpiry = cfg.StartedExpiry

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := &game.Sweeper{Service: svc, Interval: cfg.SweepInterval}
	go sweeper.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", middleware.LogMiddleware(logger)(handlers.WSHandler(logger, svc)))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Infof("listening on %s", cfg.Addr())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
