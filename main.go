// main.go
//
// Entry point for the numviz server.
// Responsibilities:
//   - Load .env (development) and environment configuration.
//   - Open + migrate the SQLite database.
//   - Serve the HTTP API until SIGINT/SIGTERM, then shut down gracefully.
//   - Run a janitor that closes render sessions idle past SESSION_IDLE_TTL.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/numviz/internal/config"
	"github.com/robalobadob/numviz/internal/database"
	"github.com/robalobadob/numviz/internal/httpserver"
	"github.com/robalobadob/numviz/internal/sched"
	"github.com/robalobadob/numviz/internal/session"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if !cfg.Production {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DatabasePath).Msg("open database")
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	sessions := session.NewMemoryStore()
	srv := httpserver.New(cfg, sessions, db, sched.Real())
	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("starting numviz server")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info().Msg("shutting down")
		return hs.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return janitor(ctx, sessions, cfg.SessionIdleTTL)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited")
	}
	if n := sessions.Sweep(context.Background(), time.Now().Add(time.Hour)); n > 0 {
		log.Info().Int("sessions", n).Msg("closed remaining sessions")
	}
}

// janitor periodically closes sessions untouched for longer than ttl.
func janitor(ctx context.Context, st session.Store, ttl time.Duration) error {
	if ttl <= 0 {
		<-ctx.Done()
		return nil
	}
	interval := ttl / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			if n := st.Sweep(ctx, now.Add(-ttl)); n > 0 {
				log.Debug().Int("sessions", n).Msg("swept idle sessions")
			}
		}
	}
}
