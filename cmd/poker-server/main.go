package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/samansohani78/private-poker/internal/config"
	"github.com/samansohani78/private-poker/internal/history"
	"github.com/samansohani78/private-poker/internal/logging"
	"github.com/samansohani78/private-poker/internal/store"
	"github.com/samansohani78/private-poker/internal/table"
	httptransport "github.com/samansohani78/private-poker/internal/transport/http"
	"github.com/samansohani78/private-poker/internal/wallet"
	"github.com/samansohani78/private-poker/internal/ws"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logger := logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		st   *store.Store
		w    wallet.Wallet
		sink *history.Sink
	)
	if cfg.Server.PostgresDSN != "" {
		st, err = store.New(cfg.Server.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("store init failed")
		}
		defer st.Close()
		if err := st.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("db ping failed")
		}
		w = wallet.NewPostgres(st)
		sink = history.NewSink(st, logger, cfg.Server.HistoryBuffer)
	} else {
		log.Warn().Int64("starting_chips", cfg.Server.DevStartingChips).
			Msg("no POSTGRES_DSN, running on in-memory wallet")
		w = wallet.NewDevMemory(cfg.Server.DevStartingChips)
	}

	var hs table.HistorySink
	if sink != nil {
		hs = sink
	}
	manager := table.NewManager(w, hs, nil, logger)
	manager.Create(cfg.Game.Settings())

	wsSrv := ws.NewServer(manager, logger)
	router := httptransport.NewRouter(httptransport.Deps{
		Manager:     manager,
		Wallet:      w,
		Store:       st,
		Game:        cfg.Game,
		WS:          wsSrv.HandleWS,
		AdminAPIKey: cfg.Server.AdminAPIKey,
	})
	httptransport.LogRoutes(router)

	server := &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.Server.HTTPAddr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if sink != nil {
		g.Go(func() error {
			if err := sink.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := manager.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("table shutdown failed")
		}
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}
