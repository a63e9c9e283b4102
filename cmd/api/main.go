package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	server "stays/internal/adapters/http_server"
	"stays/internal/adapters/observability"
	redisad "stays/internal/adapters/redis"
	"stays/internal/adapters/staysapi"
	"stays/internal/app"
	"stays/internal/domain"
	"stays/internal/prefs"
	"stays/internal/shared"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// preference persistence: initialized here, torn down on exit
	store := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = store.Close() }()

	state := prefs.New(store)
	if err := state.Init(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("preference init failed")
	}
	log.Info().Str("currency", string(state.Currency())).Msg("currency preference loaded")

	// deps
	client := staysapi.New(cfg.APIBase, cfg.UpstreamRPS, cfg.UpstreamTimeout)
	listings := app.NewListingService(client, state, cfg.LocationKey, cfg.SnapshotTTL)

	// re-price the snapshot as soon as the user picks a new currency
	state.Subscribe(func(c domain.Currency) {
		go func() {
			if err := listings.Refresh(context.Background()); err != nil {
				log.Warn().Err(err).Str("currency", string(c)).Msg("refresh after currency change failed")
			}
		}()
	})

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Listings: listings, Prefs: state, Location: cfg.LocationKey})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
