// probe runs the fetch+join pipeline once per supported currency against the
// live upstream and reports what a user would see. Smoke check for the API
// contract; it touches no redis and serves nothing.
package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"stays/internal/adapters/observability"
	"stays/internal/adapters/staysapi"
	"stays/internal/app"
	"stays/internal/display"
	"stays/internal/domain"
	"stays/internal/shared"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.APIBase).
		Str("location", cfg.LocationKey).
		Msg("probe starting")

	client := staysapi.New(cfg.APIBase, cfg.UpstreamRPS, cfg.UpstreamTimeout)

	sem := semaphore.NewWeighted(2)
	var wg sync.WaitGroup

	for _, currency := range domain.Currencies() {
		currency := currency

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, int64(1)); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(c domain.Currency) {
			defer wg.Done()
			defer sem.Release(int64(1))

			if err := probe(ctx, client, cfg.LocationKey, c); err != nil {
				log.Warn().Str("currency", string(c)).Err(err).Msg("probe failed")
			}
		}(currency)
	}

	wg.Wait()
	log.Info().Msg("probe completed")
}

func probe(ctx context.Context, client *staysapi.Client, location string, currency domain.Currency) error {
	props, err := client.FetchProperties(ctx, location)
	if err != nil {
		return err
	}
	quotes, err := client.FetchPrices(ctx, location, currency)
	if err != nil {
		// same degradation the service applies: everything renders unpriced
		log.Warn().Err(err).Str("currency", string(currency)).Msg("price fetch failed")
		quotes = nil
	}

	items := app.Join(props, quotes)
	app.SortListings(items, domain.SortPriceLow)

	priced := 0
	for _, it := range items {
		if it.Priced() {
			priced++
		}
	}
	ev := log.Info().
		Str("currency", string(currency)).
		Int("properties", len(props)).
		Int("priced", priced)
	if priced > 0 {
		cheapest := items[0]
		ev = ev.
			Str("cheapest", cheapest.Name).
			Str("price", display.FormatPrice(cheapest.Quote.Price, currency))
	}
	ev.Msg("probe ok")
	return nil
}
