package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"stays/internal/domain"
	"stays/internal/prefs"
)

// ErrNoSnapshot is returned when a listing read races a currency change and
// no snapshot for the active currency exists yet.
var ErrNoSnapshot = errors.New("listing snapshot unavailable")

// ListingService runs the fetch→join→sort pipeline for one location. It
// memoizes the last fetched snapshot per currency — the in-memory state a
// mounted listing page would hold. The upstream itself is never cached
// per-call.
type ListingService struct {
	api      domain.PropertyAPI
	prefs    *prefs.State
	location string
	ttl      time.Duration

	mu   sync.Mutex
	seq  uint64 // last issued fetch sequence
	snap *snapshot
}

type snapshot struct {
	currency  domain.Currency
	items     []domain.EnrichedProperty
	fetchedAt time.Time
}

func NewListingService(api domain.PropertyAPI, p *prefs.State, location string, snapshotTTL time.Duration) *ListingService {
	if snapshotTTL <= 0 {
		snapshotTTL = time.Minute
	}
	return &ListingService{api: api, prefs: p, location: location, ttl: snapshotTTL}
}

// Refresh fetches and joins listings for the current currency. Each run gets
// a monotonic sequence; a completed run is discarded unless it is still the
// latest issued, so a slow response can never overwrite a fresher one.
func (s *ListingService) Refresh(ctx context.Context) error {
	currency := s.prefs.Currency()

	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	runID := uuid.NewString()
	start := time.Now()

	props, quotes, err := s.fetch(ctx, currency)
	if err != nil {
		return err
	}
	items := Join(props, quotes)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		log.Debug().Str("run", runID).Uint64("seq", seq).Msg("discarding stale listing fetch")
		return nil
	}
	s.snap = &snapshot{currency: currency, items: items, fetchedAt: time.Now()}
	log.Info().
		Str("run", runID).
		Str("currency", string(currency)).
		Int("properties", len(props)).
		Int("quotes", len(quotes)).
		Dur("took", time.Since(start)).
		Msg("listing snapshot refreshed")
	return nil
}

// fetch pulls the property list and the quote list concurrently. A price
// failure degrades to zero quotes; a property-list failure aborts the run.
func (s *ListingService) fetch(ctx context.Context, currency domain.Currency) ([]domain.Property, []domain.PropertyPrice, error) {
	var (
		props  []domain.Property
		quotes []domain.PropertyPrice
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		props, err = s.api.FetchProperties(gctx, s.location)
		if err != nil {
			return fmt.Errorf("fetch properties: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		qs, err := s.api.FetchPrices(gctx, s.location, currency)
		if err != nil {
			log.Warn().Err(err).Str("currency", string(currency)).Msg("price fetch failed; listings render unpriced")
			return nil
		}
		quotes = qs
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return props, quotes, nil
}

// Listings returns a stable-sorted copy of the current snapshot together
// with the currency it was priced in, refreshing first when the currency
// changed or the snapshot aged out.
func (s *ListingService) Listings(ctx context.Context, sortBy domain.SortOption) ([]domain.EnrichedProperty, domain.Currency, error) {
	currency := s.prefs.Currency()

	s.mu.Lock()
	fresh := s.snap != nil && s.snap.currency == currency && time.Since(s.snap.fetchedAt) < s.ttl
	s.mu.Unlock()

	if !fresh {
		if err := s.Refresh(ctx); err != nil {
			return nil, currency, err
		}
	}

	s.mu.Lock()
	snap := s.snap
	s.mu.Unlock()
	if snap == nil {
		return nil, currency, ErrNoSnapshot
	}

	items := make([]domain.EnrichedProperty, len(snap.items))
	copy(items, snap.items)
	SortListings(items, sortBy)
	return items, snap.currency, nil
}

// Join left-joins each property with its first matching quote. A missing
// quote is not an error; the entry renders as "rates unavailable".
func Join(props []domain.Property, quotes []domain.PropertyPrice) []domain.EnrichedProperty {
	byID := make(map[int64]*domain.PropertyPrice, len(quotes))
	for i := range quotes {
		if _, dup := byID[quotes[i].ID]; !dup { // first match wins
			byID[quotes[i].ID] = &quotes[i]
		}
	}
	out := make([]domain.EnrichedProperty, 0, len(props))
	for _, p := range props {
		out = append(out, domain.EnrichedProperty{Property: p, Quote: byID[p.ID]})
	}
	return out
}

// SortListings orders items in place with a stable sort. Unpriced entries
// sort after priced ones no matter which key is active; topPicks otherwise
// keeps the upstream order.
func SortListings(items []domain.EnrichedProperty, by domain.SortOption) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Priced() != b.Priced() {
			return a.Priced()
		}
		if !a.Priced() {
			return false
		}
		switch by {
		case domain.SortPriceLow:
			return a.Quote.Price < b.Quote.Price
		case domain.SortPriceHigh:
			return b.Quote.Price < a.Quote.Price
		case domain.SortRatingHigh:
			return b.Rating < a.Rating
		case domain.SortRatingLow:
			return a.Rating < b.Rating
		default: // topPicks
			return false
		}
	})
}
