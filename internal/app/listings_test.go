package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"stays/internal/app"
	"stays/internal/domain"
	"stays/internal/prefs"
)

// ---- fakes ----

type memStore struct {
	mu sync.Mutex
	v  string
	ok bool
}

func (m *memStore) Load(ctx context.Context) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.v, m.ok, nil
}

func (m *memStore) Save(ctx context.Context, currency string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.v, m.ok = currency, true
	return nil
}

type fakeAPI struct {
	mu         sync.Mutex
	props      []domain.Property
	quotes     []domain.PropertyPrice
	propErr    error
	priceErr   error
	propCalls  int
	priceCalls []domain.Currency
	priceHook  func(call int) []domain.PropertyPrice
	priceGate  chan struct{} // blocks the first price call until closed
}

func (f *fakeAPI) FetchProperties(ctx context.Context, location string) ([]domain.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.propCalls++
	if f.propErr != nil {
		return nil, f.propErr
	}
	return f.props, nil
}

func (f *fakeAPI) FetchPrices(ctx context.Context, location string, currency domain.Currency) ([]domain.PropertyPrice, error) {
	f.mu.Lock()
	f.priceCalls = append(f.priceCalls, currency)
	call := len(f.priceCalls)
	gate, hook := f.priceGate, f.priceHook
	quotes, err := f.quotes, f.priceErr
	f.mu.Unlock()

	if gate != nil && call == 1 {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if hook != nil {
		return hook(call), nil
	}
	return quotes, nil
}

func (f *fakeAPI) numPriceCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.priceCalls)
}

func (f *fakeAPI) lastCurrency() domain.Currency {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.priceCalls) == 0 {
		return ""
	}
	return f.priceCalls[len(f.priceCalls)-1]
}

func newState(t *testing.T) *prefs.State {
	t.Helper()
	s := prefs.New(&memStore{})
	if err := s.Init(context.Background()); err != nil {
		t.Fatalf("init prefs: %v", err)
	}
	return s
}

func prop(id int64, rating float64) domain.Property {
	return domain.Property{ID: id, Name: "H", Rating: rating}
}

func quote(id int64, price float64) domain.PropertyPrice {
	return domain.PropertyPrice{ID: id, Price: price}
}

func ids(items []domain.EnrichedProperty) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equalIDs(a []int64, b ...int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ---- tests ----

func TestListings_UnpricedAlwaysLast(t *testing.T) {
	// upstream order: C (no price), A (80), B (200)
	fake := &fakeAPI{
		props:  []domain.Property{prop(3, 2), prop(1, 3), prop(2, 4)},
		quotes: []domain.PropertyPrice{quote(1, 80), quote(2, 200)},
	}
	svc := app.NewListingService(fake, newState(t), "tokyo", time.Minute)

	cases := []struct {
		sort domain.SortOption
		want []int64
	}{
		{domain.SortTopPicks, []int64{1, 2, 3}},
		{domain.SortPriceLow, []int64{1, 2, 3}},
		{domain.SortPriceHigh, []int64{2, 1, 3}},
		{domain.SortRatingHigh, []int64{2, 1, 3}},
		{domain.SortRatingLow, []int64{1, 2, 3}},
	}
	for _, c := range cases {
		items, _, err := svc.Listings(context.Background(), c.sort)
		if err != nil {
			t.Fatalf("%s: %v", c.sort, err)
		}
		if got := ids(items); !equalIDs(got, c.want...) {
			t.Fatalf("%s: order %v, want %v", c.sort, got, c.want)
		}
		if items[len(items)-1].Priced() {
			t.Fatalf("%s: unpriced entry not last", c.sort)
		}
	}
}

func TestListings_StableAndIdempotent(t *testing.T) {
	fake := &fakeAPI{
		props:  []domain.Property{prop(1, 5), prop(2, 5), prop(3, 5)},
		quotes: []domain.PropertyPrice{quote(1, 100), quote(2, 100), quote(3, 100)},
	}
	svc := app.NewListingService(fake, newState(t), "tokyo", time.Minute)

	first, _, err := svc.Listings(context.Background(), domain.SortPriceLow)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	second, _, err := svc.Listings(context.Background(), domain.SortPriceLow)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	// all-equal keys keep upstream order, and re-running changes nothing
	if !equalIDs(ids(first), 1, 2, 3) || !equalIDs(ids(second), 1, 2, 3) {
		t.Fatalf("orders %v / %v, want [1 2 3]", ids(first), ids(second))
	}
}

func TestListings_DuplicateQuoteFirstMatchWins(t *testing.T) {
	fake := &fakeAPI{
		props:  []domain.Property{prop(1, 5)},
		quotes: []domain.PropertyPrice{quote(1, 80), quote(1, 999)},
	}
	svc := app.NewListingService(fake, newState(t), "tokyo", time.Minute)

	items, _, err := svc.Listings(context.Background(), domain.SortTopPicks)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if items[0].Quote == nil || items[0].Quote.Price != 80 {
		t.Fatalf("expected first quote to win, got %+v", items[0].Quote)
	}
}

func TestListings_PriceFailureDegradesToUnpriced(t *testing.T) {
	fake := &fakeAPI{
		props:    []domain.Property{prop(1, 3), prop(2, 4)},
		priceErr: errors.New("price service down"),
	}
	svc := app.NewListingService(fake, newState(t), "tokyo", time.Minute)

	items, _, err := svc.Listings(context.Background(), domain.SortPriceLow)
	if err != nil {
		t.Fatalf("price failure must not abort the pipeline: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(items))
	}
	for _, it := range items {
		if it.Priced() {
			t.Fatalf("expected every listing unpriced, got %+v", it)
		}
	}
	// upstream order preserved among the all-unpriced entries
	if !equalIDs(ids(items), 1, 2) {
		t.Fatalf("order %v, want [1 2]", ids(items))
	}
}

func TestListings_PropertyFailureAborts(t *testing.T) {
	fake := &fakeAPI{propErr: errors.New("upstream down")}
	svc := app.NewListingService(fake, newState(t), "tokyo", time.Minute)

	if _, _, err := svc.Listings(context.Background(), domain.SortTopPicks); err == nil {
		t.Fatalf("expected property-list failure to surface")
	}
}

func TestListings_SnapshotReusedWithinTTL(t *testing.T) {
	fake := &fakeAPI{
		props:  []domain.Property{prop(1, 3)},
		quotes: []domain.PropertyPrice{quote(1, 80)},
	}
	svc := app.NewListingService(fake, newState(t), "tokyo", time.Minute)

	for i := 0; i < 3; i++ {
		if _, _, err := svc.Listings(context.Background(), domain.SortTopPicks); err != nil {
			t.Fatalf("err: %v", err)
		}
	}
	if fake.numPriceCalls() != 1 {
		t.Fatalf("expected one upstream fetch, got %d", fake.numPriceCalls())
	}
}

func TestListings_CurrencyChangeTriggersRepricing(t *testing.T) {
	fake := &fakeAPI{
		props:  []domain.Property{prop(1, 3)},
		quotes: []domain.PropertyPrice{quote(1, 80)},
	}
	state := newState(t)
	svc := app.NewListingService(fake, state, "tokyo", time.Minute)

	if _, cur, _ := svc.Listings(context.Background(), domain.SortTopPicks); cur != domain.USD {
		t.Fatalf("expected USD first, got %s", cur)
	}
	if err := state.SetCurrency(context.Background(), domain.KRW); err != nil {
		t.Fatalf("set currency: %v", err)
	}
	_, cur, err := svc.Listings(context.Background(), domain.SortTopPicks)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if cur != domain.KRW || fake.lastCurrency() != domain.KRW {
		t.Fatalf("expected KRW refetch, got cur=%s last=%s", cur, fake.lastCurrency())
	}
	if fake.numPriceCalls() != 2 {
		t.Fatalf("expected 2 fetches, got %d", fake.numPriceCalls())
	}
}

func TestRefresh_StaleResponseDiscarded(t *testing.T) {
	fake := &fakeAPI{
		props:     []domain.Property{prop(1, 3)},
		priceGate: make(chan struct{}),
		priceHook: func(call int) []domain.PropertyPrice {
			if call == 1 {
				return []domain.PropertyPrice{quote(1, 111)} // slow, stale
			}
			return []domain.PropertyPrice{quote(1, 222)}
		},
	}
	svc := app.NewListingService(fake, newState(t), "tokyo", time.Minute)

	done := make(chan error, 1)
	go func() { done <- svc.Refresh(context.Background()) }()

	// wait for the slow run to issue its price call
	deadline := time.Now().Add(2 * time.Second)
	for fake.numPriceCalls() < 1 {
		if time.Now().After(deadline) {
			t.Fatalf("first price call never issued")
		}
		time.Sleep(time.Millisecond)
	}

	// a newer run completes while the first is still in flight
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("second refresh: %v", err)
	}

	close(fake.priceGate)
	if err := <-done; err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	items, _, err := svc.Listings(context.Background(), domain.SortTopPicks)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if items[0].Quote == nil || items[0].Quote.Price != 222 {
		t.Fatalf("stale response overwrote fresher snapshot: %+v", items[0].Quote)
	}
}
