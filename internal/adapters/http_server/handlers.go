package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"stays/internal/app"
	"stays/internal/domain"
	"stays/internal/prefs"
)

type Handlers struct {
	Listings *app.ListingService
	Prefs    *prefs.State
	Location string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/listings", h.listListings)
	s.mux.Get("/v1/preferences/currency", h.getCurrency)
	s.mux.Put("/v1/preferences/currency", h.putCurrency)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

type listingsResponse struct {
	Location string            `json:"location"`
	Currency domain.Currency   `json:"currency"`
	Count    int               `json:"count"`
	Listings []app.ListingView `json:"listings"`
}

func (h *Handlers) listListings(w http.ResponseWriter, r *http.Request) {
	sortBy, err := domain.ParseSortOption(r.URL.Query().Get("sort"))
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid sort", err.Error())
		return
	}

	items, currency, err := h.Listings.Listings(r.Context(), sortBy)
	if err != nil {
		// explicit instead of a silently empty page
		writeProblem(w, http.StatusBadGateway, "Upstream Unavailable", "property list could not be fetched")
		return
	}

	resp := listingsResponse{
		Location: h.Location,
		Currency: currency,
		Count:    len(items),
		Listings: app.BuildViews(items, currency),
	}

	etag, body := calcETagAndBody(resp)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write listings body")
	}
}

type currencyPayload struct {
	Currency string `json:"currency"`
}

func (h *Handlers) getCurrency(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(currencyPayload{Currency: string(h.Prefs.Currency())})
}

func (h *Handlers) putCurrency(w http.ResponseWriter, r *http.Request) {
	var in currencyPayload
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", "expected {\"currency\":\"USD\"}")
		return
	}
	c, err := domain.ParseCurrency(in.Currency)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid currency", err.Error())
		return
	}
	if err := h.Prefs.SetCurrency(r.Context(), c); err != nil {
		writeProblem(w, http.StatusInternalServerError, "Preference Store Error", "could not persist currency")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(currencyPayload{Currency: string(c)})
}
