package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/LugersVoucherService/balltd/internal/catalog"
	"github.com/LugersVoucherService/balltd/internal/dispatch"
	"github.com/LugersVoucherService/balltd/internal/format"
	"github.com/LugersVoucherService/balltd/internal/trade"
	"github.com/LugersVoucherService/balltd/internal/verdict"
	"github.com/LugersVoucherService/balltd/internal/version"
)

const maxQuoteBody = 1 << 20

type itemView struct {
	catalog.Item
	Range        string `json:"range"`
	CategoryName string `json:"category_name"`
}

func viewOf(item catalog.Item) itemView {
	return itemView{Item: item, Range: format.Range(item), CategoryName: format.CategoryName(item.Category)}
}

type catalogResponse struct {
	Items      []itemView               `json:"items"`
	Count      int                      `json:"count"`
	Categories map[catalog.Category]int `json:"categories"`
}

type quoteSide struct {
	Items []string `json:"items"`
	Gems  FreeText `json:"gems"`
	Coins FreeText `json:"coins"`
	Robux FreeText `json:"robux"`
}

type quoteRequest struct {
	Mine   quoteSide `json:"mine"`
	Theirs quoteSide `json:"theirs"`
}

type quoteDisplay struct {
	Mine       string `json:"mine"`
	Theirs     string `json:"theirs"`
	Difference string `json:"difference"`
}

type quoteResponse struct {
	MyTotal    float64         `json:"my_total"`
	TheirTotal float64         `json:"their_total"`
	Difference float64         `json:"difference"`
	Display    quoteDisplay    `json:"display"`
	Verdict    verdict.Verdict `json:"verdict"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"version":       version.Current(),
		"catalog_items": s.catalogs.Current().Len(),
		"sessions":      s.sessions.count(),
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.catalogs.Current()
	items := cat.Filter(r.URL.Query().Get("q"))

	views := make([]itemView, 0, len(items))
	for _, item := range items {
		views = append(views, viewOf(item))
	}
	writeJSON(w, http.StatusOK, catalogResponse{
		Items:      views,
		Count:      len(views),
		Categories: cat.Counts(),
	})
}

func (s *Server) handleItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, ok := s.catalogs.Current().Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown item %q", id))
		return
	}
	writeJSON(w, http.StatusOK, viewOf(item))
}

func (s *Server) handleRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"rates": trade.RateTable()})
}

// handleQuote evaluates a trade without creating a session.
func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuoteBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	cat := s.catalogs.Current()
	st := dispatch.NewState(cat)
	for _, side := range trade.Sides {
		q := req.Mine
		if side == trade.Theirs {
			q = req.Theirs
		}
		for _, id := range q.Items {
			item, ok := cat.Lookup(id)
			if !ok {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown item %q", id))
				return
			}
			st.Trade.AddSelection(side, item)
		}
		st.Trade.SetCurrency(side, trade.Gems, string(q.Gems))
		st.Trade.SetCurrency(side, trade.Coins, string(q.Coins))
		st.Trade.SetCurrency(side, trade.Robux, string(q.Robux))
	}

	snap := dispatch.Summarize(st)
	log.Debug().
		Float64("my_total", snap.Mine.Total).
		Float64("their_total", snap.Theirs.Total).
		Str("verdict", snap.Verdict.Label).
		Msg("Quoted trade")

	writeJSON(w, http.StatusOK, quoteResponse{
		MyTotal:    snap.Mine.Total,
		TheirTotal: snap.Theirs.Total,
		Difference: snap.Difference,
		Display: quoteDisplay{
			Mine:       snap.Mine.Display,
			Theirs:     snap.Theirs.Display,
			Difference: snap.DifferenceDisplay,
		},
		Verdict: snap.Verdict,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
