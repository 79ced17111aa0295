package httpx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brandpulse/sheetfeed/internal/ingest"
	"github.com/brandpulse/sheetfeed/internal/report"
	"github.com/brandpulse/sheetfeed/internal/store"
	"github.com/brandpulse/sheetfeed/internal/utils"
)

func NewRouter(log *slog.Logger, p *ingest.Pipeline, st *store.MemoryStore) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Get("/api/tabs", func(w http.ResponseWriter, r *http.Request) {
		src := p.ValidateAndDiscover(r.Context(), r.URL.Query().Get("src"))
		w.Header().Set("Content-Type", "application/json")
		if !src.OK {
			w.WriteHeader(http.StatusUnprocessableEntity)
		}
		encodeJSON(w, src)
	})

	mux.Post("/api/ingest", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		platform := q.Get("platform")
		if platform == "" {
			http.Error(w, "platform required", 400)
			return
		}
		sum, err := p.Ingest(r.Context(), q.Get("src"), platform)
		if err != nil {
			http.Error(w, err.Error(), 422)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(202)
		encodeJSON(w, sum)
	})

	mux.Get("/api/report/weekly", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, report.AggregateWeekly(st.Daily()))
	})
	mux.Get("/api/report/monthly", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, report.AggregateMonthly(st.Daily()))
	})
	mux.Get("/api/report/platform", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, report.GroupByPlatform(st.Daily()))
	})

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	encodeJSON(w, v)
}

func encodeJSON(w http.ResponseWriter, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}
