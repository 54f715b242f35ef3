package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelcm/adspend-elt-go/internal/ingest"
	"github.com/angelcm/adspend-elt-go/internal/kpi"
	"github.com/angelcm/adspend-elt-go/internal/parse"
	"github.com/angelcm/adspend-elt-go/internal/utils"
)

func NewRouter(log *slog.Logger, pipe *ingest.Pipeline, kpiSvc *kpi.Service) http.Handler {
	mux := chi.NewRouter()
	mux.Use(utils.RequestID)
	mux.Use(utils.Logger(log))

	mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ok")) })
	mux.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); w.Write([]byte("ready")) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.Post("/ingest/run", func(w http.ResponseWriter, r *http.Request) {
		res, err := pipe.Run(r.Context(), r.URL.Query().Get("source"))
		if err != nil {
			if errors.Is(err, parse.ErrEmptyInput) {
				writeError(w, 422, err)
				return
			}
			writeError(w, 502, err)
			return
		}
		writeJSON(w, 200, map[string]any{
			"source_file":    res.SourceFile,
			"already_loaded": res.AlreadyLoaded,
			"total_lines":    res.Stats.TotalLines,
			"accepted":       res.Stats.Accepted,
			"skipped":        res.Stats.Skipped,
			"defaulted":      res.Stats.Defaulted,
		})
	})

	mux.Get("/kpi/compare", func(w http.ResponseWriter, r *http.Request) {
		rows, err := kpiSvc.CompareFromQuery(r.URL.Query())
		if err != nil {
			writeError(w, 400, err)
			return
		}
		writeJSON(w, 200, rows)
	})

	mux.Get("/records", func(w http.ResponseWriter, r *http.Request) {
		rows, err := kpiSvc.QueryRecords(r.URL.Query())
		if err != nil {
			writeError(w, 400, err)
			return
		}
		writeJSON(w, 200, rows)
	})

	mux.Post("/export/run", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("date")
		if q == "" {
			writeError(w, 400, errors.New("date required (YYYY-MM-DD)"))
			return
		}
		t, err := time.Parse("2006-01-02", q)
		if err != nil {
			writeError(w, 400, errors.New("bad date"))
			return
		}
		n, err := pipe.ExportDay(r.Context(), t)
		if err != nil {
			writeError(w, 502, err)
			return
		}
		writeJSON(w, 200, map[string]any{"exported": n})
	})

	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", " ")
	enc.Encode(v)
}

// Fatal errors cross the boundary as an error-shaped JSON object, never as a
// bare text body, so callers always get well-formed JSON.
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
