package httpx

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelcm/adspend-elt-go/internal/config"
	"github.com/angelcm/adspend-elt-go/internal/ingest"
	"github.com/angelcm/adspend-elt-go/internal/kpi"
	"github.com/angelcm/adspend-elt-go/internal/models"
	"github.com/angelcm/adspend-elt-go/internal/store"
)

const routerCSV = `date,platform,account,campaign,country,device,spend,clicks,impressions,conversions
2025-06-15,Google,acct-1,summer_sale,US,mobile,25.10,40,1000,5
2025-05-15,Meta,acct-2,spring_sale,US,desktop,23.25,30,900,5
`

func newTestRouter(st *store.MemoryStore) http.Handler {
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	pipe := ingest.NewPipeline(ingest.NewHTTPClient(2*time.Second), st, log, config.Config{})
	return NewRouter(log, pipe, kpi.NewService(st))
}

func doReq(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	h := newTestRouter(store.NewMemoryStore())
	assert.Equal(t, 200, doReq(t, h, http.MethodGet, "/healthz").Code)
	assert.Equal(t, 200, doReq(t, h, http.MethodGet, "/readyz").Code)
	assert.Equal(t, 200, doReq(t, h, http.MethodGet, "/metrics").Code)
}

func TestIngestThenCompare(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(routerCSV))
	}))
	defer src.Close()

	st := store.NewMemoryStore()
	h := newTestRouter(st)

	rr := doReq(t, h, http.MethodPost, "/ingest/run?source="+src.URL+"/ads.csv")
	require.Equal(t, 200, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	var ing struct {
		SourceFile string `json:"source_file"`
		Accepted   int    `json:"accepted"`
		Skipped    int    `json:"skipped"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &ing))
	assert.Equal(t, "ads.csv", ing.SourceFile)
	assert.Equal(t, 2, ing.Accepted)

	rr = doReq(t, h, http.MethodGet, "/kpi/compare?end_date=2025-07-01&days=30")
	require.Equal(t, 200, rr.Code)

	var rows []models.PeriodComparison
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, "CAC", rows[0].Metric)
	require.NotNil(t, rows[0].Current)
	assert.InDelta(t, 5.02, *rows[0].Current, 1e-9)
	require.NotNil(t, rows[0].DeltaPercentage)
	assert.Equal(t, "7.96%", *rows[0].DeltaPercentage)
}

func TestCompareErrorsAreJSON(t *testing.T) {
	h := newTestRouter(store.NewMemoryStore())

	for _, target := range []string{
		"/kpi/compare?days=0",
		"/kpi/compare?days=bogus",
		"/kpi/compare?end_date=01/07/2025",
	} {
		rr := doReq(t, h, http.MethodGet, target)
		assert.Equal(t, 400, rr.Code, target)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), target)
		assert.NotEmpty(t, body["error"], target)
	}
}

func TestCompareNullsSerializeAsJSONNull(t *testing.T) {
	h := newTestRouter(store.NewMemoryStore())
	rr := doReq(t, h, http.MethodGet, "/kpi/compare?end_date=2025-07-01")
	require.Equal(t, 200, rr.Code)

	var raw []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &raw))
	require.Len(t, raw, 2)
	assert.JSONEq(t, "null", string(raw[0]["last_30_days"]))
	assert.JSONEq(t, "null", string(raw[0]["prior_30_days"]))
	assert.JSONEq(t, "null", string(raw[0]["delta_absolute"]))
	assert.JSONEq(t, "null", string(raw[0]["delta_percentage"]))
}

func TestIngestEmptySourceIs422(t *testing.T) {
	src := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer src.Close()

	h := newTestRouter(store.NewMemoryStore())
	rr := doReq(t, h, http.MethodPost, "/ingest/run?source="+src.URL+"/empty.csv")
	assert.Equal(t, 422, rr.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.NotEmpty(t, body["error"])
}

func TestRecordsEndpoint(t *testing.T) {
	st := store.NewMemoryStore()
	st.InsertBatch([]models.EnrichedRecord{
		{AdSpendRecord: models.AdSpendRecord{Date: "2025-06-15", Platform: "Google"}},
		{AdSpendRecord: models.AdSpendRecord{Date: "2025-06-16", Platform: "Meta"}},
	})
	h := newTestRouter(st)

	rr := doReq(t, h, http.MethodGet, "/records?platform=google")
	require.Equal(t, 200, rr.Code)

	var rows []models.EnrichedRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Google", rows[0].Platform)
}

func TestExportRequiresDate(t *testing.T) {
	h := newTestRouter(store.NewMemoryStore())
	assert.Equal(t, 400, doReq(t, h, http.MethodPost, "/export/run").Code)
	assert.Equal(t, 400, doReq(t, h, http.MethodPost, "/export/run?date=nope").Code)
}
