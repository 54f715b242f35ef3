package kpi

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/angelcm/adspend-elt-go/internal/models"
	"github.com/angelcm/adspend-elt-go/internal/store"
	"github.com/angelcm/adspend-elt-go/internal/telemetry"
)

const defaultWindowDays = 30

type Service struct{ st *store.MemoryStore }

func NewService(st *store.MemoryStore) *Service { return &Service{st: st} }

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// CompareFromQuery resolves end_date (default: today UTC) and days (default:
// 30) from query parameters and runs the period-over-period comparison against
// the stored records. A malformed end_date or a non-positive days is a caller
// error.
func (s *Service) CompareFromQuery(v url.Values) ([]models.PeriodComparison, error) {
	end := dayUTC(time.Now())
	if q := v.Get("end_date"); q != "" {
		t, err := time.Parse("2006-01-02", q)
		if err != nil {
			return nil, fmt.Errorf("bad end_date %q: want YYYY-MM-DD", q)
		}
		end = t
	}
	days := defaultWindowDays
	if q := v.Get("days"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil {
			return nil, fmt.Errorf("bad days %q: want a positive integer", q)
		}
		days = n
	}

	// One range query covers both windows; Compare partitions within it.
	from := dayUTC(end).AddDate(0, 0, -2*days)
	records := s.st.QueryRange(from, dayUTC(end), nil)

	rows, err := Compare(records, end, days)
	if err != nil {
		return nil, err
	}
	telemetry.KPIQueries.Inc()
	return rows, nil
}

// QueryRecords returns stored enriched rows filtered by dimension and date
// range, in deterministic order, paginated.
func (s *Service) QueryRecords(v url.Values) ([]models.EnrichedRecord, error) {
	var from, to time.Time
	if q := v.Get("from"); q != "" {
		from, _ = time.Parse("2006-01-02", q)
	}
	if q := v.Get("to"); q != "" {
		to, _ = time.Parse("2006-01-02", q)
	}
	platform := norm(v.Get("platform"))
	country := norm(v.Get("country"))
	device := norm(v.Get("device"))
	campaign := norm(v.Get("campaign"))
	limit := atoiDef(v.Get("limit"), 100)
	offset := atoiDef(v.Get("offset"), 0)

	rows := s.st.QueryRange(from, to, func(r models.EnrichedRecord) bool {
		if platform != "" && norm(r.Platform) != platform {
			return false
		}
		if country != "" && norm(r.Country) != country {
			return false
		}
		if device != "" && norm(r.Device) != device {
			return false
		}
		if campaign != "" && norm(r.Campaign) != campaign {
			return false
		}
		return true
	})

	// orden determinista
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		if rows[i].Platform != rows[j].Platform {
			return rows[i].Platform < rows[j].Platform
		}
		return rows[i].Campaign < rows[j].Campaign
	})

	limit, offset = clampLimitOffset(limit, offset, len(rows))
	return paginate(rows, limit, offset), nil
}

func paginate[T any](rows []T, limit, offset int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}

func atoiDef(s string, d int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return d
	}
	return v
}

func clampLimitOffset(limit, offset, n int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = n
	}
	if limit > 1000 {
		limit = 1000
	} // tope sano
	if offset > n {
		offset = n
	}
	return limit, offset
}
