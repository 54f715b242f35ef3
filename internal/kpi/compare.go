package kpi

import (
	"errors"
	"fmt"
	"time"

	"github.com/angelcm/adspend-elt-go/internal/enrich"
	"github.com/angelcm/adspend-elt-go/internal/models"
)

// ErrInvalidWindow means windowDays was zero or negative. Fatal for the query.
var ErrInvalidWindow = errors.New("window days must be a positive integer")

// periodTotals holds full-precision sums for one window. Revenue is recomputed
// from summed conversions at the aggregate level, not summed from per-row
// rounded estimates.
type periodTotals struct {
	Spend       float64
	Conversions int
}

func (p periodTotals) revenue() float64 {
	return float64(p.Conversions) * enrich.RevenuePerConversion
}

// cac is total spend per conversion; nil when the period saw no conversions.
// A period with zero activity has an undefined acquisition cost, not a free one.
func (p periodTotals) cac() *float64 {
	if p.Conversions == 0 {
		return nil
	}
	v := p.Spend / float64(p.Conversions)
	return &v
}

// roas is revenue per unit of spend; nil when the period had no spend.
func (p periodTotals) roas() *float64 {
	if p.Spend == 0 {
		return nil
	}
	v := p.revenue() / p.Spend
	return &v
}

// Compare computes CAC and ROAS for two adjacent windows ending at endDate and
// returns one comparison row per metric, CAC first. The current period is
// [endDate-windowDays, endDate] and the prior period is
// [endDate-2*windowDays, endDate-windowDays-1], both inclusive; records outside
// both (or with an unparseable date) are ignored. Internal sums keep full
// precision; rounding to 2 decimals happens only on the output rows.
func Compare(records []models.EnrichedRecord, endDate time.Time, windowDays int) ([]models.PeriodComparison, error) {
	if windowDays <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, windowDays)
	}

	end := dayUTC(endDate)
	curFrom := end.AddDate(0, 0, -windowDays)
	priorFrom := end.AddDate(0, 0, -2*windowDays)
	priorTo := curFrom.AddDate(0, 0, -1)

	var cur, prior periodTotals
	for _, r := range records {
		d, ok := r.Day()
		if !ok {
			continue
		}
		d = dayUTC(d)
		switch {
		case !d.Before(curFrom) && !d.After(end):
			cur.Spend += r.Spend
			cur.Conversions += r.Conversions
		case !d.Before(priorFrom) && !d.After(priorTo):
			prior.Spend += r.Spend
			prior.Conversions += r.Conversions
		}
	}

	return []models.PeriodComparison{
		comparison("CAC", cur.cac(), prior.cac()),
		comparison("ROAS", cur.roas(), prior.roas()),
	}, nil
}

func comparison(metric string, cur, prior *float64) models.PeriodComparison {
	c := models.PeriodComparison{
		Metric:  metric,
		Current: round2p(cur),
		Prior:   round2p(prior),
	}
	if cur == nil || prior == nil {
		return c
	}
	delta := *cur - *prior
	c.DeltaAbsolute = round2p(&delta)
	if *prior != 0 {
		pct := fmt.Sprintf("%.2f%%", delta / *prior * 100)
		c.DeltaPercentage = &pct
	}
	return c
}

func round2p(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := enrich.Round2(*f)
	return &v
}

func dayUTC(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
