package enrich

import (
	"math"
	"time"

	"github.com/angelcm/adspend-elt-go/internal/models"
)

// RevenuePerConversion is the assumed revenue attributed to each conversion.
const RevenuePerConversion = 50.0

// Enrich derives per-row metrics from a validated record. Pure: same input,
// same output. Every zero-denominator ratio resolves to exactly 0 rather than
// an error; zero-activity rows get neutral metrics instead of failing the
// batch. Ratio metrics are rounded half-up to 2 decimals; revenue and profit
// estimates are exact.
func Enrich(rec models.AdSpendRecord, loadDate time.Time, sourceFileName string) models.EnrichedRecord {
	revenue := float64(rec.Conversions) * RevenuePerConversion
	return models.EnrichedRecord{
		AdSpendRecord: rec,

		CTR:               Round2(safeDiv(float64(rec.Clicks), float64(rec.Impressions)) * 100),
		ConversionRate:    Round2(safeDiv(float64(rec.Conversions), float64(rec.Clicks)) * 100),
		CPC:               Round2(safeDiv(rec.Spend, float64(rec.Clicks))),
		CostPerConversion: Round2(safeDiv(rec.Spend, float64(rec.Conversions))),
		ImpressionShare:   boolToInt(rec.Impressions > 0),
		RevenueEstimate:   revenue,
		ProfitEstimate:    revenue - rec.Spend,

		LoadDate:       loadDate,
		SourceFileName: sourceFileName,
	}
}

// Round2 rounds half away from zero to 2 decimal places.
func Round2(f float64) float64 { return math.Round(f*100) / 100 }

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
