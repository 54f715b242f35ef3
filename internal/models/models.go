package models

import "time"

// AdSpendRecord is one validated row of the ad-spend dataset: one
// campaign/day/platform/device/country. Numeric fields are always coerced at
// parse time; a value that fails to parse becomes 0, never stays text.
type AdSpendRecord struct {
	Date        string  `json:"date"` // kept as-delivered, YYYY-MM-DD expected
	Platform    string  `json:"platform"`
	Account     string  `json:"account"`
	Campaign    string  `json:"campaign"`
	Country     string  `json:"country"`
	Device      string  `json:"device"`
	Spend       float64 `json:"spend"`
	Clicks      int     `json:"clicks"`
	Impressions int     `json:"impressions"`
	Conversions int     `json:"conversions"`
}

// EnrichedRecord is an AdSpendRecord plus derived per-row metrics and
// ingestion metadata. Immutable once built.
type EnrichedRecord struct {
	AdSpendRecord

	CTR               float64 `json:"ctr"`
	ConversionRate    float64 `json:"conversion_rate"`
	CPC               float64 `json:"cpc"`
	CostPerConversion float64 `json:"cost_per_conversion"`
	ImpressionShare   int     `json:"impression_share"`
	RevenueEstimate   float64 `json:"revenue_estimate"`
	ProfitEstimate    float64 `json:"profit_estimate"`

	LoadDate       time.Time `json:"load_date"`
	SourceFileName string    `json:"source_file_name"`
}

// Day parses the record's date. ok is false when the string does not hold a
// valid YYYY-MM-DD date; such rows fall outside every comparison window.
func (r AdSpendRecord) Day() (time.Time, bool) {
	d, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ParseStats reports what happened during one parse run. Observability only,
// never used for control flow.
type ParseStats struct {
	TotalLines int `json:"total_lines"` // non-blank lines, header included
	Accepted   int `json:"accepted"`
	Skipped    int `json:"skipped"`   // field-count mismatch with the header
	Defaulted  int `json:"defaulted"` // numeric fields coerced to 0
}

// PeriodComparison is one KPI compared across the current and prior window.
// Nil pointers serialize as JSON null: an empty period has an undefined KPI,
// not a zero one. Field names are fixed for the consuming agent regardless of
// the actual window length.
type PeriodComparison struct {
	Metric          string   `json:"metric"`
	Current         *float64 `json:"last_30_days"`
	Prior           *float64 `json:"prior_30_days"`
	DeltaAbsolute   *float64 `json:"delta_absolute"`
	DeltaPercentage *string  `json:"delta_percentage"`
}

// IngestResult summarizes one pipeline run for the caller.
type IngestResult struct {
	SourceFile    string     `json:"source_file"`
	AlreadyLoaded bool       `json:"already_loaded"`
	Stats         ParseStats `json:"stats"`
}
