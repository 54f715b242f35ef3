package parse

import (
	"errors"
	"strconv"
	"strings"

	"github.com/angelcm/adspend-elt-go/internal/models"
)

// ErrEmptyInput means the raw text was empty or held no non-blank lines.
// Fatal for the ingestion call; no partial result is returned.
var ErrEmptyInput = errors.New("empty input: no data lines")

const delimiter = ","

// Parse turns raw comma-delimited text into validated records. The first
// non-blank line is the header; a data line whose field count differs from the
// header is skipped and counted, never fatal. Numeric fields are coerced
// leniently: unparseable or negative values become 0 (counted in
// stats.Defaulted). Parse does no I/O; the caller supplies the text.
func Parse(rawText string) ([]models.AdSpendRecord, models.ParseStats, error) {
	var stats models.ParseStats

	lines := nonBlankLines(rawText)
	if len(lines) == 0 {
		return nil, stats, ErrEmptyInput
	}
	stats.TotalLines = len(lines)

	header := splitTrim(lines[0])
	records := make([]models.AdSpendRecord, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := splitTrim(line)
		if len(fields) != len(header) {
			stats.Skipped++
			continue
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			row[name] = fields[i]
		}
		records = append(records, fromRow(row, &stats))
		stats.Accepted++
	}
	return records, stats, nil
}

func fromRow(row map[string]string, stats *models.ParseStats) models.AdSpendRecord {
	return models.AdSpendRecord{
		Date:        row["date"],
		Platform:    row["platform"],
		Account:     row["account"],
		Campaign:    row["campaign"],
		Country:     row["country"],
		Device:      row["device"],
		Spend:       toFloat(row["spend"], stats),
		Clicks:      toInt(row["clicks"], stats),
		Impressions: toInt(row["impressions"], stats),
		Conversions: toInt(row["conversions"], stats),
	}
}

// toFloat applies the lenient-ingestion policy: bad numerics default to 0
// silently, surfaced only through the stats counter.
func toFloat(s string, stats *models.ParseStats) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		stats.Defaulted++
		return 0
	}
	return f
}

func toInt(s string, stats *models.ParseStats) int {
	i, err := strconv.Atoi(s)
	if err != nil || i < 0 {
		stats.Defaulted++
		return 0
	}
	return i
}

func nonBlankLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func splitTrim(line string) []string {
	parts := strings.Split(line, delimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
