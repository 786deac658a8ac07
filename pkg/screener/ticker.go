package screener

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TickerRecord is one listed US stock as reported by the screener API.
// Records are immutable once parsed; each run is a full snapshot.
type TickerRecord struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	MarketCap decimal.Decimal `json:"marketCap"`
	Volume    int64           `json:"volume"`
	Industry  string          `json:"industry"`
}

// ScreenerRow is the raw screener API row. Numeric fields arrive as display
// strings ("$189.84", "$1.2T", "12,345,678") and go through the parse helpers.
type ScreenerRow struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	LastSale  string `json:"lastsale"`
	NetChange string `json:"netchange"`
	PctChange string `json:"pctchange"`
	MarketCap string `json:"marketCap"`
	Country   string `json:"country"`
	IPOYear   string `json:"ipoyear"`
	Volume    string `json:"volume"`
	Sector    string `json:"sector"`
	Industry  string `json:"industry"`
	URL       string `json:"url"`
}

// Magnitude suffixes used in screener market cap strings.
var capExponents = map[byte]int32{
	'T': 12,
	'B': 9,
	'M': 6,
	'K': 3,
}

func cleanNumber(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "N/A" {
		return ""
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}

// ParseMarketCap parses strings like "$1.2T" or "$500M" into a plain number.
// "N/A" and unparsable values come back as zero so the record stays sortable.
func ParseMarketCap(s string) decimal.Decimal {
	s = cleanNumber(s)
	if s == "" {
		return decimal.Zero
	}
	if exp, ok := capExponents[s[len(s)-1]]; ok {
		d, err := decimal.NewFromString(s[:len(s)-1])
		if err != nil {
			return decimal.Zero
		}
		return d.Shift(exp)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParsePrice parses a price string like "$189.84".
func ParsePrice(s string) decimal.Decimal {
	s = cleanNumber(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseVolume parses a volume string like "12,345,678".
func ParseVolume(s string) int64 {
	s = cleanNumber(s)
	if s == "" {
		return 0
	}
	// Some feeds report volume as "123456.0"
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}

// ParseRows converts raw screener rows into ticker records. Only US-listed
// stocks are kept, duplicate and empty symbols are skipped, and exclusion
// counts are logged. The industry field comes from the screener's sector
// column, matching the output files' grouping.
func ParseRows(rows []ScreenerRow, logger *zap.Logger) []TickerRecord {
	records := make([]TickerRecord, 0, len(rows))
	seen := make(map[string]bool, len(rows))

	nonUS := 0
	duplicates := 0

	for _, row := range rows {
		if row.Country != "United States" {
			nonUS++
			continue
		}

		symbol := strings.TrimSpace(row.Symbol)
		if symbol == "" || seen[symbol] {
			duplicates++
			continue
		}
		seen[symbol] = true

		records = append(records, TickerRecord{
			Symbol:    symbol,
			Name:      row.Name,
			Price:     ParsePrice(row.LastSale),
			MarketCap: ParseMarketCap(row.MarketCap),
			Volume:    ParseVolume(row.Volume),
			Industry:  row.Sector,
		})
	}

	logger.Info("parsed screener rows",
		zap.Int("total", len(rows)),
		zap.Int("kept", len(records)),
		zap.Int("non_us", nonUS),
		zap.Int("duplicates", duplicates))

	return records
}
