package screener

import (
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestParseMarketCap(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"$1.2T", "1200000000000"},
		{"$500M", "500000000"},
		{"$3.5B", "3500000000"},
		{"250K", "250000"},
		{"$3,450,000", "3450000"},
		{"N/A", "0"},
		{"", "0"},
		{"garbage", "0"},
	}

	for _, c := range cases {
		got := ParseMarketCap(c.in)
		want, _ := decimal.NewFromString(c.want)
		if !got.Equal(want) {
			t.Errorf("ParseMarketCap(%q) = %s, want %s", c.in, got, want)
		}
	}
}

func TestParsePrice(t *testing.T) {
	if got := ParsePrice("$189.84"); !got.Equal(decimal.NewFromFloat(189.84)) {
		t.Errorf("Expected 189.84, got %s", got)
	}
	if got := ParsePrice("N/A"); !got.IsZero() {
		t.Errorf("Expected zero for N/A, got %s", got)
	}
}

func TestParseVolume(t *testing.T) {
	if got := ParseVolume("12,345,678"); got != 12345678 {
		t.Errorf("Expected 12345678, got %d", got)
	}
	if got := ParseVolume("123456.0"); got != 123456 {
		t.Errorf("Expected 123456, got %d", got)
	}
	if got := ParseVolume(""); got != 0 {
		t.Errorf("Expected 0 for empty volume, got %d", got)
	}
}

func TestParseRows(t *testing.T) {
	rows := []ScreenerRow{
		{Symbol: "AAPL", Name: "Apple Inc.", LastSale: "$189.84", MarketCap: "$3.0T", Volume: "50,000,000", Country: "United States", Sector: "Technology"},
		{Symbol: "AAPL", Name: "Apple Inc.", LastSale: "$189.84", MarketCap: "$3.0T", Volume: "50,000,000", Country: "United States", Sector: "Technology"},
		{Symbol: "SAP", Name: "SAP SE", LastSale: "$170.00", MarketCap: "$200B", Volume: "1,000,000", Country: "Germany", Sector: "Technology"},
		{Symbol: "", Name: "Nameless", Country: "United States"},
		{Symbol: "XOM", Name: "Exxon Mobil", LastSale: "$105.12", MarketCap: "$420B", Volume: "15,000,000", Country: "United States", Sector: "Energy"},
	}

	records := ParseRows(rows, zap.NewNop())

	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Symbol != "AAPL" || records[1].Symbol != "XOM" {
		t.Errorf("Unexpected symbols: %s, %s", records[0].Symbol, records[1].Symbol)
	}
	if records[0].Industry != "Technology" {
		t.Errorf("Expected industry from sector column, got %q", records[0].Industry)
	}
	if records[0].Volume != 50000000 {
		t.Errorf("Expected volume 50000000, got %d", records[0].Volume)
	}
}
