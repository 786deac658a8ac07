package screener

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// View is one derived subset of the ticker list destined for a single output
// file.
type View struct {
	Path    string
	Records []TickerRecord
}

// SortByMarketCap returns a new slice sorted by market cap descending, ties
// broken by symbol ascending so runs over the same data are deterministic.
func SortByMarketCap(records []TickerRecord) []TickerRecord {
	sorted := make([]TickerRecord, len(records))
	copy(sorted, records)

	sort.Slice(sorted, func(i, j int) bool {
		cmp := sorted[i].MarketCap.Cmp(sorted[j].MarketCap)
		if cmp == 0 {
			return sorted[i].Symbol < sorted[j].Symbol
		}
		return cmp > 0
	})

	return sorted
}

// TopN returns the first n records of an already sorted list.
func TopN(sorted []TickerRecord, n int) []TickerRecord {
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// GroupByIndustry partitions records by industry, preserving input order
// within each group. Records with a blank industry stay out of the partition
// but remain in the flat views.
func GroupByIndustry(records []TickerRecord) map[string][]TickerRecord {
	groups := make(map[string][]TickerRecord)
	for _, record := range records {
		industry := strings.TrimSpace(record.Industry)
		if industry == "" {
			continue
		}
		groups[industry] = append(groups[industry], record)
	}
	return groups
}

var (
	unsafeChars = regexp.MustCompile(`[^a-z0-9\s_-]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// SafeIndustryName turns an industry label into a filesystem-safe file stem:
// lowercased, punctuation stripped, whitespace collapsed to underscores.
func SafeIndustryName(industry string) string {
	name := strings.ToLower(strings.TrimSpace(industry))
	name = unsafeChars.ReplaceAllString(name, "")
	name = whitespace.ReplaceAllString(strings.TrimSpace(name), "_")
	return name
}

// BuildViews derives every output view from the sorted record list: the full
// list, the fixed top-N slices, and one view per industry in sorted order.
func BuildViews(sorted []TickerRecord) []View {
	views := []View{
		{Path: filepath.Join("tickers", "all.csv"), Records: sorted},
	}

	for _, n := range []int{50, 100, 200} {
		views = append(views, View{
			Path:    filepath.Join("tickers", "top_"+strconv.Itoa(n)+".csv"),
			Records: TopN(sorted, n),
		})
	}

	groups := GroupByIndustry(sorted)
	industries := make([]string, 0, len(groups))
	for industry := range groups {
		industries = append(industries, industry)
	}
	sort.Strings(industries)

	for _, industry := range industries {
		views = append(views, View{
			Path:    filepath.Join("by_industry", SafeIndustryName(industry)+".csv"),
			Records: groups[industry],
		})
	}

	return views
}
