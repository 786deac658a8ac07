package screener

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"
)

const DefaultScreenerURL = "https://api.nasdaq.com/api/screener/stocks"

// The screener rejects default Go user agents.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// FetchError means the screener API could not be fetched. It is fatal to the
// whole run.
type FetchError struct {
	StatusCode int
	Status     string
	Err        error
}

func NewFetchError(statusCode int, err error) *FetchError {
	return &FetchError{
		StatusCode: statusCode,
		Status:     http.StatusText(statusCode),
		Err:        err,
	}
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch failed: %s", e.Err.Error())
	}
	return fmt.Sprintf("fetch failed: %s", e.Status)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type ClientConfig struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	PageSize     int
	MaxRecords   int  // 0 means unlimited
	AllowEmpty   bool // treat an empty result as a zero-ticker day
	InitialDelay bool // randomized 0.5-1.5s delay before the first request
}

// Client fetches ticker pages from the screener API.
type Client struct {
	Config *ClientConfig
	Client *http.Client
	Logger *zap.Logger
}

func NewClient(config *ClientConfig, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultScreenerURL
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.PageSize == 0 {
		config.PageSize = 1000
	}
	return &Client{
		Config: config,
		Client: &http.Client{Timeout: config.Timeout},
		Logger: logger,
	}
}

type screenerResponse struct {
	Data struct {
		TotalRecords int           `json:"totalrecords"`
		Rows         []ScreenerRow `json:"rows"`
	} `json:"data"`
}

// FetchTickers pulls every screener page and parses the rows into records.
// A run that yields zero records is an upstream failure unless AllowEmpty is
// set.
func (c *Client) FetchTickers() ([]TickerRecord, error) {
	if c.Config.InitialDelay {
		// Avoid a predictable request signature on the daily schedule.
		delay := 500*time.Millisecond + time.Duration(rand.Intn(1000))*time.Millisecond
		time.Sleep(delay)
	}

	var rows []ScreenerRow
	offset := 0

	for {
		page, total, err := c.fetchPage(offset)
		if err != nil {
			return nil, err
		}
		rows = append(rows, page...)

		c.Logger.Debug("fetched screener page",
			zap.Int("offset", offset),
			zap.Int("rows", len(page)),
			zap.Int("total_reported", total))

		if c.Config.MaxRecords > 0 && len(rows) >= c.Config.MaxRecords {
			rows = rows[:c.Config.MaxRecords]
			break
		}
		if len(page) < c.Config.PageSize {
			break
		}
		if total > 0 && len(rows) >= total {
			break
		}
		offset += c.Config.PageSize
	}

	c.Logger.Info("screener fetch complete", zap.Int("rows", len(rows)))

	records := ParseRows(rows, c.Logger)
	if len(records) == 0 && !c.Config.AllowEmpty {
		return nil, NewFetchError(http.StatusOK, fmt.Errorf("screener returned no tickers"))
	}
	return records, nil
}

func (c *Client) fetchPage(offset int) ([]ScreenerRow, int, error) {
	params := url.Values{}
	params.Set("tableonly", "true")
	params.Set("download", "true")
	params.Set("limit", strconv.Itoa(c.Config.PageSize))
	params.Set("offset", strconv.Itoa(offset))
	pageURL := c.Config.BaseURL + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= c.Config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			c.Logger.Warn("retrying screener page",
				zap.Int("offset", offset),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			time.Sleep(backoff)
		}

		req, err := http.NewRequest(http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, 0, NewFetchError(http.StatusInternalServerError, err)
		}
		req.Header.Set("User-Agent", browserUserAgent)
		req.Header.Set("Accept", "application/json")
		if c.Config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.Config.APIKey)
		}

		resp, err := c.Client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("screener returned status %d", resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return nil, 0, NewFetchError(resp.StatusCode, lastErr)
		}

		rows, total, err := decodeScreenerPage(body)
		if err != nil {
			return nil, 0, NewFetchError(http.StatusInternalServerError, err)
		}
		return rows, total, nil
	}

	return nil, 0, NewFetchError(http.StatusServiceUnavailable, lastErr)
}

// decodeScreenerPage decodes a page body, giving malformed JSON one repair
// pass before the error becomes fatal. The screener occasionally emits
// truncated or unquoted bodies under load.
func decodeScreenerPage(body []byte) ([]ScreenerRow, int, error) {
	var page screenerResponse
	if err := json.Unmarshal(body, &page); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(string(body))
		if repairErr != nil {
			return nil, 0, fmt.Errorf("failed to decode response: %v", err)
		}
		if err := json.Unmarshal([]byte(repaired), &page); err != nil {
			return nil, 0, fmt.Errorf("failed to decode repaired response: %v", err)
		}
	}
	return page.Data.Rows, page.Data.TotalRecords, nil
}
