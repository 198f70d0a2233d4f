package currency

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/stonksoverwatch/backend/src/logger"
)

const defaultECBBaseURL = "https://data-api.ecb.europa.eu/service/data/EXR"

// ecbResponse mirrors the slice of the ECB data API payload we care about.
type ecbResponse struct {
	DataSets []struct {
		Series map[string]struct {
			Observations map[string][]float64 `json:"observations"`
		} `json:"series"`
	} `json:"dataSets"`
}

// ECBClient resolves daily reference rates against EUR from the ECB data
// API. Results are cached for a day; weekends and holidays fall back to the
// last published rate, walking back up to a week.
type ECBClient struct {
	httpClient *http.Client
	cache      *cache.Cache
	baseURL    string
}

// NewECBClient returns a client with a 24h rate cache.
func NewECBClient() *ECBClient {
	return &ECBClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		cache:      cache.New(24*time.Hour, 48*time.Hour),
		baseURL:    defaultECBBaseURL,
	}
}

// NewECBClientWithBaseURL is used by tests to point at a stub server.
func NewECBClientWithBaseURL(baseURL string) *ECBClient {
	c := NewECBClient()
	c.baseURL = baseURL
	return c
}

// Rate returns the multiplier converting an amount in from into to at the
// given date. ECB publishes CUR-per-EUR series, so arbitrary pairs cross
// through EUR.
func (c *ECBClient) Rate(from, to string, date time.Time) (float64, error) {
	fromRate, err := c.eurRate(from, date)
	if err != nil {
		return 0, err
	}
	toRate, err := c.eurRate(to, date)
	if err != nil {
		return 0, err
	}
	// amount / fromRate = amount in EUR; * toRate = amount in target.
	return toRate / fromRate, nil
}

// eurRate returns units of currency per EUR at or before date.
func (c *ECBClient) eurRate(currency string, date time.Time) (float64, error) {
	if currency == "EUR" {
		return 1.0, nil
	}

	cacheKey := fmt.Sprintf("rate-%s-%s", currency, date.Format("2006-01-02"))
	if rate, found := c.cache.Get(cacheKey); found {
		return rate.(float64), nil
	}

	// Walk back day by day: no rate is published on weekends and holidays.
	for i := 0; i < 7; i++ {
		queryDate := date.AddDate(0, 0, -i)
		dateStr := queryDate.Format("2006-01-02")

		// Key structure is D.{CURRENCY}.EUR.SP00.A for daily rates vs Euro.
		seriesKey := fmt.Sprintf("D.%s.EUR.SP00.A", currency)
		url := fmt.Sprintf("%s/%s?startPeriod=%s&endPeriod=%s&format=jsondata",
			c.baseURL, seriesKey, dateStr, dateStr)

		resp, err := c.httpClient.Get(url)
		if err != nil {
			logger.L.Warn("Failed to make ECB API request", "url", url, "error", err)
			continue
		}

		if resp.StatusCode == http.StatusNotFound {
			resp.Body.Close()
			logger.L.Debug("No exchange rate found for date, trying previous day", "currency", currency, "date", dateStr)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			logger.L.Warn("ECB API returned non-OK status", "status", resp.Status, "url", url)
			continue
		}

		var payload ecbResponse
		err = json.NewDecoder(resp.Body).Decode(&payload)
		resp.Body.Close()
		if err != nil {
			logger.L.Warn("Failed to decode ECB API response", "url", url, "error", err)
			continue
		}

		rate, err := extractRate(payload)
		if err != nil {
			logger.L.Warn("Could not extract rate from ECB response", "date", dateStr, "error", err)
			continue
		}

		c.cache.Set(cacheKey, rate, cache.DefaultExpiration)
		return rate, nil
	}

	return 0, fmt.Errorf("exchange rate not found for %s on or before %s", currency, date.Format("2006-01-02"))
}

// extractRate safely navigates the ECB JSON structure to find the rate.
func extractRate(data ecbResponse) (float64, error) {
	if len(data.DataSets) == 0 {
		return 0, fmt.Errorf("no dataSets in response")
	}
	// The series key is "0:0:0:0:0"; iterate to be safe.
	for _, seriesData := range data.DataSets[0].Series {
		if observations, ok := seriesData.Observations["0"]; ok && len(observations) > 0 {
			return observations[0], nil
		}
	}
	return 0, fmt.Errorf("observation value not found in the expected structure")
}
