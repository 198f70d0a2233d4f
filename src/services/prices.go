package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/net/publicsuffix"

	"github.com/username/stonksoverwatch/backend/src/logger"
)

const yahooUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Listings that Yahoo search resolves badly; mapped by hand.
var manualTickerOverrides = map[string]string{
	"IE00BK5BQT80": "VWRA.L",
}

type yahooSearchResponse struct {
	Quotes []struct {
		Symbol    string `json:"symbol"`
		Exchange  string `json:"exchange"`
		QuoteType string `json:"quoteType"`
		Currency  string `json:"currency"`
	} `json:"quotes"`
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"chart"`
}

type yahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile struct {
				Sector   string `json:"sector"`
				Industry string `json:"industry"`
			} `json:"assetProfile"`
			FundProfile struct {
				CategoryName string `json:"categoryName"`
			} `json:"fundProfile"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"quoteSummary"`
}

// SecurityProfile is what the dashboard needs to classify a holding.
type SecurityProfile struct {
	Ticker   string
	Sector   string
	Industry string
}

// MarketDataService resolves ISINs to listed tickers and fetches spot
// prices and sector profiles from Yahoo Finance. Yahoo requires a cookie
// session plus a "crumb" token, refreshed on 401.
type MarketDataService struct {
	httpClient http.Client
	cache      *gocache.Cache
	baseURL    string
	warmupURLs []string

	mu            sync.Mutex
	crumb         string
	isInitialized bool
}

func NewMarketDataService() *MarketDataService {
	s := newMarketDataService("https://query1.finance.yahoo.com")
	s.warmupURLs = []string{"https://fc.yahoo.com", "https://finance.yahoo.com"}
	go s.initializeSession()
	return s
}

// NewMarketDataServiceWithBaseURL points every endpoint at an alternate
// host, for stubbing the Yahoo API in tests. The session is initialized
// lazily on first use.
func NewMarketDataServiceWithBaseURL(baseURL string) *MarketDataService {
	return newMarketDataService(baseURL)
}

func newMarketDataService(baseURL string) *MarketDataService {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}

	return &MarketDataService{
		httpClient: http.Client{Jar: jar, Timeout: 20 * time.Second},
		cache:      gocache.New(24*time.Hour, 48*time.Hour),
		baseURL:    baseURL,
	}
}

func (s *MarketDataService) initializeSession() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isInitialized && s.crumb != "" {
		return
	}

	logger.L.Info("Initializing Yahoo Finance session")

	for _, url := range s.warmupURLs {
		req, _ := http.NewRequest("GET", url, nil)
		req.Header.Set("User-Agent", yahooUserAgent)
		if resp, err := s.httpClient.Do(req); err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}

	req, _ := http.NewRequest("GET", s.baseURL+"/v1/test/getcrumb", nil)
	req.Header.Set("User-Agent", yahooUserAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.L.Error("Failed to fetch Yahoo crumb", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.L.Warn("Failed to fetch Yahoo crumb", "status", resp.Status)
		return
	}
	body, _ := io.ReadAll(resp.Body)
	s.crumb = string(body)
	s.isInitialized = true
	logger.L.Info("Yahoo session initialized")
}

func (s *MarketDataService) ensureSession() {
	s.mu.Lock()
	needsInit := !s.isInitialized || s.crumb == ""
	s.mu.Unlock()
	if needsInit {
		s.initializeSession()
	}
}

func (s *MarketDataService) invalidateSession() {
	s.mu.Lock()
	s.isInitialized = false
	s.mu.Unlock()
}

// crumbToken snapshots the crumb under the lock; callers format the copy
// into URLs instead of racing a concurrent session refresh.
func (s *MarketDataService) crumbToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.crumb
}

// Profile resolves an ISIN to its listing and sector classification.
// Results are cached for a day; lookups for the same ISIN within that
// window never hit the network twice.
func (s *MarketDataService) Profile(isin string) (SecurityProfile, error) {
	if cached, found := s.cache.Get("profile:" + isin); found {
		return cached.(SecurityProfile), nil
	}
	s.ensureSession()

	ticker, err := s.tickerForISIN(isin)
	if err != nil {
		return SecurityProfile{}, err
	}
	sector, industry, err := s.fetchProfile(ticker)
	if err != nil {
		return SecurityProfile{}, err
	}

	profile := SecurityProfile{Ticker: ticker, Sector: sector, Industry: industry}
	s.cache.SetDefault("profile:"+isin, profile)
	return profile, nil
}

// SpotPrice fetches the current market price for a ticker. Cached for an
// hour so dashboard refreshes don't hammer the chart endpoint.
func (s *MarketDataService) SpotPrice(ticker string) (float64, string, error) {
	type quote struct {
		Price    float64
		Currency string
	}
	if cached, found := s.cache.Get("spot:" + ticker); found {
		q := cached.(quote)
		return q.Price, q.Currency, nil
	}
	s.ensureSession()

	url := fmt.Sprintf("%s/v8/finance/chart/%s?crumb=%s", s.baseURL, ticker, s.crumbToken())
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("User-Agent", yahooUserAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("calling Yahoo chart API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		s.invalidateSession()
		return 0, "", fmt.Errorf("yahoo chart API: crumb rejected")
	}
	if resp.StatusCode != http.StatusOK {
		return 0, "", fmt.Errorf("yahoo chart API returned status %d", resp.StatusCode)
	}

	var data yahooChartResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return 0, "", fmt.Errorf("decoding Yahoo chart response: %w", err)
	}
	if data.Chart.Error != nil {
		return 0, "", fmt.Errorf("yahoo chart API error: %v", data.Chart.Error)
	}
	if len(data.Chart.Result) == 0 || data.Chart.Result[0].Meta.RegularMarketPrice == 0 {
		return 0, "", fmt.Errorf("no price data for %s", ticker)
	}

	meta := data.Chart.Result[0].Meta
	s.cache.Set("spot:"+ticker, quote{Price: meta.RegularMarketPrice, Currency: meta.Currency}, time.Hour)
	return meta.RegularMarketPrice, meta.Currency, nil
}

func (s *MarketDataService) tickerForISIN(isin string) (string, error) {
	if len(isin) != 12 {
		return "", fmt.Errorf("invalid ISIN length: %s", isin)
	}
	if ticker, ok := manualTickerOverrides[isin]; ok {
		return ticker, nil
	}

	url := fmt.Sprintf("%s/v1/finance/search?q=%s&quotesCount=1&lang=en-US", s.baseURL, isin)
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", yahooUserAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling Yahoo search API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("yahoo search API returned status %d", resp.StatusCode)
	}
	var data yahooSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decoding Yahoo search response: %w", err)
	}
	if len(data.Quotes) == 0 || data.Quotes[0].Symbol == "" {
		return "", fmt.Errorf("no ticker found for ISIN %s", isin)
	}
	return data.Quotes[0].Symbol, nil
}

func (s *MarketDataService) fetchProfile(ticker string) (string, string, error) {
	url := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=assetProfile,fundProfile&crumb=%s", s.baseURL, ticker, s.crumbToken())
	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return "", "", err
	}
	req.Header.Set("User-Agent", yahooUserAgent)
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		s.invalidateSession()
		return "", "", fmt.Errorf("yahoo quoteSummary API: crumb rejected")
	}
	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("yahoo quoteSummary API returned status %d", resp.StatusCode)
	}

	var data yahooQuoteSummaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", "", err
	}
	if len(data.QuoteSummary.Result) == 0 {
		return "", "", fmt.Errorf("no profile for %s", ticker)
	}

	res := data.QuoteSummary.Result[0]
	sector := res.AssetProfile.Sector
	industry := res.AssetProfile.Industry
	if sector == "" && res.FundProfile.CategoryName != "" {
		sector = res.FundProfile.CategoryName
		industry = "ETF"
	}
	return strings.TrimSpace(sector), strings.TrimSpace(industry), nil
}
