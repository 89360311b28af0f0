package market

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches research data from the Yahoo Finance public API.
//
// Three endpoints are combined into one Report: /v7/finance/quote for price
// and fundamentals, /v8/finance/chart for the 90-day trend, and
// /v1/finance/search for recent headlines. Quote failure is fatal; missing
// trend or news degrades the report rather than failing the fetch, matching
// what a human researcher would accept.
type YahooProvider struct {
	client  *http.Client
	baseURL string
}

// YahooOption configures a YahooProvider.
type YahooOption func(*YahooProvider)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) YahooOption {
	return func(p *YahooProvider) { p.client = client }
}

// WithBaseURL points the provider at a different host, used by tests to
// target an httptest server.
func WithBaseURL(base string) YahooOption {
	return func(p *YahooProvider) { p.baseURL = strings.TrimRight(base, "/") }
}

// NewYahooProvider creates a provider with a 15 second request timeout.
func NewYahooProvider(opts ...YahooOption) *YahooProvider {
	p := &YahooProvider{
		client:  &http.Client{Timeout: 15 * time.Second},
		baseURL: defaultYahooBaseURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			LongName                   string  `json:"longName"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
			RegularMarketDayHigh       float64 `json:"regularMarketDayHigh"`
			RegularMarketDayLow        float64 `json:"regularMarketDayLow"`
			FiftyTwoWeekHigh           float64 `json:"fiftyTwoWeekHigh"`
			FiftyTwoWeekLow            float64 `json:"fiftyTwoWeekLow"`
			RegularMarketVolume        int64   `json:"regularMarketVolume"`
			AverageDailyVolume3Month   int64   `json:"averageDailyVolume3Month"`
			MarketCap                  float64 `json:"marketCap"`
			TrailingPE                 float64 `json:"trailingPE"`
			ForwardPE                  float64 `json:"forwardPE"`
			DividendYield              float64 `json:"dividendYield"`
			EpsTrailingTwelveMonths    float64 `json:"epsTrailingTwelveMonths"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Indicators struct {
				Quote []struct {
					Close []float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

type yahooSearchResponse struct {
	News []struct {
		Title     string `json:"title"`
		Publisher string `json:"publisher"`
		Link      string `json:"link"`
	} `json:"news"`
}

// Fetch implements Provider.
func (p *YahooProvider) Fetch(ctx context.Context, ticker string) (Report, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return Report{}, fmt.Errorf("%w: empty symbol", ErrUnknownTicker)
	}

	report := Report{Ticker: ticker, FetchedAt: time.Now().UTC()}

	if err := p.fetchQuote(ctx, ticker, &report); err != nil {
		return Report{}, err
	}

	// Trend and news are best-effort.
	_ = p.fetchTrend(ctx, ticker, &report)
	_ = p.fetchNews(ctx, ticker, &report)

	return report, nil
}

func (p *YahooProvider) fetchQuote(ctx context.Context, ticker string, report *Report) error {
	var decoded yahooQuoteResponse
	endpoint := p.baseURL + "/v7/finance/quote?symbols=" + url.QueryEscape(ticker)
	if err := p.getJSON(ctx, endpoint, &decoded); err != nil {
		return fmt.Errorf("quote fetch for %s: %w", ticker, err)
	}
	if len(decoded.QuoteResponse.Result) == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}

	q := decoded.QuoteResponse.Result[0]
	if q.RegularMarketPrice == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}

	report.Company.Name = q.LongName
	report.Price = Price{
		Current:       q.RegularMarketPrice,
		PreviousClose: q.RegularMarketPreviousClose,
		DayHigh:       q.RegularMarketDayHigh,
		DayLow:        q.RegularMarketDayLow,
		Week52High:    q.FiftyTwoWeekHigh,
		Week52Low:     q.FiftyTwoWeekLow,
		Volume:        q.RegularMarketVolume,
		AvgVolume:     q.AverageDailyVolume3Month,
	}
	report.Fundamentals = Fundamentals{
		MarketCap:     q.MarketCap,
		PERatio:       q.TrailingPE,
		ForwardPE:     q.ForwardPE,
		DividendYield: q.DividendYield,
		EPS:           q.EpsTrailingTwelveMonths,
	}
	return nil
}

func (p *YahooProvider) fetchTrend(ctx context.Context, ticker string, report *Report) error {
	var decoded yahooChartResponse
	endpoint := p.baseURL + "/v8/finance/chart/" + url.PathEscape(ticker) + "?range=3mo&interval=1d"
	if err := p.getJSON(ctx, endpoint, &decoded); err != nil {
		return err
	}
	if len(decoded.Chart.Result) == 0 || len(decoded.Chart.Result[0].Indicators.Quote) == 0 {
		return fmt.Errorf("no chart data for %s", ticker)
	}

	// Drop zero entries: Yahoo reports null closes for halted days.
	var closes []float64
	for _, c := range decoded.Chart.Result[0].Indicators.Quote[0].Close {
		if c > 0 {
			closes = append(closes, c)
		}
	}
	report.Trend = computeTrend(closes)
	return nil
}

func (p *YahooProvider) fetchNews(ctx context.Context, ticker string, report *Report) error {
	var decoded yahooSearchResponse
	endpoint := p.baseURL + "/v1/finance/search?q=" + url.QueryEscape(ticker)
	if err := p.getJSON(ctx, endpoint, &decoded); err != nil {
		return err
	}

	// Top 5 articles, as much as a reviewer will read.
	for i, item := range decoded.News {
		if i == 5 {
			break
		}
		report.News = append(report.News, Headline{
			Title:     item.Title,
			Publisher: item.Publisher,
			Link:      item.Link,
		})
	}
	return nil
}

func (p *YahooProvider) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "stockintel/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrUnknownTicker
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// computeTrend derives return, volatility and mean price from a close
// series ordered oldest first.
func computeTrend(closes []float64) Trend {
	if len(closes) == 0 {
		return Trend{}
	}

	var sum float64
	for _, c := range closes {
		sum += c
	}
	trend := Trend{
		Return90D: (closes[len(closes)-1] - closes[0]) / closes[0] * 100,
		AvgPrice:  sum / float64(len(closes)),
	}

	if len(closes) > 1 {
		returns := make([]float64, 0, len(closes)-1)
		var mean float64
		for i := 1; i < len(closes); i++ {
			r := (closes[i] - closes[i-1]) / closes[i-1]
			returns = append(returns, r)
			mean += r
		}
		mean /= float64(len(returns))

		var variance float64
		for _, r := range returns {
			variance += (r - mean) * (r - mean)
		}
		variance /= float64(len(returns))
		trend.Volatility = math.Sqrt(variance) * 100
	}

	return trend
}
