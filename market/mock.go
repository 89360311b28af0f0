package market

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// StaticProvider serves canned reports keyed by ticker, for tests and
// offline demos. Unknown tickers return ErrUnknownTicker.
type StaticProvider struct {
	Reports map[string]Report
	Err     error
}

// Fetch implements Provider.
func (s *StaticProvider) Fetch(_ context.Context, ticker string) (Report, error) {
	if s.Err != nil {
		return Report{}, s.Err
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	report, ok := s.Reports[ticker]
	if !ok {
		return Report{}, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	return report, nil
}

// SampleReport builds a plausible report for the given ticker, used by
// tests and the offline demo mode.
func SampleReport(ticker string) Report {
	return Report{
		Ticker:    strings.ToUpper(ticker),
		FetchedAt: time.Now().UTC(),
		Company: Company{
			Name:     strings.ToUpper(ticker) + " Inc.",
			Sector:   "Technology",
			Industry: "Consumer Electronics",
		},
		Price: Price{
			Current:       189.50,
			PreviousClose: 187.20,
			DayHigh:       191.00,
			DayLow:        186.75,
			Week52High:    199.62,
			Week52Low:     124.17,
			Volume:        52_000_000,
			AvgVolume:     58_000_000,
		},
		Fundamentals: Fundamentals{
			MarketCap:     2.95e12,
			PERatio:       31.2,
			ForwardPE:     28.4,
			DividendYield: 0.0055,
			Beta:          1.29,
			EPS:           6.08,
			ProfitMargin:  0.253,
		},
		Trend: Trend{
			Return90D:  8.4,
			Volatility: 1.7,
			AvgPrice:   182.30,
		},
		News: []Headline{
			{Title: "Quarterly earnings beat expectations", Publisher: "Newswire"},
			{Title: "New product line announced", Publisher: "Tech Daily"},
		},
	}
}
