// Package market fetches and formats equity research data: quote, company
// profile, fundamentals, 90-day trend, and recent headlines.
package market

import "time"

// Company holds descriptive company metadata.
type Company struct {
	Name        string `json:"name"`
	Sector      string `json:"sector,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
}

// Price holds current quote data.
type Price struct {
	Current       float64 `json:"current"`
	PreviousClose float64 `json:"previous_close"`
	DayHigh       float64 `json:"day_high"`
	DayLow        float64 `json:"day_low"`
	Week52High    float64 `json:"week52_high"`
	Week52Low     float64 `json:"week52_low"`
	Volume        int64   `json:"volume"`
	AvgVolume     int64   `json:"avg_volume"`
}

// Fundamentals holds valuation and profitability metrics. Zero values mean
// the metric was unavailable for the instrument.
type Fundamentals struct {
	MarketCap     float64 `json:"market_cap"`
	PERatio       float64 `json:"pe_ratio"`
	ForwardPE     float64 `json:"forward_pe"`
	DividendYield float64 `json:"dividend_yield"`
	Beta          float64 `json:"beta"`
	EPS           float64 `json:"eps"`
	ProfitMargin  float64 `json:"profit_margin"`
	RevenueGrowth float64 `json:"revenue_growth"`
}

// Trend summarizes the last 90 days of price history.
type Trend struct {
	// Return90D is the 90-day price return in percent.
	Return90D float64 `json:"return_90d"`

	// Volatility is the standard deviation of daily returns in percent.
	Volatility float64 `json:"volatility"`

	// AvgPrice is the mean close over the window.
	AvgPrice float64 `json:"avg_price"`
}

// Headline is one recent news item.
type Headline struct {
	Title     string `json:"title"`
	Publisher string `json:"publisher,omitempty"`
	Link      string `json:"link,omitempty"`
}

// Report is the full research payload for one ticker.
type Report struct {
	Ticker       string       `json:"ticker"`
	FetchedAt    time.Time    `json:"fetched_at"`
	Company      Company      `json:"company"`
	Price        Price        `json:"price"`
	Fundamentals Fundamentals `json:"fundamentals"`
	Trend        Trend        `json:"trend"`
	News         []Headline   `json:"news,omitempty"`
}
