package market

import (
	"context"
	"errors"
)

// ErrUnknownTicker indicates the data source has no instrument for the
// requested symbol.
var ErrUnknownTicker = errors.New("unknown ticker symbol")

// Provider fetches research data for a ticker. Implementations must be safe
// for concurrent use.
type Provider interface {
	Fetch(ctx context.Context, ticker string) (Report, error)
}
