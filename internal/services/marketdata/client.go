package marketdata

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"FundLens/internal/domain/models"
	dservice "FundLens/internal/domain/service"
	apphttp "FundLens/pkg/http"
)

// Client implements a SnapshotProvider backed by the fundamentals HTTP API.
type Client struct {
	baseURL string
	http    *apphttp.Client
}

// New creates a new fundamentals SnapshotProvider.
func New(baseURL string, timeout time.Duration) dservice.SnapshotProvider {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    apphttp.NewClient(apphttp.WithTimeout(timeout)),
	}
}

// snapshotDTO is the provider's wire format. Metrics use the engine's
// vocabulary; a metric the provider cannot compute is null or omitted,
// never zero.
type snapshotDTO struct {
	Ticker          string                `json:"ticker"`
	AsOf            time.Time             `json:"as_of"`
	Metrics         map[string]*float64   `json:"metrics"`
	DividendHistory []models.DividendYear `json:"dividend_history"`
}

// Fetch retrieves fundamentals for a ticker. A 404 maps to
// models.ErrTickerNotFound; any other failure is a ProviderError whose
// Transient flag tells the caller whether a retry can help.
func (c *Client) Fetch(ctx context.Context, ticker string) (*models.TickerSnapshot, error) {
	ticker = strings.ToUpper(ticker)

	var dto snapshotDTO
	err := c.http.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodGet,
		URL:    fmt.Sprintf("%s/v1/fundamentals/%s", c.baseURL, url.PathEscape(ticker)),
	}, &dto)
	if err != nil {
		var se *apphttp.StatusError
		if errors.As(err, &se) {
			if se.Status == 404 {
				return nil, fmt.Errorf("%s: %w", ticker, models.ErrTickerNotFound)
			}
			return nil, &models.ProviderError{
				Ticker:    ticker,
				Transient: se.Status >= 500 || se.Status == 429,
				Err:       err,
			}
		}
		// Network-level failures are worth retrying.
		return nil, &models.ProviderError{Ticker: ticker, Transient: true, Err: err}
	}

	asOf := dto.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	return &models.TickerSnapshot{
		Ticker:          ticker,
		AsOf:            asOf,
		Metrics:         dto.Metrics,
		DividendHistory: dto.DividendHistory,
	}, nil
}
