// Package dolarapi fetches the official and MEP dollar rates from dolarapi.com.
package dolarapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/proyectofinalunicorn/Proyecto-Final/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultURL lists every dollar quote.
const DefaultURL = "https://dolarapi.com/v1/dolares"

// Labels ("casa") of the two series the valuation needs.
const (
	CasaOficial = "oficial"
	CasaBolsa   = "bolsa"
)

const op = "dolarapi.get_rates"

// Quote is one element of the /v1/dolares response.
type Quote struct {
	Casa               string   `json:"casa"`
	Nombre             string   `json:"nombre"`
	Moneda             string   `json:"moneda"`
	Compra             *float64 `json:"compra"`
	Venta              *float64 `json:"venta"`
	FechaActualizacion string   `json:"fechaActualizacion"`
}

// Client for dolarapi.com
type Client struct {
	url    string
	client *http.Client
	now    func() time.Time
	log    zerolog.Logger
}

// NewClient creates a new dolarapi.com client
func NewClient(url string, timeout time.Duration, log zerolog.Logger) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
		now:    time.Now,
		log:    log.With().Str("client", "dolarapi").Logger(),
	}
}

// GetRates returns the selling price of the official and bolsa (MEP) dollars.
// There is no partial result: any failure fails the whole call.
func (c *Client) GetRates(ctx context.Context) (domain.RatePair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return domain.RatePair{}, domain.NewError(domain.KindRatesUnavailable, op, "", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug().Str("url", c.url).Msg("Fetching rates")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.RatePair{}, domain.NewError(domain.KindRatesUnavailable, op, "",
			fmt.Errorf("API request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.RatePair{}, domain.Errorf(domain.KindRatesUnavailable, op,
			"API returned status %d", resp.StatusCode)
	}

	var quotes []Quote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return domain.RatePair{}, domain.NewError(domain.KindRatesUnavailable, op, "",
			fmt.Errorf("failed to parse response: %w", err))
	}

	oficial, err := sellingPrice(quotes, CasaOficial)
	if err != nil {
		return domain.RatePair{}, err
	}
	mep, err := sellingPrice(quotes, CasaBolsa)
	if err != nil {
		return domain.RatePair{}, err
	}

	pair := domain.RatePair{
		Date:    domain.Day(c.now()),
		Oficial: oficial,
		MEP:     mep,
	}

	c.log.Info().
		Float64("oficial", pair.Oficial).
		Float64("mep", pair.MEP).
		Msg("Fetched rates")

	return pair, nil
}

// sellingPrice picks the "venta" value of the first quote labelled casa.
func sellingPrice(quotes []Quote, casa string) (float64, error) {
	for _, q := range quotes {
		if q.Casa != casa {
			continue
		}
		if q.Venta == nil || *q.Venta <= 0 {
			return 0, domain.Errorf(domain.KindRatesUnavailable, op, "casa %q has no selling price", casa)
		}
		return *q.Venta, nil
	}
	return 0, domain.Errorf(domain.KindRatesUnavailable, op, "casa %q not found in response", casa)
}
