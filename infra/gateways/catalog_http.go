package gateways

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/harvicreates/inventory/domain/reservation"
	"github.com/harvicreates/inventory/infra"
	"github.com/harvicreates/inventory/protocols"
)

var (
	MAX_RETRIES = 5
	BASE_DELAY  = 1 * time.Second
)

// CatalogHTTP talks to a remote products API. Stock reads are retried with
// exponential backoff on retriable errors; decrements are not, since a
// duplicate decrement is worse than a failed one.
type CatalogHTTP struct {
	baseURL    string
	httpClient *http.Client
	sleeper    protocols.Sleeper
}

func NewCatalogHTTP(baseURL string, httpClient *http.Client, sleeper protocols.Sleeper) *CatalogHTTP {
	return &CatalogHTTP{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		sleeper:    sleeper,
	}
}

type productResponse struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	StockQuantity int32  `json:"stockQuantity"`
}

type decrementRequest struct {
	Quantity int32 `json:"quantity"`
}

func (c *CatalogHTTP) GetStock(ctx context.Context, productID string) (*protocols.Product, error) {
	var lastError error
	for i := 0; i < MAX_RETRIES; i++ {
		product, err := c.getStockOnce(ctx, productID)
		if err == nil {
			return product, nil
		}
		if !infra.IsRetriable(err) {
			return nil, err
		}
		lastError = err

		secRetry := math.Pow(2, float64(i))
		c.sleeper.Sleep(time.Duration(secRetry) * BASE_DELAY)
	}
	return nil, fmt.Errorf("%w: %v", reservation.ErrRemoteUnavailable, lastError)
}

func (c *CatalogHTTP) getStockOnce(ctx context.Context, productID string) (*protocols.Product, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	url := fmt.Sprintf("%s/products/%s", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, infra.NewNetworkError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, reservation.ErrProductNotFound
	}
	if resp.StatusCode == http.StatusGatewayTimeout {
		return nil, infra.NewTimeoutError("timeout fetching product stock")
	}
	if resp.StatusCode >= 500 && resp.StatusCode <= 599 {
		return nil, infra.NewNetworkError("network error fetching product stock")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", reservation.ErrRemoteUnavailable, resp.StatusCode)
	}

	var product productResponse
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, err
	}
	return &protocols.Product{
		ID:            product.ID,
		Title:         product.Title,
		StockQuantity: product.StockQuantity,
	}, nil
}

func (c *CatalogHTTP) DecrementStock(ctx context.Context, productID string, quantity int32) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	payload := decrementRequest{Quantity: quantity}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/products/%s/decrement", c.baseURL, productID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", reservation.ErrStockUpdateFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return reservation.ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: product %s", reservation.ErrStockUpdateFailed, productID)
	}
	return nil
}
