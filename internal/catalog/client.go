// Package catalog fetches product attributes from the external product
// catalog and turns them into the lookup used for enrichment.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/zoyaahmed04/sales-analytics-system/internal/models"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/errors"
	"github.com/zoyaahmed04/sales-analytics-system/pkg/logger"
)

// maxResponseBytes caps how much of a catalog response is read
const maxResponseBytes = 10 << 20

// Config holds the catalog endpoint settings
type Config struct {
	BaseURL string        `json:"base_url"`
	Limit   int           `json:"limit"`
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns the public demo catalog settings
func DefaultConfig() *Config {
	return &Config{
		BaseURL: "https://dummyjson.com/products",
		Limit:   100,
		Timeout: 10 * time.Second,
	}
}

// Validate checks the catalog configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "catalog-url", c.BaseURL, nil)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "catalog-url", c.BaseURL, err)
	}
	if c.Limit <= 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "catalog-limit", c.Limit, nil)
	}
	if c.Timeout <= 0 {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "catalog-timeout", c.Timeout, nil)
	}
	return nil
}

// Endpoint returns the request URL including the limit parameter
func (c *Config) Endpoint() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return c.BaseURL
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(c.Limit))
	u.RawQuery = q.Encode()
	return u.String()
}

// Client talks to the product catalog over HTTP
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     logger.Logger
}

// NewClient creates a catalog client. A nil httpClient uses a default client.
func NewClient(config *Config, httpClient *http.Client) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		config:     config,
		httpClient: httpClient,
		logger:     logger.GetGlobalLogger().WithComponent("catalog"),
	}, nil
}

// wire shapes; pointers distinguish missing keys from zero values
type productsResponse struct {
	Products []productPayload `json:"products"`
}

type productPayload struct {
	ID       json.RawMessage `json:"id"`
	Title    *string         `json:"title"`
	Category *string         `json:"category"`
	Brand    *string         `json:"brand"`
	Price    *float64        `json:"price"`
	Rating   *float64        `json:"rating"`
}

// FetchProducts downloads the catalog. Products without a usable integer id
// are dropped individually.
func (c *Client) FetchProducts(ctx context.Context) ([]models.CatalogProduct, error) {
	endpoint := c.config.Endpoint()
	op := logger.NewOperationLogger("fetch_catalog", c.logger).WithField("endpoint", endpoint)

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.CatalogError(errors.CodeConnectionFailed, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		op.Error(err, "Catalog request failed")
		return nil, errors.CatalogError(errors.CodeConnectionFailed, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("unexpected status %s", resp.Status)
		op.Error(err, "Catalog returned an error status")
		return nil, errors.CatalogError(errors.CodeBadStatus, endpoint, err).
			WithContext("status_code", resp.StatusCode)
	}

	var payload productsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		op.Error(err, "Catalog response could not be decoded")
		return nil, errors.CatalogError(errors.CodeInvalidResponse, endpoint, err)
	}

	products := make([]models.CatalogProduct, 0, len(payload.Products))
	skipped := 0
	for _, p := range payload.Products {
		id, ok := productID(p.ID)
		if !ok {
			skipped++
			continue
		}
		products = append(products, models.CatalogProduct{
			ID:       id,
			Title:    deref(p.Title),
			Category: deref(p.Category),
			Brand:    deref(p.Brand),
			Price:    derefFloat(p.Price),
			Rating:   derefFloat(p.Rating),
		})
	}

	if skipped > 0 {
		op.WithField("skipped", skipped).Warning("Catalog products without a usable id were dropped")
	}
	op.WithField("products", len(products)).Success("Catalog fetched")
	return products, nil
}

// CreateProductMapping indexes products by id. Later duplicates win.
func CreateProductMapping(products []models.CatalogProduct) models.ProductMapping {
	mapping := make(models.ProductMapping, len(products))
	for _, p := range products {
		mapping[p.ID] = models.ProductInfo{
			Title:    p.Title,
			Category: p.Category,
			Brand:    p.Brand,
			Rating:   p.Rating,
		}
	}
	return mapping
}

// productID reads an integral id. Missing, null, fractional and
// non-numeric ids are rejected so that only that product is dropped.
func productID(raw json.RawMessage) (int, bool) {
	var n json.Number
	if len(raw) == 0 || json.Unmarshal(raw, &n) != nil || n == "" {
		return 0, false
	}
	if id, err := strconv.Atoi(n.String()); err == nil {
		return id, true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, false
	}
	return int(f), true
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefFloat(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
