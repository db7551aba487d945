// Package catalog searches the WooCommerce storefront by keyword.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// ErrUnavailable wraps every transport, status or decoding failure.
var ErrUnavailable = eris.New("catalog unavailable")

const (
	defaultTimeout = 15 * time.Second
	defaultPerPage = 10
	productsPath   = "/wp-json/wc/v3/products"
	userAgent      = "storebot/1.0"
	maxErrorBody   = 512
)

// Searcher is the narrow interface the query pipeline depends on.
type Searcher interface {
	Search(ctx context.Context, keyword string) ([]Product, error)
}

// ClientOptions configures the WooCommerce client.
type ClientOptions struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	PerPage        int
	Timeout        time.Duration
	HTTPClient     *http.Client
	Logger         *logrus.Logger
}

// Client talks to the WooCommerce REST API (v3).
type Client struct {
	httpClient *http.Client
	endpoint   string
	domain     string
	key        string
	secret     string
	perPage    int
	logger     *logrus.Logger
}

var _ Searcher = (*Client)(nil)

// NewClient validates opts and builds a client.
func NewClient(opts ClientOptions) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, eris.New("storefront base url is required")
	}

	parsed, err := url.Parse(base)
	if err != nil {
		return nil, eris.Wrapf(err, "parsing storefront base url: %s", base)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, eris.Errorf("storefront base url must be absolute: %s", base)
	}

	if strings.TrimSpace(opts.ConsumerKey) == "" || strings.TrimSpace(opts.ConsumerSecret) == "" {
		return nil, eris.New("storefront consumer key and secret are required")
	}

	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient: httpClient,
		endpoint:   base + productsPath,
		domain:     parsed.Host,
		key:        opts.ConsumerKey,
		secret:     opts.ConsumerSecret,
		perPage:    perPage,
		logger:     opts.Logger,
	}, nil
}

// Domain returns the storefront host, used to build customer-facing search links.
func (c *Client) Domain() string {
	return c.domain
}

// Search returns the products matching keyword in storefront order. An empty
// result is not an error.
func (c *Client) Search(ctx context.Context, keyword string) ([]Product, error) {
	trimmed := strings.TrimSpace(keyword)
	if trimmed == "" {
		return nil, eris.New("search keyword is required")
	}

	params := url.Values{}
	params.Set("search", trimmed)
	params.Set("per_page", strconv.Itoa(c.perPage))
	reqURL := fmt.Sprintf("%s?%s", c.endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "building catalog request")
	}
	req.SetBasicAuth(c.key, c.secret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logError(logrus.Fields{"keyword": trimmed}, err, "catalog request failed")
		return nil, eris.Wrapf(ErrUnavailable, "requesting products: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err := eris.Wrapf(ErrUnavailable, "unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		c.logError(logrus.Fields{"keyword": trimmed, "status": resp.StatusCode}, err, "catalog returned error status")
		return nil, err
	}

	var records []productRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		c.logError(logrus.Fields{"keyword": trimmed}, err, "decoding catalog response")
		return nil, eris.Wrapf(ErrUnavailable, "decoding products: %v", err)
	}

	products := make([]Product, 0, len(records))
	for _, record := range records {
		products = append(products, record.toProduct())
	}

	if c.logger != nil {
		c.logger.WithFields(logrus.Fields{"keyword": trimmed, "count": len(products)}).Debug("catalog search completed")
	}

	return products, nil
}

func (c *Client) logError(fields logrus.Fields, err error, message string) {
	if c.logger == nil || err == nil {
		return
	}

	entry := c.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Error(message)
}
