package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound reports a product id the API does not know.
var ErrNotFound = errors.New("product not found")

// StatusError is a non-2xx API response.
type StatusError struct {
	Path string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.Path, e.Code)
}

// Is makes a 404 match ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// Querier is the read side of the catalog API. It is implemented by *Client
// and by catalogtest.Fake.
type Querier interface {
	QueryProducts(ctx context.Context, query ListQuery) (ProductList, error)
	QueryProduct(ctx context.Context, id string) (*Product, error)
	FetchCategories(ctx context.Context) (Categories, error)
}

// Ensure Client implements Querier at compile time.
var _ Querier = (*Client)(nil)

// Client talks to the product API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:7490"
	defaultUserAgent = "shopfront/0.1"
	requestTimeout   = 10 * time.Second
)

// NewClient builds a Client for apiURL, which may be a bare host:port.
func NewClient(apiURL string) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalised API origin.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// QueryProducts retrieves one page of products.
func (c *Client) QueryProducts(ctx context.Context, query ListQuery) (ProductList, error) {
	if c == nil {
		return ProductList{}, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(query.Limit))
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		values.Set("search", search)
	}
	if cat := strings.TrimSpace(query.Category1); cat != "" {
		values.Set("category1", cat)
	}
	if cat := strings.TrimSpace(query.Category2); cat != "" {
		values.Set("category2", cat)
	}
	if sort := strings.TrimSpace(query.Sort); sort != "" {
		values.Set("sort", sort)
	}
	rel := &url.URL{Path: "/api/products", RawQuery: values.Encode()}
	var payload ProductList
	if err := c.doURL(ctx, http.MethodGet, rel, &payload); err != nil {
		return ProductList{}, err
	}
	return payload, nil
}

// QueryProduct retrieves one product with its detail fields.
func (c *Client) QueryProduct(ctx context.Context, id string) (*Product, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("product id required")
	}
	var payload Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+id, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// FetchCategories retrieves the category tree.
func (c *Client) FetchCategories(ctx context.Context) (Categories, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload Categories
	if err := c.do(ctx, http.MethodGet, "/api/categories", &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &StatusError{Path: rel.Path, Code: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
