package catalogclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ProductCatalog/internal/catalog"
)

var (
	ErrNotFound    = errors.New("catalog product not found")
	ErrBadRequest  = errors.New("catalog rejected request")
	ErrBadStatus   = errors.New("catalog bad status")
	ErrUnavailable = errors.New("catalog unavailable")
)

// Problem is the error body returned by the catalog API.
type Problem struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
}

// ListParams mirrors the listing query string; zero values are omitted so the
// server defaults apply.
type ListParams struct {
	Query    string
	Brand    string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	SortBy   string
	SortDir  string
	Page     *int
	Size     *int
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	set := func(k, s string) {
		if s != "" {
			v.Set(k, s)
		}
	}
	set("q", p.Query)
	set("brand", p.Brand)
	set("category", p.Category)
	set("sortBy", p.SortBy)
	set("sortDir", p.SortDir)
	if p.MinPrice != nil {
		v.Set("minPrice", p.MinPrice.String())
	}
	if p.MaxPrice != nil {
		v.Set("maxPrice", p.MaxPrice.String())
	}
	if p.Page != nil {
		v.Set("page", strconv.Itoa(*p.Page))
	}
	if p.Size != nil {
		v.Set("size", strconv.Itoa(*p.Size))
	}
	return v
}

type Client struct {
	BaseURL string
	Client  *http.Client
}

func New(baseURL string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 3 * time.Second},
	}
}

func (c *Client) ListProducts(ctx context.Context, p ListParams) (catalog.PageResult, error) {
	u := c.BaseURL + "/api/v1/products"
	if q := p.values().Encode(); q != "" {
		u += "?" + q
	}

	var out catalog.PageResult
	if err := c.getJSON(ctx, u, &out); err != nil {
		return catalog.PageResult{}, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	var out catalog.Product
	if err := c.getJSON(ctx, c.BaseURL+"/api/v1/products/"+url.PathEscape(id), &out); err != nil {
		return catalog.Product{}, err
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, readProblem(resp.Body).Detail)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, readProblem(resp.Body).Detail)
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrUnavailable, resp.StatusCode)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func readProblem(r io.Reader) Problem {
	var p Problem
	_ = json.NewDecoder(io.LimitReader(r, 1<<16)).Decode(&p)
	return p
}
