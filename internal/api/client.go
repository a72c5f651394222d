package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrUnauthorized is returned whenever the remote API rejects the stored
// credential. Adapters react by discarding the session and forcing re-login.
var ErrUnauthorized = errors.New("remote API rejected credentials")

// APIError carries a non-2xx response from the remote API.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("remote API error %d: %s", e.Status, e.Detail)
}

// Client talks to the remote back-office API. Every call after login carries
// the session's bearer token. Calls are fire-and-await: no retries, no
// client-side cancellation once a request is issued.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// NewClient builds a client rooted at baseURL, authenticating from session.
func NewClient(baseURL string, session *Session) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		session: session,
	}
}

// Session exposes the session object the client authenticates from.
func (c *Client) Session() *Session {
	return c.session
}

// do issues one request and decodes the JSON response into out (if non-nil).
// A 401 maps to ErrUnauthorized; other non-2xx statuses map to *APIError
// carrying the server's detail message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		buf = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s %s: %w", method, path, ErrUnauthorized)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var detail struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&detail)
		if detail.Detail == "" {
			detail.Detail = resp.Status
		}
		return &APIError{Status: resp.StatusCode, Detail: detail.Detail}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

// ── Authentication ────────────────────────────────────────────────────────────

type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// Login authenticates against the remote API and establishes the session on
// success. The session is the only state mutated.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	c.session.Establish(resp.AccessToken, resp.User)
	return &resp.User, nil
}

// Me validates the stored token against the remote API. An ErrUnauthorized
// result means the token is no longer good and the session must be cleared.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ── Generic entity operations (entity manager substrate) ─────────────────────

// ListRecords fetches every record of a collection endpoint, e.g. "/vendors".
func (c *Client) ListRecords(ctx context.Context, endpoint string) ([]Record, error) {
	var recs []Record
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// CreateRecord posts a new record to a collection endpoint.
func (c *Client) CreateRecord(ctx context.Context, endpoint string, payload Record) (Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodPost, endpoint, payload, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateRecord replaces an existing record.
func (c *Client) UpdateRecord(ctx context.Context, endpoint, id string, payload Record) (Record, error) {
	var rec Record
	if err := c.do(ctx, http.MethodPut, endpoint+"/"+id, payload, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteRecord removes a record by id.
func (c *Client) DeleteRecord(ctx context.Context, endpoint, id string) error {
	return c.do(ctx, http.MethodDelete, endpoint+"/"+id, nil, nil)
}

// ── Typed reads ──────────────────────────────────────────────────────────────

// Vendors returns the vendor master list.
func (c *Client) Vendors(ctx context.Context) ([]Vendor, error) {
	var out []Vendor
	if err := c.do(ctx, http.MethodGet, "/vendors", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Customers returns the customer master list.
func (c *Client) Customers(ctx context.Context) ([]Customer, error) {
	var out []Customer
	if err := c.do(ctx, http.MethodGet, "/customers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Products returns the current product catalog.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Sales returns persisted sales, newest first (server ordering).
func (c *Client) Sales(ctx context.Context) ([]Sale, error) {
	var out []Sale
	if err := c.do(ctx, http.MethodGet, "/sales", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Sale returns one persisted sale by id. The remote API has no single-sale
// endpoint, so this filters the list fetch.
func (c *Client) Sale(ctx context.Context, id string) (*Sale, error) {
	sales, err := c.Sales(ctx)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		if sales[i].ID == id {
			return &sales[i], nil
		}
	}
	return nil, fmt.Errorf("sale %s not found", id)
}

// CreateSale submits a composed order atomically. The server verifies stock,
// decrements quantities, resolves the customer name, and assigns the
// authoritative total.
func (c *Client) CreateSale(ctx context.Context, input SaleInput) (*Sale, error) {
	var sale Sale
	if err := c.do(ctx, http.MethodPost, "/sales", input, &sale); err != nil {
		return nil, err
	}
	return &sale, nil
}

// ── Reports and company profile ──────────────────────────────────────────────

// DashboardStats returns the pre-aggregated dashboard summary.
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var s DashboardStats
	if err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Stock returns the current stock valuation report.
func (c *Client) Stock(ctx context.Context) (*StockReport, error) {
	var s StockReport
	if err := c.do(ctx, http.MethodGet, "/stock", nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Company returns the issuer profile.
func (c *Client) Company(ctx context.Context) (*Company, error) {
	var co Company
	if err := c.do(ctx, http.MethodGet, "/company", nil, &co); err != nil {
		return nil, err
	}
	return &co, nil
}

// UpdateCompany replaces the issuer profile. Admin-only on the remote side.
func (c *Client) UpdateCompany(ctx context.Context, input CompanyInput) (*Company, error) {
	var co Company
	if err := c.do(ctx, http.MethodPut, "/company", input, &co); err != nil {
		return nil, err
	}
	return &co, nil
}
