// Package yahoo is a market.Provider backed by Yahoo Finance. It uses the v8
// chart API for price history and the v10 quoteSummary API for quote fields
// and financial statements, authenticating with a session cookie + crumb the
// same way the yfinance Python library does.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL   = "https://query2.finance.yahoo.com"
	defaultCookieURL = "https://fc.yahoo.com"
	defaultCrumbURL  = "https://query1.finance.yahoo.com/v1/test/getcrumb"
	chartPath        = "/v8/finance/chart/{symbol}"
	summaryPath      = "/v10/finance/quoteSummary/{symbol}"
	userAgent        = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// Client fetches quotes, history and statements from Yahoo Finance.
type Client struct {
	baseURL    string
	cookieURL  string
	crumbURL   string
	httpClient *http.Client
	timeout    time.Duration
	debug      bool

	rc *resty.Client

	mu    sync.Mutex
	crumb string
}

// New creates a Client with the given options applied.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   defaultBaseURL,
		cookieURL: defaultCookieURL,
		crumbURL:  defaultCrumbURL,
	}
	for _, o := range opts {
		o(c)
	}

	if c.httpClient != nil {
		// resty sets the timeout and jar on the client it wraps; work on a
		// copy so the caller's client is left untouched.
		hc := *c.httpClient
		c.rc = resty.NewWithClient(&hc)
		if hc.Jar == nil {
			jar, _ := cookiejar.New(nil)
			c.rc.SetCookieJar(jar)
		}
	} else {
		c.rc = resty.New()
	}
	c.rc.
		SetBaseURL(c.baseURL).
		SetHeader("User-Agent", userAgent).
		SetDebug(c.debug)
	if c.timeout > 0 {
		c.rc.SetTimeout(c.timeout)
	}
	return c
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host used for chart and quoteSummary calls.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithCookieURL overrides the URL used to obtain the session cookie.
func WithCookieURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.cookieURL = u
		}
	}
}

// WithCrumbURL overrides the URL used to obtain the crumb token.
func WithCrumbURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.crumbURL = u
		}
	}
}

// WithHTTPClient sets the HTTP client whose transport and settings are used.
// The client is copied, so WithTimeout and the cookie jar do not modify it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets a per-request timeout. Zero keeps the client default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithDebug enables resty request/response dumps.
func WithDebug(debug bool) Option {
	return func(c *Client) { c.debug = debug }
}

// apiError is the error object Yahoo embeds in its JSON envelopes.
type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *apiError) Error() string { return e.Code + ": " + e.Description }

// ensureCrumb fetches a session cookie and crumb token if not already cached.
func (c *Client) ensureCrumb(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumb != "" {
		return nil
	}

	// Step 1: the cookie endpoint answers 404 but still sets the session cookie.
	if _, err := c.rc.R().SetContext(ctx).Get(c.cookieURL); err != nil {
		return fmt.Errorf("fetch cookie: %w", err)
	}

	// Step 2: the jar sends the cookie along with the crumb request.
	res, err := c.rc.R().SetContext(ctx).Get(c.crumbURL)
	if err != nil {
		return fmt.Errorf("fetch crumb: %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("crumb endpoint returned HTTP %d", res.StatusCode())
	}

	crumb := strings.TrimSpace(string(res.Body()))
	if crumb == "" {
		return errors.New("empty crumb received")
	}

	c.crumb = crumb
	slog.Info("yahoo: obtained crumb", "crumb_len", len(crumb))
	return nil
}

// get performs an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, path, symbol string, params map[string]string, out any) error {
	if symbol == "" {
		return errors.New("symbol cannot be empty")
	}
	if err := c.ensureCrumb(ctx); err != nil {
		return fmt.Errorf("yahoo auth: %w", err)
	}

	c.mu.Lock()
	crumb := c.crumb
	c.mu.Unlock()

	res, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetPathParam("symbol", symbol).
		SetQueryParams(params).
		SetQueryParam("crumb", crumb).
		Get(path)
	if err != nil {
		return err
	}

	if res.StatusCode() != http.StatusOK {
		// Invalidate crumb on auth errors so the next call re-authenticates.
		if res.StatusCode() == http.StatusUnauthorized || res.StatusCode() == http.StatusForbidden {
			c.mu.Lock()
			c.crumb = ""
			c.mu.Unlock()
		}
		if apiErr := envelopeError(res.Body()); apiErr != nil {
			return fmt.Errorf("yahoo returned HTTP %d for %s: %w", res.StatusCode(), symbol, apiErr)
		}
		return fmt.Errorf("yahoo returned HTTP %d for %s", res.StatusCode(), symbol)
	}

	if err := json.Unmarshal(res.Body(), out); err != nil {
		return fmt.Errorf("parse yahoo response: %w", err)
	}
	return nil
}

// envelopeError extracts the error object from any top-level envelope such
// as {"chart": {"error": ...}} or {"quoteSummary": {"error": ...}}.
func envelopeError(body []byte) *apiError {
	var env map[string]struct {
		Error *apiError `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil
	}
	for _, v := range env {
		if v.Error != nil {
			return v.Error
		}
	}
	return nil
}
