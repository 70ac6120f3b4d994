// Package cartapi is the storefront's client for the cart REST backend.
// Requests authenticate with the session cookie kept in the client's jar.
package cartapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/javajoker/storefront/internal/config"
	"github.com/javajoker/storefront/internal/models"
)

const maxResponseBytes = 4 << 20

type Client struct {
	baseURL    *url.URL
	http       *http.Client
	limiter    *rate.Limiter
	cookieName string
	lang       string
	log        *logrus.Entry
}

// New builds a client for cfg.BaseURL (for example http://localhost:8080/v1).
func New(cfg config.ClientConfig, cookieName string) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestsPerSec > 0 {
		limit = rate.Limit(cfg.RequestsPerSec)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &Client{
		baseURL:    base,
		http:       &http.Client{Jar: jar, Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, burst),
		cookieName: cookieName,
		lang:       "en",
		log:        logrus.WithField("component", "cartapi"),
	}, nil
}

// SetLanguage sets the Accept-Language sent with every request.
func (c *Client) SetLanguage(lang string) {
	c.lang = lang
}

// SessionToken returns the current session cookie value, or "".
func (c *Client) SessionToken() string {
	for _, cookie := range c.http.Jar.Cookies(c.baseURL) {
		if cookie.Name == c.cookieName {
			return cookie.Value
		}
	}
	return ""
}

// RestoreSession puts a previously saved session cookie back into the jar.
func (c *Client) RestoreSession(token string) {
	if token == "" {
		return
	}
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:     c.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	}})
}

// ForgetSession drops the session cookie locally.
func (c *Client) ForgetSession() {
	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:   c.cookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})
}

type cartEnvelope struct {
	Success   bool            `json:"success"`
	CartItems json.RawMessage `json:"cartItems"`
	CartItem  json.RawMessage `json:"cartItem"`
	Count     int             `json:"count"`
}

// GetCart calls GET /cart.
func (c *Client) GetCart(ctx context.Context) ([]models.RawCartItem, error) {
	var envelope cartEnvelope
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &envelope); err != nil {
		return nil, err
	}
	items, err := models.ParseRawItems(envelope.CartItems)
	if err != nil {
		return nil, &TransportError{Op: "decode cart", Err: err}
	}
	return items, nil
}

// AddItem calls POST /cart.
func (c *Client) AddItem(ctx context.Context, req models.AddItemRequest) (models.RawCartItem, error) {
	var envelope cartEnvelope
	if err := c.do(ctx, http.MethodPost, "/cart", req, &envelope); err != nil {
		return models.RawCartItem{}, err
	}
	return c.decodeItem(envelope)
}

// UpdateItem calls PUT /cart/{id}.
func (c *Client) UpdateItem(ctx context.Context, cartItemID string, quantity int) (models.RawCartItem, error) {
	body := map[string]int{"quantity": quantity}
	var envelope cartEnvelope
	if err := c.do(ctx, http.MethodPut, "/cart/"+url.PathEscape(cartItemID), body, &envelope); err != nil {
		return models.RawCartItem{}, err
	}
	return c.decodeItem(envelope)
}

// RemoveItem calls DELETE /cart/{id}. A missing item yields ErrNotFound.
func (c *Client) RemoveItem(ctx context.Context, cartItemID string) error {
	return c.do(ctx, http.MethodDelete, "/cart/"+url.PathEscape(cartItemID), nil, nil)
}

// Count calls GET /cart/count.
func (c *Client) Count(ctx context.Context) (int, error) {
	var envelope cartEnvelope
	if err := c.do(ctx, http.MethodGet, "/cart/count", nil, &envelope); err != nil {
		return 0, err
	}
	return envelope.Count, nil
}

// Clear calls DELETE /cart.
func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/cart", nil, nil)
}

func (c *Client) decodeItem(envelope cartEnvelope) (models.RawCartItem, error) {
	if len(envelope.CartItem) == 0 {
		return models.RawCartItem{}, &TransportError{Op: "decode cart item", Err: io.ErrUnexpectedEOF}
	}
	item, err := models.ParseRawItem(envelope.CartItem)
	if err != nil {
		return models.RawCartItem{}, &TransportError{Op: "decode cart item", Err: err}
	}
	return item, nil
}

// do sends one request. Non-2xx responses come back as *APIError, anything
// that prevented a response from being read as *TransportError.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	op := method + " " + path

	if err := c.limiter.Wait(ctx); err != nil {
		return &TransportError{Op: op, Err: err}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s body: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", c.lang)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	c.log.WithFields(logrus.Fields{
		"method": method,
		"path":   path,
		"status": resp.StatusCode,
	}).Debug("API request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data)
	}

	var status struct {
		Success *bool `json:"success"`
	}
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &status); err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("invalid response body: %w", err)}
		}
		if status.Success != nil && !*status.Success {
			return decodeError(resp.StatusCode, data)
		}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("invalid response body: %w", err)}
		}
	}
	return nil
}

func queryString(values map[string]string) string {
	q := url.Values{}
	for k, v := range values {
		if v != "" {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

func itoa(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
