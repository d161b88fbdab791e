// Package thapi is the client for the remote treasure-hunt API. Every call is
// a single GET attempt; failures are classified as network, HTTP, decode or
// domain errors so callers can tell them apart.
package thapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the public Code Cyprus treasure-hunt API.
const DefaultBaseURL = "https://codecyprus.org/th/api"

const maxErrorBody = 64 << 10

const statusOK = "OK"

// Envelope is the part of the response every endpoint shares.
type Envelope struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	// Raw is the full response body, used to decode endpoint payloads.
	Raw json.RawMessage `json:"-"`
}

type Client struct {
	base    *url.URL
	http    *http.Client
	appName string
}

// NewClient validates baseURL and returns a client that issues requests with
// hc. An empty baseURL means DefaultBaseURL. appName is sent as the app
// parameter when starting a hunt.
func NewClient(baseURL string, hc *http.Client, appName string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.ParseRequestURI(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: unsupported scheme %q", baseURL, u.Scheme)
	}
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: u, http: hc, appName: appName}, nil
}

// URL builds the request URL for endpoint with params percent-encoded.
func (c *Client) URL(endpoint string, params url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(endpoint, "/")
	u.RawQuery = params.Encode()
	return u.String()
}

// Call performs one GET against endpoint and decodes the JSON envelope.
// It does not interpret the envelope status.
func (c *Client) Call(ctx context.Context, endpoint string, params url.Values) (Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(endpoint, params), nil)
	if err != nil {
		return Envelope{}, fmt.Errorf("%s: creating request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Envelope{}, &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Envelope{}, &HTTPError{Endpoint: endpoint, Status: resp.StatusCode, Body: string(body)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Envelope{}, &NetworkError{Endpoint: endpoint, Err: err}
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, &DecodeError{Endpoint: endpoint, Err: err}
	}
	env.Raw = raw
	return env, nil
}

// call runs Call, turns a non-OK status into a DomainError and decodes the
// payload into out when out is non-nil.
func (c *Client) call(ctx context.Context, endpoint string, params url.Values, out any) error {
	env, err := c.Call(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if env.Status != statusOK {
		return &DomainError{Endpoint: endpoint, Status: env.Status, Message: env.ErrorMessage}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Raw, out); err != nil {
		return &DecodeError{Endpoint: endpoint, Err: err}
	}
	return nil
}
