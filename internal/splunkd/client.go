package splunkd

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dashpub/internal/config"
	"dashpub/internal/services"
)

const (
	component       = "splunkd"
	defaultTimeout  = 30 * time.Second
	maxErrorBody    = 4 << 10
	userAgentHeader = "dashpub"
)

// Credentials authenticate requests to splunkd. A token takes precedence over
// username/password.
type Credentials struct {
	Username string
	Password string
	Token    string
}

// Client provides access to the splunkd REST API.
type Client struct {
	baseURL    *url.URL
	creds      Credentials
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate verification, which
// splunkd's default self-signed certificate usually requires.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *Client) {
		if !skip {
			return
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
		c.httpClient.Transport = transport
	}
}

// New creates a splunkd client.
func New(baseURL string, creds Credentials, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("splunkd url required")
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse splunkd url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("splunkd url %q must be absolute", baseURL)
	}
	client := &Client{
		baseURL:    parsed,
		creds:      creds,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// NewFromConfig builds a client from the [splunkd] config section.
func NewFromConfig(cfg *config.Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	return New(cfg.Splunkd.URL, Credentials{
		Username: cfg.Splunkd.Username,
		Password: cfg.Splunkd.Password,
		Token:    cfg.Splunkd.Token,
	},
		WithTimeout(cfg.SplunkdTimeout()),
		WithInsecureSkipVerify(cfg.Splunkd.InsecureSkipVerify),
	)
}

// Host returns the host:port of the splunkd endpoint.
func (c *Client) Host() string {
	return c.baseURL.Host
}

func (c *Client) endpoint(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}
	return c.baseURL.String() + "/" + strings.Join(escaped, "/")
}

func (c *Client) authorize(req *http.Request) {
	switch {
	case c.creds.Token != "":
		req.Header.Set("Authorization", "Bearer "+c.creds.Token)
	case c.creds.Username != "":
		req.SetBasicAuth(c.creds.Username, c.creds.Password)
	}
}

// get issues a GET request and returns the response for 2xx statuses. The
// caller closes the body.
func (c *Client) get(ctx context.Context, operation, target string, authorize bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, component, operation, "build request", err)
	}
	req.Header.Set("User-Agent", userAgentHeader)
	if authorize {
		c.authorize(req)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrFetch, component, operation,
			fmt.Sprintf("execute request (latency=%v)", latency.Round(time.Millisecond)), err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	statusErr := fmt.Errorf("%s returned %d (latency=%v)%s", redact(target), resp.StatusCode,
		latency.Round(time.Millisecond), describeMessages(body))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		statusErr = fmt.Errorf("%w: %w", services.ErrAuth, statusErr)
	case http.StatusNotFound:
		statusErr = fmt.Errorf("%w: %w", services.ErrNotFound, statusErr)
	}
	return nil, services.Wrap(services.ErrFetch, component, operation, "", statusErr)
}

func (c *Client) getJSON(ctx context.Context, operation, target string, out any) error {
	resp, err := c.get(ctx, operation, target, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrFetch, component, operation, "decode response", err)
	}
	return nil
}

// describeMessages extracts splunkd's {"messages":[{"type","text"}]} error
// payload when present.
func describeMessages(body []byte) string {
	var payload struct {
		Messages []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"messages"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil || len(payload.Messages) == 0 {
		return ""
	}
	texts := make([]string, 0, len(payload.Messages))
	for _, msg := range payload.Messages {
		if text := strings.TrimSpace(msg.Text); text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return ""
	}
	return ": " + strings.Join(texts, "; ")
}

func redact(target string) string {
	parsed, err := url.Parse(target)
	if err != nil {
		return target
	}
	parsed.User = nil
	parsed.RawQuery = ""
	return parsed.String()
}
