package panel

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hostpanel/panelview/internal/tabview"
	"go.uber.org/zap"
)

// Fetcher defines the panel reads panelview performs. It is implemented by
// *Client and can be faked in tests.
type Fetcher interface {
	FetchStatus(ctx context.Context) (*Status, error)
	FetchListing(ctx context.Context, listing Listing) ([]tabview.Item, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// ClientConfig configures NewClient.
type ClientConfig struct {
	BaseURL            string
	Kind               string
	Username           string
	Token              string
	InsecureSkipVerify bool
	Timeout            time.Duration
	UserAgent          string
	Logger             *zap.Logger
}

// Client talks to the cPanel UAPI or WHM API1 over HTTPS using an API token.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	kind      string
	auth      string
	userAgent string
	logger    *zap.Logger
}

const (
	defaultBaseURL   = "https://127.0.0.1:2083"
	defaultUserAgent = "panelview/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client from cfg.
func NewClient(cfg ClientConfig) (*Client, error) {
	base, err := parseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	kind := strings.ToLower(strings.TrimSpace(cfg.Kind))
	if kind == "" {
		kind = KindUAPI
	}
	if kind != KindUAPI && kind != KindWHM {
		return nil, fmt.Errorf("unknown api kind %q", cfg.Kind)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = requestTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // self-signed panel certificates
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout, Transport: transport},
		kind:      kind,
		userAgent: userAgent,
		logger:    logger.Named("panel"),
	}
	if cfg.Username != "" || cfg.Token != "" {
		scheme := "cpanel"
		if kind == KindWHM {
			scheme = "whm"
		}
		c.auth = fmt.Sprintf("%s %s:%s", scheme, cfg.Username, cfg.Token)
	}
	return c, nil
}

// Kind returns the API kind the client speaks.
func (c *Client) Kind() string {
	return c.kind
}

// FetchStatus checks reachability. WHM reports the server version, UAPI the
// authenticated user.
func (c *Client) FetchStatus(ctx context.Context) (*Status, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	status := &Status{Kind: c.kind}
	if c.kind == KindWHM {
		var v whmVersion
		if err := c.callWHM(ctx, "version", nil, &v); err != nil {
			return nil, err
		}
		status.Version = v.Version
	} else {
		var info uapiUserInfo
		if err := c.callUAPI(ctx, "Variables", "get_user_information", nil, &info); err != nil {
			return nil, err
		}
		status.User = info.User
		status.Domain = info.Domain
	}
	status.CheckedAt = time.Now()
	return status, nil
}

// FetchListing runs the listing's API call and converts its rows to records.
func (c *Client) FetchListing(ctx context.Context, listing Listing) ([]tabview.Item, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	kind := listing.Kind
	if kind == "" {
		kind = c.kind
	}
	if kind != c.kind {
		return nil, fmt.Errorf("%s needs a %s token: %w", listing.Name, kind, ErrKindMismatch)
	}

	var data any
	var err error
	if kind == KindWHM {
		err = c.callWHM(ctx, listing.Function, listing.Params, &data)
	} else {
		err = c.callUAPI(ctx, listing.Module, listing.Function, listing.Params, &data)
	}
	if err != nil {
		return nil, err
	}
	return rowsFromData(listing, data, c.logger)
}

func (c *Client) callUAPI(ctx context.Context, module, function string, params map[string]string, dest any) error {
	rel := &url.URL{
		Path:     "/execute/" + url.PathEscape(module) + "/" + url.PathEscape(function),
		RawQuery: encodeParams(params, nil),
	}
	var resp uapiResponse
	if err := c.doURL(ctx, http.MethodGet, rel, &resp); err != nil {
		return err
	}
	if resp.Status != 1 {
		return &APIError{Function: module + "::" + function, Errors: resp.Errors}
	}
	return decodeData(resp.Data, dest)
}

func (c *Client) callWHM(ctx context.Context, function string, params map[string]string, dest any) error {
	rel := &url.URL{
		Path:     "/json-api/" + url.PathEscape(function),
		RawQuery: encodeParams(params, map[string]string{"api.version": "1"}),
	}
	var resp whmResponse
	if err := c.doURL(ctx, http.MethodGet, rel, &resp); err != nil {
		return err
	}
	if resp.Metadata.Result != 1 {
		return &APIError{Function: function, Reason: resp.Metadata.Reason}
	}
	return decodeData(resp.Data, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	requestID := uuid.NewString()
	started := time.Now()
	logger := c.logger.With(zap.String("request_id", requestID), zap.String("path", rel.Path))

	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("panel request failed", zap.Error(err))
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	logger.Debug("panel response",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)))

	if resp.StatusCode >= 400 {
		return &HTTPError{Path: rel.Path, StatusCode: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeData decodes raw keeping numbers as json.Number, so account ids and
// quotas survive unchanged.
func decodeData(raw json.RawMessage, dest any) error {
	if len(raw) == 0 || dest == nil {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func encodeParams(params, fixed map[string]string) string {
	if len(params) == 0 && len(fixed) == 0 {
		return ""
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	for k, v := range fixed {
		values.Set(k, v)
	}
	return values.Encode()
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
