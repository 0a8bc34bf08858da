package mercapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/elnormous/contenttype"
	"github.com/ggoodman/mercapi-go/internal/dpop"
	"github.com/ggoodman/mercapi-go/internal/logctx"
	"github.com/ggoodman/mercapi-go/mapping"
	"github.com/ggoodman/mercapi-go/storage"
	"github.com/google/uuid"
)

const (
	// DefaultBaseURL is the host of the public API.
	DefaultBaseURL = "https://api.mercari.jp"

	// DefaultUserAgent is the browser the client presents itself as.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:102.0) Gecko/20100101 Firefox/102.0"

	dpopHeader     = "DPoP"
	platformHeader = "X-Platform"
	platformWeb    = "web"

	maxResponseBytes = 32 << 20
)

// Endpoint names, used for logging and as cache namespaces.
const (
	EndpointSearch      = "search"
	EndpointItem        = "item"
	EndpointProfile     = "profile"
	EndpointSellerItems = "items"
)

var jsonMediaType = contenttype.NewMediaType("application/json")

// Endpoints holds the absolute URLs the client talks to.
type Endpoints struct {
	Search      string
	Item        string
	Profile     string
	SellerItems string
}

// EndpointsFor returns the endpoints of an API served at baseURL.
func EndpointsFor(baseURL string) Endpoints {
	return Endpoints{
		Search:      baseURL + "/v2/entities:search",
		Item:        baseURL + "/items/get",
		Profile:     baseURL + "/users/get_profile",
		SellerItems: baseURL + "/items/get_items",
	}
}

// Client talks to the API. The signing key and client id are generated once
// in New and never change; a Client is safe for concurrent use and meant to
// be long-lived.
type Client struct {
	http      *http.Client
	log       *slog.Logger
	endpoints Endpoints
	userAgent string
	signer    *dpop.Signer
	registry  *mapping.Registry
	cache     storage.Storage
	cacheTTL  time.Duration
	ownsCache bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger for request and mapping events. If not
// provided, logs are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithEndpoints overrides the API URLs, e.g. to point at a fake server.
func WithEndpoints(e Endpoints) Option {
	return func(c *Client) { c.endpoints = e }
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithStorage caches item, profile and seller listing payloads in s for ttl.
// A zero ttl keeps entries until the backend evicts them. Search results are
// never cached.
func WithStorage(s storage.Storage, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = s
		c.cacheTTL = ttl
	}
}

// WithRegistry replaces the mapping definitions used to decode responses.
// Use NewRegistry to start from the built-in ones.
func WithRegistry(r *mapping.Registry) Option {
	return func(c *Client) { c.registry = r }
}

// New returns a Client with a freshly generated signing key and client id.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		http:      http.DefaultClient,
		log:       slog.New(slog.DiscardHandler),
		endpoints: EndpointsFor(DefaultBaseURL),
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = logctx.Wrap(c.log)
	if c.registry == nil {
		c.registry = NewRegistry(mapping.WithLogger(c.log.With(slog.String("component", "mapping"))))
	}

	signer, err := dpop.NewSigner()
	if err != nil {
		return nil, fmt.Errorf("failed to create proof signer: %w", err)
	}
	c.signer = signer

	return c, nil
}

// ClientID returns the identifier sent in every proof.
func (c *Client) ClientID() string { return c.signer.ClientID() }

// Registry returns the mapping definitions the client decodes with.
func (c *Client) Registry() *mapping.Registry { return c.registry }

// Close releases the cache if the client created it.
func (c *Client) Close() error {
	if c.ownsCache && c.cache != nil {
		return c.cache.Close()
	}
	return nil
}

// Search runs a search and returns the first page of results.
func (c *Client) Search(ctx context.Context, cond SearchConditions) (*SearchResults, error) {
	return c.SearchPage(ctx, cond, "")
}

// SearchPage runs a search starting at pageToken. An empty token is the
// first page.
func (c *Client) SearchPage(ctx context.Context, cond SearchConditions, pageToken string) (*SearchResults, error) {
	r := request{
		endpoint: EndpointSearch,
		method:   http.MethodPost,
		url:      c.endpoints.Search,
		body:     cond.payload(pageToken),
	}
	ctx = withRequest(ctx, r)
	if by, order := cond.sorting(); !supportedSortings[[2]string{string(by), string(order)}] {
		c.log.WarnContext(ctx, "search.sort.unsupported",
			slog.String("sort", string(by)),
			slog.String("order", string(order)),
		)
	}

	res, err := fetch[*SearchResults](ctx, c, r)
	if err != nil {
		return nil, err
	}
	res.conditions = cond
	return res, nil
}

// Item fetches a listing by id, e.g. "m94786104879".
func (c *Client) Item(ctx context.Context, id string) (*Item, error) {
	r := request{
		endpoint: EndpointItem,
		method:   http.MethodGet,
		url:      withQuery(c.endpoints.Item, url.Values{"id": {id}}),
		cache:    true,
	}
	res, err := fetch[*itemResponse](withRequest(ctx, r), c, r)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// Profile fetches a user profile by user id.
func (c *Client) Profile(ctx context.Context, userID string) (*Profile, error) {
	r := request{
		endpoint: EndpointProfile,
		method:   http.MethodGet,
		url: withQuery(c.endpoints.Profile, url.Values{
			"user_id":      {userID},
			"_user_format": {"profile"},
		}),
		cache: true,
	}
	res, err := fetch[*profileResponse](withRequest(ctx, r), c, r)
	if err != nil {
		return nil, err
	}
	return res.Data, nil
}

// SellerItems fetches the listings of a seller.
func (c *Client) SellerItems(ctx context.Context, sellerID string) (*SellerItems, error) {
	r := request{
		endpoint: EndpointSellerItems,
		method:   http.MethodGet,
		url: withQuery(c.endpoints.SellerItems, url.Values{
			"seller_id": {sellerID},
			"limit":     {"30"},
			"status":    {"on_sale,trading,sold_out"},
		}),
		cache: true,
	}
	return fetch[*SellerItems](withRequest(ctx, r), c, r)
}

type request struct {
	endpoint string
	method   string
	url      string
	body     any
	cache    bool
}

// withRequest attaches the request attributes every log record of the call
// carries, mapping diagnostics included.
func withRequest(ctx context.Context, r request) context.Context {
	return logctx.WithRequestData(ctx, &logctx.RequestData{
		RequestID: uuid.NewString(),
		Endpoint:  r.endpoint,
		Method:    r.method,
		URL:       r.url,
	})
}

// fetch answers r from the cache or the network and maps the payload to T.
// Only payloads that map successfully are cached; a cached payload that no
// longer maps is evicted and fetched again.
func fetch[T any](ctx context.Context, c *Client, r request) (T, error) {
	if payload, ok := c.cached(ctx, r); ok {
		out, err := decode[T](ctx, c, r, payload)
		if err == nil {
			c.log.DebugContext(ctx, "cache.hit")
			return out, nil
		}
		c.log.WarnContext(ctx, "cache.entry.invalid", slog.String("err", err.Error()))
		c.evict(ctx, r)
	}

	payload, err := c.do(ctx, r)
	if err != nil {
		var zero T
		return zero, err
	}
	out, err := decode[T](ctx, c, r, payload)
	if err != nil {
		return out, err
	}
	c.store(ctx, r, payload)
	return out, nil
}

func decode[T any](ctx context.Context, c *Client, r request, payload []byte) (T, error) {
	raw, err := decodeObject(payload)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to decode %s response: %w", r.endpoint, err)
	}
	return mapping.Map[T](c.registry, raw, mapping.WithCapability(c), mapping.WithContext(ctx))
}

// do performs one round trip and returns the JSON payload of a successful
// response.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", r.endpoint, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", r.endpoint, err)
	}
	proof, err := c.signer.Proof(req.URL.String(), req.Method)
	if err != nil {
		return nil, fmt.Errorf("failed to sign %s request: %w", r.endpoint, err)
	}
	req.Header.Set(dpopHeader, proof)
	req.Header.Set(platformHeader, platformWeb)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", jsonMediaType.String())
	if body != nil {
		req.Header.Set("Content-Type", jsonMediaType.String())
	}

	start := time.Now()
	c.log.DebugContext(ctx, "http.request.start")
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "http.request.error", slog.String("err", err.Error()))
		return nil, fmt.Errorf("%s request failed: %w", r.endpoint, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.log.DebugContext(ctx, "http.request.done",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
		slog.Int("bytes", len(payload)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", r.endpoint, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, r.endpoint, r.url)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &APIError{Endpoint: r.endpoint, StatusCode: resp.StatusCode, Body: payload}
	}

	ctype := contenttype.NewMediaType(resp.Header.Get("Content-Type"))
	if !ctype.Matches(jsonMediaType) {
		return nil, fmt.Errorf("%w: %s answered %q", ErrUnexpectedContentType, r.endpoint, resp.Header.Get("Content-Type"))
	}
	return payload, nil
}

func (c *Client) cached(ctx context.Context, r request) ([]byte, bool) {
	if !r.cache || c.cache == nil {
		return nil, false
	}
	e, err := c.cache.Get(ctx, r.url, storage.WithEndpoint(r.endpoint))
	if err != nil {
		c.log.WarnContext(ctx, "cache.get.error", slog.String("err", err.Error()))
		return nil, false
	}
	if e == nil {
		return nil, false
	}
	return e.Payload, true
}

func (c *Client) store(ctx context.Context, r request, payload []byte) {
	if !r.cache || c.cache == nil {
		return
	}
	opts := []storage.Option{storage.WithEndpoint(r.endpoint)}
	if c.cacheTTL > 0 {
		opts = append(opts, storage.WithTTL(c.cacheTTL))
	}
	if err := c.cache.Set(ctx, r.url, payload, opts...); err != nil {
		c.log.WarnContext(ctx, "cache.set.error", slog.String("err", err.Error()))
	}
}

func (c *Client) evict(ctx context.Context, r request) {
	if err := c.cache.Delete(ctx, storage.WithEndpoint(r.endpoint), storage.WithKey(r.url)); err != nil {
		c.log.WarnContext(ctx, "cache.delete.error", slog.String("err", err.Error()))
	}
}

// decodeObject keeps numbers as json.Number so large identifiers survive
// intact.
func decodeObject(payload []byte) (mapping.Raw, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var raw mapping.Raw
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("response is not a JSON object")
	}
	return raw, nil
}

func withQuery(base string, q url.Values) string {
	return base + "?" + q.Encode()
}
