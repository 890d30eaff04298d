// Package trends talks to the Google Trends widget API and converts its
// responses into models.Table values.
package trends

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/valyala/fasthttp"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"

	"trends-viewer/internal/logger"
	"trends-viewer/internal/models"
)

const (
	DefaultBaseURL = "https://trends.google.com"

	explorePath          = "/trends/api/explore"
	interestOverTimePath = "/trends/api/widgetdata/multiline"
	interestByRegionPath = "/trends/api/widgetdata/comparedgeo"
	relatedSearchesPath  = "/trends/api/widgetdata/relatedsearches"

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

var (
	ErrTooManyRequests  = errors.New("trends: provider returned 429 too many requests")
	ErrNoPayload        = errors.New("trends: no payload built, call BuildPayload first")
	ErrUnexpectedStatus = errors.New("trends: unexpected status")
	ErrMissingWidget    = errors.New("trends: widget missing from explore response")
)

// Options tune the transport. Zero values fall back to defaults.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	MinInterval time.Duration
	Logger      logger.Logger
	// Dial overrides connection setup; tests point it at an in-memory listener.
	Dial fasthttp.DialFunc
}

// Client is bound to one query. BuildPayload must run before any data call.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	query   models.QueryParameters
	log     logger.Logger

	mu      sync.Mutex
	cookie  string
	widgets *widgetSet
}

func NewClient(query models.QueryParameters, opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &Client{
		http: &fasthttp.Client{
			ReadTimeout:  opts.Timeout,
			WriteTimeout: opts.Timeout,
			Dial:         opts.Dial,
		},
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
		limiter: rate.NewLimiter(limit, 1),
		query:   query,
		log:     opts.Logger,
	}
}

// BuildPayload registers the query with the provider and stores the widget
// tokens the data endpoints need.
func (c *Client) BuildPayload(ctx context.Context) error {
	if err := c.ensureCookie(ctx); err != nil {
		return err
	}

	req := exploreRequest{
		Category: c.query.Category(),
		Property: c.query.Property(),
	}
	for _, topic := range c.query.Topics() {
		req.ComparisonItem = append(req.ComparisonItem, comparisonItem{
			Keyword: topic,
			Time:    c.query.Timeframe(),
			Geo:     c.query.Geo(),
		})
	}
	encoded, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode explore request: %w", err)
	}

	params := url.Values{}
	params.Set("hl", c.query.HostLanguage())
	params.Set("tz", strconv.Itoa(c.query.Timezone()))
	params.Set("req", string(encoded))

	body, err := c.do(ctx, fasthttp.MethodPost, explorePath, params)
	if err != nil {
		return err
	}

	var resp exploreResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("decode explore response: %w", err)
	}

	widgets := splitWidgets(resp.Widgets)

	c.mu.Lock()
	c.widgets = widgets
	c.mu.Unlock()

	c.log.Debug("Payload built", map[string]interface{}{
		"topics":          c.query.Topics(),
		"timeframe":       c.query.Timeframe(),
		"related_topics":  len(widgets.relatedTopics),
		"related_queries": len(widgets.relatedQueries),
	})
	return nil
}

// Query returns the parameters the client was built with.
func (c *Client) Query() models.QueryParameters {
	return c.query
}

func (c *Client) payload() (*widgetSet, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.widgets == nil {
		return nil, ErrNoPayload
	}
	return c.widgets, nil
}

// ensureCookie fetches the NID cookie the API expects on every call.
func (c *Client) ensureCookie(ctx context.Context) error {
	c.mu.Lock()
	have := c.cookie != ""
	c.mu.Unlock()
	if have {
		return nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/?geo=" + url.QueryEscape(cookieRegion(c.query.HostLanguage())))
	req.Header.SetMethod(fasthttp.MethodGet)
	c.setRequestHeaders(req)

	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		return fmt.Errorf("cookie request failed: %w", err)
	}

	var nid string
	resp.Header.VisitAllCookie(func(key, value []byte) {
		if string(key) != "NID" {
			return
		}
		cookie := fasthttp.AcquireCookie()
		defer fasthttp.ReleaseCookie(cookie)
		if err := cookie.ParseBytes(value); err == nil {
			nid = string(cookie.Value())
		}
	})
	if nid == "" {
		c.log.Warning("Provider did not set NID cookie", map[string]interface{}{
			"status": resp.StatusCode(),
		})
		return nil
	}

	c.mu.Lock()
	c.cookie = nid
	c.mu.Unlock()
	return nil
}

// do performs one paced request and returns the JSON body without the
// anti-hijacking prefix.
func (c *Client) do(ctx context.Context, method, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path + "?" + params.Encode())
	req.Header.SetMethod(method)
	c.setRequestHeaders(req)

	c.mu.Lock()
	if c.cookie != "" {
		req.Header.SetCookie("NID", c.cookie)
	}
	c.mu.Unlock()

	started := time.Now()
	if err := c.http.DoTimeout(req, resp, c.timeout); err != nil {
		return nil, fmt.Errorf("request %s failed: %w", path, err)
	}

	c.log.Debug("Provider responded", map[string]interface{}{
		"path":       path,
		"status":     resp.StatusCode(),
		"elapsed_ms": time.Since(started).Milliseconds(),
	})

	switch status := resp.StatusCode(); status {
	case fasthttp.StatusOK:
	case fasthttp.StatusTooManyRequests:
		return nil, ErrTooManyRequests
	default:
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrUnexpectedStatus, status, path)
	}

	return trimPrefix(resp.Body())
}

func (c *Client) setRequestHeaders(req *fasthttp.Request) {
	req.Header.SetUserAgent(userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", c.query.HostLanguage())
}

// trimPrefix drops the ")]}'" guard the API puts in front of every JSON body.
func trimPrefix(body []byte) ([]byte, error) {
	start := bytes.IndexByte(body, '{')
	if start < 0 {
		return nil, fmt.Errorf("trends: response carries no JSON object")
	}
	out := make([]byte, len(body)-start)
	copy(out, body[start:])
	return out, nil
}

// cookieRegion derives the geo hint for the cookie request from the host
// language, e.g. en-US -> US.
func cookieRegion(hostLanguage string) string {
	tag, err := language.Parse(hostLanguage)
	if err != nil {
		return "US"
	}
	region, confidence := tag.Region()
	if confidence == language.No {
		return "US"
	}
	return region.String()
}
