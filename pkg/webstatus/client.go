package webstatus

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/compatguard/cli/pkg/features"
)

const (
	DefaultBaseURL = "https://api.webstatus.dev/v1"
	defaultPages   = 50
	pageSize       = 100
)

// Client reads feature data from the webstatus.dev API. Feature lookups are
// cached for the lifetime of the client.
type Client struct {
	baseURL  string
	http     *retryablehttp.Client
	limiter  *rate.Limiter
	maxPages int

	calls atomic.Int64

	mu    sync.Mutex
	cache map[string]features.Record
}

type ClientOption func(*Client)

func WithBaseURL(u string) ClientOption {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRateLimit limits outgoing requests to rps per second with the given burst.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		limit := rate.Limit(rps)
		if rps <= 0 {
			limit = rate.Inf
		}
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

func WithRetryMax(n int) ClientOption {
	return func(c *Client) { c.http.RetryMax = n }
}

func WithMaxPages(n int) ClientOption {
	return func(c *Client) { c.maxPages = n }
}

func NewClient(opts ...ClientOption) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.Logger = leveledLogger{logrus.WithField("component", "webstatus")}
	httpClient.RetryMax = 5
	httpClient.RetryWaitMin = 200 * time.Millisecond
	httpClient.RetryWaitMax = 5 * time.Second

	c := &Client{
		baseURL:  DefaultBaseURL,
		http:     httpClient,
		limiter:  rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		maxPages: defaultPages,
		cache:    map[string]features.Record{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calls is the number of HTTP requests issued, retries excluded.
func (c *Client) Calls() int64 {
	return c.calls.Load()
}

// GetFeature fetches one feature by id. A missing feature returns false
// without an error.
func (c *Client) GetFeature(ctx context.Context, id string) (features.Record, bool, error) {
	key := strings.ToLower(id)
	c.mu.Lock()
	rec, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return rec, true, nil
	}

	body, status, err := c.get(ctx, "/features/"+url.PathEscape(id), nil)
	if err != nil {
		return features.Record{}, false, err
	}
	if status == http.StatusNotFound {
		return features.Record{}, false, nil
	}

	rec, err = parseFeature(gjson.ParseBytes(body))
	if err != nil {
		return features.Record{}, false, err
	}

	c.mu.Lock()
	c.cache[key] = rec
	c.mu.Unlock()
	return rec, true, nil
}

// SearchFeatures runs a webstatus.dev search query, e.g. "baseline_status:limited".
// An empty query lists every feature.
func (c *Client) SearchFeatures(ctx context.Context, query string) ([]features.Record, error) {
	var records []features.Record
	token := ""
	for page := 0; page < c.maxPages; page++ {
		params := url.Values{}
		params.Set("page_size", fmt.Sprint(pageSize))
		if query != "" {
			params.Set("q", query)
		}
		if token != "" {
			params.Set("page_token", token)
		}

		body, status, err := c.get(ctx, "/features", params)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, errors.Errorf("webstatus search returned %d", status)
		}

		res := gjson.ParseBytes(body)
		for _, item := range res.Get("data").Array() {
			rec, err := parseFeature(item)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}

		token = res.Get("metadata.next_page_token").String()
		if token == "" {
			return records, nil
		}
	}

	logrus.Warnf("webstatus search %q stopped after %d pages", query, c.maxPages)
	return records, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")

	c.calls.Add(1)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "failed to fetch %s", u)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, errors.Wrapf(err, "failed to read %s", u)
	}
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		return nil, resp.StatusCode, errors.Errorf("%s returned %d: %s", u, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if resp.StatusCode == http.StatusOK && !gjson.ValidBytes(body) {
		return nil, resp.StatusCode, errors.Errorf("%s returned invalid JSON", u)
	}
	return body, resp.StatusCode, nil
}

func parseFeature(item gjson.Result) (features.Record, error) {
	id := item.Get("feature_id").String()
	if id == "" {
		return features.Record{}, errors.New("webstatus feature without feature_id")
	}

	status := features.Limited
	if s := item.Get("baseline.status").String(); s != "" {
		parsed, err := features.ParseStatus(s)
		if err != nil {
			return features.Record{}, errors.Wrapf(err, "feature %s", id)
		}
		status = parsed
	}

	sinceRaw := item.Get("baseline.high_date").String()
	if sinceRaw == "" {
		sinceRaw = item.Get("baseline.low_date").String()
	}
	since, err := features.ParseSince(sinceRaw)
	if err != nil {
		return features.Record{}, errors.Wrapf(err, "feature %s", id)
	}

	var support map[string]string
	item.Get("browser_implementations").ForEach(func(browser, impl gjson.Result) bool {
		if v := impl.Get("version").String(); v != "" && impl.Get("status").String() != "unavailable" {
			if support == nil {
				support = map[string]string{}
			}
			support[browser.String()] = v
		}
		return true
	})

	name := item.Get("name").String()
	return features.Record{
		ID:             id,
		Name:           name,
		Status:         status,
		AvailableSince: since,
		Category:       features.GuessCategory(id, name),
		Support:        support,
	}, nil
}

type leveledLogger struct {
	entry *logrus.Entry
}

func (l leveledLogger) Error(msg string, kv ...interface{}) { l.with(kv).Error(msg) }
func (l leveledLogger) Warn(msg string, kv ...interface{})  { l.with(kv).Warn(msg) }
func (l leveledLogger) Info(msg string, kv ...interface{})  { l.with(kv).Debug(msg) }
func (l leveledLogger) Debug(msg string, kv ...interface{}) { l.with(kv).Debug(msg) }

func (l leveledLogger) with(kv []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		fields[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return l.entry.WithFields(fields)
}
