package render

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/renderdash/rdash/internal/domain"
	"github.com/renderdash/rdash/internal/logger"
	"github.com/renderdash/rdash/internal/store/filecache"
)

const (
	// DefaultBaseURL is the production API endpoint collection.
	DefaultBaseURL = "https://api.render.com/v1"

	requestTimeout = 30 * time.Second

	// bodyExcerptLimit bounds how much of an error response body is
	// carried in an APIError.
	bodyExcerptLimit = 512
)

// Client is one authenticated API session. Construct with NewClient,
// release with Close. The optional cache is created once at session
// start and injected, not rebuilt per call.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
	cache   *filecache.Cache
	log     logger.Logger
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, for tests and self-hosted
// gateways.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithCache attaches a read-through cache for list queries.
func WithCache(cache *filecache.Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithLogger sets the client logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates an API client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: requestTimeout},
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the client's idle connections. Safe to call on every
// exit path.
func (c *Client) Close() {
	c.httpc.CloseIdleConnections()
}

// request issues an authenticated GET and decodes the JSON body.
// Every failure mode maps to an *APIError; raw transport errors never
// reach callers.
func (c *Client) request(ctx context.Context, path string, query url.Values) (any, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, &APIError{Kind: ErrNetwork, Path: path, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &APIError{Kind: ErrNetwork, Path: path, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: ErrNetwork, Path: path, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &APIError{Kind: ErrAuth, Path: path, Status: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return nil, &APIError{Kind: ErrNotFound, Path: path, Status: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &APIError{Kind: ErrRateLimited, Path: path, Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &APIError{
			Kind:   ErrHTTP,
			Path:   path,
			Status: resp.StatusCode,
			Body:   excerpt(body),
		}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &APIError{
			Kind:   ErrHTTP,
			Path:   path,
			Status: resp.StatusCode,
			Body:   "unparsable response body",
			Err:    err,
		}
	}
	return payload, nil
}

// GetService fetches a single service's details and current status.
func (c *Client) GetService(ctx context.Context, id string) (*domain.Service, error) {
	payload, err := c.request(ctx, "/services/"+id, nil)
	if err != nil {
		return nil, err
	}
	return decodeService(payload, id), nil
}

// GetLatestDeploy fetches the most recent deploy for a service.
// Returns (nil, nil) when the service has no deploys, the endpoint
// errors, or the payload is unusable: deploy absence must never abort
// a service status fetch.
func (c *Client) GetLatestDeploy(ctx context.Context, id string) (*domain.Deploy, error) {
	payload, err := c.request(ctx, "/services/"+id+"/deploys", url.Values{"limit": {"1"}})
	if err != nil {
		c.log.Debug("deploy lookup failed, treating as no deploys",
			logger.String("service_id", id),
			logger.Error(err))
		return nil, nil
	}
	return decodeLatestDeploy(payload, c.now()), nil
}

// GetServiceWithDeploy fetches a service together with its latest
// deploy. When the deploy is in progress the service status is forced
// to Deploying: deploy progress is a stronger signal than a possibly
// stale service status field.
func (c *Client) GetServiceWithDeploy(ctx context.Context, id string) (*domain.Service, error) {
	svc, err := c.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	deploy, _ := c.GetLatestDeploy(ctx, id)
	if deploy != nil && deploy.IsInProgress() {
		svc.Status = domain.StatusDeploying
	}
	svc.LatestDeploy = deploy
	return svc, nil
}

// cachedService is the plain-data cache form of a Service. The latest
// deploy is deliberately not cached: the list cache exists to avoid
// redundant bulk queries, not to serve deploy state.
type cachedService struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	URL          string `json:"url,omitempty"`
	CustomDomain string `json:"customDomain,omitempty"`
}

// ListServices lists up to limit services. With useCache, a TTL
// read-through cache keyed by the limit is consulted first and
// refilled after a successful fetch; cache write failures are logged
// and ignored.
func (c *Client) ListServices(ctx context.Context, limit int, useCache bool) ([]*domain.Service, error) {
	key := filecache.ListServicesKey(limit)

	if useCache && c.cache != nil {
		if raw, ok := c.cache.Get(key); ok {
			var cached []cachedService
			if err := json.Unmarshal(raw, &cached); err == nil {
				services := make([]*domain.Service, 0, len(cached))
				for _, e := range cached {
					services = append(services, &domain.Service{
						ID:           e.ID,
						Name:         e.Name,
						Type:         e.Type,
						Status:       domain.ServiceStatus(e.Status),
						URL:          e.URL,
						CustomDomain: e.CustomDomain,
					})
				}
				c.log.Debug("service list served from cache",
					logger.Int("count", len(services)))
				return services, nil
			}
			c.cache.Clear(key)
		}
	}

	payload, err := c.request(ctx, "/services", url.Values{"limit": {strconv.Itoa(limit)}})
	if err != nil {
		return nil, err
	}
	services := decodeServiceList(payload)

	if useCache && c.cache != nil && len(services) > 0 {
		cached := make([]cachedService, 0, len(services))
		for _, s := range services {
			cached = append(cached, cachedService{
				ID:           s.ID,
				Name:         s.Name,
				Type:         s.Type,
				Status:       string(s.Status),
				URL:          s.URL,
				CustomDomain: s.CustomDomain,
			})
		}
		if err := c.cache.Set(key, cached); err != nil {
			c.log.Warn("failed to write service list cache",
				logger.Error(err))
		}
	}

	return services, nil
}

// GetEnvVars fetches a service's environment variables. Never cached:
// secrets must not persist in the read-through cache.
func (c *Client) GetEnvVars(ctx context.Context, id string) ([]domain.EnvVar, error) {
	payload, err := c.request(ctx, "/services/"+id+"/env-vars", nil)
	if err != nil {
		return nil, err
	}
	return decodeEnvVars(payload), nil
}

func excerpt(body []byte) string {
	if len(body) > bodyExcerptLimit {
		return fmt.Sprintf("%s... (%d bytes)", body[:bodyExcerptLimit], len(body))
	}
	return string(body)
}
