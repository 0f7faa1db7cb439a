package dataaccess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/JayKakadiya/ui-plugin-samples/internal/util"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/common"
	"github.com/JayKakadiya/ui-plugin-samples/pkg/logger"

	"github.com/tidwall/gjson"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the default number of requests per second.
	DefaultRateLimit = 20.0

	// DefaultBackoff is the wait before the first retry.
	DefaultBackoff = 200 * time.Millisecond

	// maxBodySize caps how much of a response is read.
	maxBodySize = 32 << 20
)

// Response paths of the data-access payloads.
const (
	pathStatus            = "response.status"
	pathEntities          = "response.content.entities"
	pathFirstEntity       = "response.content.entities.0"
	pathFirstContextual   = "response.entities.0"
	pathFirstModel        = "response.content.entityModels.0"
	pathModelRelationship = "response.content.entityModels.0.data.relationships"
)

// Client is a rate-limited HTTP client for the entity data-access layer.
// It implements every source the derivers consume.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
	maxTries   int
	backoff    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the key used when a request carries no caller credentials.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout. The HTTP client is copied first,
// so a client passed to WithHTTPClient is left untouched.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// WithRateLimit sets the requests per second. Zero or less disables limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithRetry sets how often a failed request is attempted and the initial backoff.
func WithRetry(maxTries int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxTries = maxTries
		c.backoff = backoff
	}
}

// NewClient creates a client for the data-access layer at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxTries:   1,
		backoff:    DefaultBackoff,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) post(ctx context.Context, path string, qc common.QueryContext, payload Request) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	return util.RetryWithContext(ctx, c.maxTries, c.backoff, func(ctx context.Context) ([]byte, error) {
		b, err := c.do(ctx, path, qc.Authorization, body)
		if err != nil && !retryable(err) {
			return nil, util.NewPermanent(err)
		}
		return b, err
	})
}

func (c *Client) do(ctx context.Context, path, authorization string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	switch {
	case authorization != "":
		req.Header.Set("Authorization", authorization)
	case c.apiKey != "":
		req.Header.Set("x-api-key", c.apiKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	logger.Debug("[DataAccess] POST", "path", path, "status", resp.StatusCode, "took", time.Since(start))

	if err := checkHTTPErrors(resp, path); err != nil {
		return nil, err
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetworkError, err)
	}
	if !gjson.ValidBytes(b) {
		return nil, fmt.Errorf("%w: body is not JSON", ErrInvalidResponse)
	}
	return b, nil
}

func decodePath[T any](body []byte, path string) (*T, bool, error) {
	res := gjson.GetBytes(body, path)
	if !res.Exists() || res.Type == gjson.Null {
		return nil, false, nil
	}
	var out T
	if err := json.Unmarshal([]byte(res.Raw), &out); err != nil {
		return nil, false, fmt.Errorf("%w: decoding %s: %v", ErrInvalidResponse, path, err)
	}
	return &out, true, nil
}

// RelationshipModels returns the relationship definitions of entityType's
// composite model, keyed by relationship-type name in schema order. A model
// without relationships yields an empty mapping.
func (c *Client) RelationshipModels(ctx context.Context, qc common.QueryContext, entityType string) (*common.RelationshipModels, error) {
	body, err := c.post(ctx, PathCompositeModel, qc, compositeModelRequest(qc, entityType))
	if err != nil {
		return nil, fmt.Errorf("fetching composite model of %s: %w", entityType, err)
	}

	models, ok, err := decodePath[common.RelationshipModels](body, pathModelRelationship)
	if err != nil {
		return nil, err
	}
	if !ok {
		return orderedmap.New[string, []common.RelationshipTypeModel](), nil
	}
	return models, nil
}

// GetEntity fetches one entity restricted to entityType with the given
// relationship types. A non-success status is reported in the result, not as
// an error.
func (c *Client) GetEntity(ctx context.Context, qc common.QueryContext, id, entityType string, relTypes []string) (common.EntityFetch, error) {
	body, err := c.post(ctx, PathEntity, qc, entityRequest(qc, id, entityType, relTypes))
	if err != nil {
		return common.EntityFetch{}, fmt.Errorf("fetching entity %s: %w", id, err)
	}

	if gjson.GetBytes(body, pathStatus).String() != StatusSuccess {
		return common.EntityFetch{}, nil
	}

	entity, _, err := decodePath[common.Entity](body, pathFirstEntity)
	if err != nil {
		return common.EntityFetch{}, err
	}
	return common.EntityFetch{Success: true, Entity: entity}, nil
}

// GetEntityContexts fetches the context scopes of an entity. It returns nil
// when the entity is unknown.
func (c *Client) GetEntityContexts(ctx context.Context, qc common.QueryContext, id, entityType string) (*common.Entity, error) {
	body, err := c.post(ctx, PathEntityContext, qc, entityContextRequest(id, entityType))
	if err != nil {
		return nil, fmt.Errorf("fetching contexts of %s: %w", id, err)
	}

	entity, _, err := decodePath[common.Entity](body, pathFirstContextual)
	return entity, err
}

// GetEntityManageModel fetches the manage model of entityType with all its
// attributes. It returns nil when there is no such model.
func (c *Client) GetEntityManageModel(ctx context.Context, qc common.QueryContext, entityType string) (*common.Entity, error) {
	body, err := c.post(ctx, PathEntityModel, qc, manageModelRequest(entityType))
	if err != nil {
		return nil, fmt.Errorf("fetching manage model of %s: %w", entityType, err)
	}

	model, _, err := decodePath[common.Entity](body, pathFirstModel)
	return model, err
}

// SearchEntities returns the entities matching sr, in response order.
func (c *Client) SearchEntities(ctx context.Context, qc common.QueryContext, sr SearchRequest) ([]common.Entity, error) {
	body, err := c.post(ctx, PathEntity, qc, searchRequest(sr))
	if err != nil {
		return nil, fmt.Errorf("searching %s entities: %w", sr.EntityType, err)
	}

	entities, ok, err := decodePath[[]common.Entity](body, pathEntities)
	if err != nil || !ok {
		return nil, err
	}
	return *entities, nil
}
