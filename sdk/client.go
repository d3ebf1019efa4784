package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"sgci.io/catalog/models"
	"sgci.io/catalog/pkg/catalog"
)

// HeaderRequestID carries the per-request correlation ID.
const HeaderRequestID = "X-Request-ID"

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// Client is the SDK client for the SGCI resource catalog. Catalog replicas
// serve identical data, so the client fails over between BaseURLs and
// remembers the last instance that answered.
type Client struct {
	// BaseURLs is the list of catalog URLs tried in order.
	BaseURLs []string

	// HTTPClient is the HTTP client used for requests.
	HTTPClient *http.Client

	// RetryAttempts is the number of times to retry failed requests per URL.
	RetryAttempts int

	// RetryWaitMin is the minimum wait time between retries.
	RetryWaitMin time.Duration

	// RetryWaitMax is the maximum wait time between retries.
	RetryWaitMax time.Duration

	userAgent string

	// preferred is the URL of the last instance that answered.
	preferred string
	mu        sync.RWMutex
}

// NewClient creates a new SDK client with the given configuration.
func NewClient(config ClientConfig) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		BaseURLs:      config.BaseURLs,
		HTTPClient:    config.HTTPClient,
		RetryAttempts: config.RetryAttempts,
		RetryWaitMin:  config.RetryWaitMin,
		RetryWaitMax:  config.RetryWaitMax,
		userAgent:     config.UserAgent,
	}, nil
}

// ListResources fetches the resources matching q and decodes each record
// into its Storage or Compute variant. A record that cannot be decoded is
// reported as a *models.RecordError.
func (c *Client) ListResources(ctx context.Context, q ResourceQuery) ([]models.Resource, error) {
	path := "/api/v1/resources"
	if v := q.values(); len(v) > 0 {
		path += "?" + v.Encode()
	}

	var docs []catalog.Document
	if err := c.getJSON(ctx, path, &docs); err != nil {
		return nil, err
	}

	resources := make([]models.Resource, 0, len(docs))
	for i, doc := range docs {
		res, err := catalog.Decode(doc)
		if err != nil {
			return nil, &models.RecordError{Index: i, ID: doc.ID(), Err: err}
		}
		resources = append(resources, res)
	}
	return resources, nil
}

// Health queries the readiness probe of the first instance that answers.
// An unready instance yields an error wrapping ErrServiceUnavailable.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.getJSON(ctx, "/health/ready", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// getJSON performs a GET with failover and decodes the data field of the
// success envelope into dest.
func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	resp, err := c.doRequest(ctx, path)
	if err != nil {
		return err
	}
	defer drainAndCloseBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseErrorResponse(resp)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(env.Data))
	dec.UseNumber()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("failed to decode response data: %w", err)
	}
	return nil
}

// doRequest tries each instance in turn. Transport failures and retryable
// statuses move on to the next instance; any other response ends the loop.
func (c *Client) doRequest(ctx context.Context, path string) (*http.Response, error) {
	urls := c.buildURLList()
	if len(urls) == 0 {
		return nil, ErrNoBaseURLs
	}

	requestID := uuid.NewString()
	var lastErr error

	for _, baseURL := range urls {
		fullURL := baseURL + path
		newReq := func() (*http.Request, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
			if err != nil {
				return nil, err
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("User-Agent", c.userAgent)
			req.Header.Set(HeaderRequestID, requestID)
			return req, nil
		}

		resp, err := c.doRequestWithRetry(ctx, newReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if retryable(resp.StatusCode) {
			lastErr = parseErrorResponse(resp)
			drainAndCloseBody(resp)
			continue
		}

		c.setPreferred(baseURL)
		return resp, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrAllInstancesFailed, lastErr)
}

// buildURLList returns BaseURLs with the last answering instance first.
func (c *Client) buildURLList() []string {
	preferred := c.getPreferred()
	if preferred == "" {
		return c.BaseURLs
	}

	urls := make([]string, 0, len(c.BaseURLs))
	urls = append(urls, preferred)
	for _, u := range c.BaseURLs {
		if u != preferred {
			urls = append(urls, u)
		}
	}
	return urls
}

func (c *Client) getPreferred() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.preferred
}

func (c *Client) setPreferred(url string) {
	c.mu.Lock()
	c.preferred = url
	c.mu.Unlock()
}

// parseErrorResponse turns a non-2xx response into an *APIError.
func parseErrorResponse(resp *http.Response) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get(HeaderRequestID),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return apiErr
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.Message = string(bytes.TrimSpace(body))
		return apiErr
	}
	apiErr.Code = eb.Error
	apiErr.Message = eb.Message
	if eb.RequestID != "" {
		apiErr.RequestID = eb.RequestID
	}
	return apiErr
}

// IsNotReady reports whether err says the catalog cannot serve queries right
// now, either because its store is down or every instance failed.
func IsNotReady(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrAllInstancesFailed)
}
