package sdk

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ClientConfig contains the configuration for creating a new SDK client.
type ClientConfig struct {
	// BaseURLs lists catalog server URLs (e.g., ["https://catalog1.example.org"]).
	// Every replica serves the same data; the client fails over in order.
	BaseURLs []string

	// HTTPClient is the HTTP client to use for requests.
	// Optional: if nil, a default client with reasonable timeouts will be created.
	HTTPClient *http.Client

	// RetryAttempts is the number of times to retry failed requests per URL.
	// Default: 3. Use a negative value to disable retries.
	RetryAttempts int

	// RetryWaitMin is the minimum wait time between retries.
	// Default: 500 milliseconds
	RetryWaitMin time.Duration

	// RetryWaitMax is the maximum wait time between retries.
	// Default: 10 seconds
	RetryWaitMax time.Duration

	// Timeout is the HTTP request timeout.
	// Default: 30 seconds
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// Validate checks if the client configuration is valid and sets defaults.
func (c *ClientConfig) Validate() error {
	if len(c.BaseURLs) == 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, ErrNoBaseURLs)
	}

	urls := make([]string, 0, len(c.BaseURLs))
	for i, url := range c.BaseURLs {
		url = strings.TrimSuffix(strings.TrimSpace(url), "/")
		if url == "" {
			return fmt.Errorf("%w: base URL at index %d is empty", ErrInvalidConfig, i)
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("%w: base URL must start with http:// or https://", ErrInvalidConfig)
		}
		urls = append(urls, url)
	}
	c.BaseURLs = urls

	switch {
	case c.RetryAttempts == 0:
		c.RetryAttempts = 3
	case c.RetryAttempts < 0:
		c.RetryAttempts = 0
	}

	if c.RetryWaitMin == 0 {
		c.RetryWaitMin = 500 * time.Millisecond
	}
	if c.RetryWaitMax == 0 {
		c.RetryWaitMax = 10 * time.Second
	}
	if c.RetryWaitMax < c.RetryWaitMin {
		return fmt.Errorf("%w: retry wait max %s is below min %s", ErrInvalidConfig, c.RetryWaitMax, c.RetryWaitMin)
	}

	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.UserAgent == "" {
		c.UserAgent = "sgci-catalog-sdk"
	}

	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{
			Timeout: c.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return nil
}
