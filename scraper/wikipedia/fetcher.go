package wikipedia

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"spotify-records/config"
	"spotify-records/utils"
)

// PageFetcher downloads one page and returns its HTML.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// HTTPFetcher performs a plain GET with a browser-like User-Agent.
type HTTPFetcher struct {
	client *resty.Client
	logger *utils.Logger
}

// NewHTTPFetcher creates an HTTPFetcher. A zero timeout leaves the client without one.
func NewHTTPFetcher(userAgent string, timeout time.Duration, logger *utils.Logger) *HTTPFetcher {
	client := resty.New()
	client.SetHeader("user-agent", userAgent)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPFetcher{client: client, logger: logger}
}

// Fetch issues the GET. Any status other than 200 is a *FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.logger.Debug("[fetcher] GET %s", url)

	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return "", fmt.Errorf("fetcher: get %s: %w", url, err)
	}
	if res.StatusCode() != http.StatusOK {
		return "", &FetchError{URL: url, StatusCode: res.StatusCode()}
	}

	f.logger.Debug("[fetcher] %s answered %d (%d bytes)", url, res.StatusCode(), len(res.Body()))
	return string(res.Body()), nil
}

// retryingFetcher runs another fetcher under the retry policy.
type retryingFetcher struct {
	next  PageFetcher
	retry *utils.RetryConfig
}

func (r *retryingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	var body string
	err := r.retry.Do(ctx, "fetch-page", func() error {
		var err error
		body, err = r.next.Fetch(ctx, url)
		return err
	})
	return body, err
}

// NewFetcher builds the fetcher selected by cfg.FetchMode, wrapped in the retry policy.
func NewFetcher(cfg *config.Config, logger *utils.Logger) (PageFetcher, error) {
	var next PageFetcher
	switch cfg.FetchMode {
	case config.FetchModeHTTP, "":
		next = NewHTTPFetcher(cfg.UserAgent, cfg.HTTPTimeout, logger)
	case config.FetchModeBrowser:
		next = NewBrowserFetcher(cfg.UserAgent, cfg.ChromeBin, cfg.HTTPTimeout, logger)
	default:
		return nil, fmt.Errorf("fetcher: unknown fetch mode %q", cfg.FetchMode)
	}

	return newRetryingFetcher(next, cfg.MaxRetries, 2*time.Second, logger), nil
}

func newRetryingFetcher(next PageFetcher, attempts int, delay time.Duration, logger *utils.Logger) *retryingFetcher {
	return &retryingFetcher{
		next: next,
		retry: &utils.RetryConfig{
			MaxAttempts: attempts,
			BaseDelay:   delay,
			Logger:      logger,
			Retryable:   retryableFetch,
		},
	}
}

// retryableFetch rejects client errors: a 4xx answer will not change on a retry.
func retryableFetch(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) && fe.StatusCode > 0 && fe.StatusCode < http.StatusInternalServerError {
		return false
	}
	return true
}
