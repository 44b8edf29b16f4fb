// Package fetch downloads the external journal databases (the NLM
// catalog dump and the MathSciNet serials list) to local files for the
// parsers to consume.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// Options configures a Client. Zero values fall back to the defaults
// noted on each field.
type Options struct {
	// Timeout for a single HTTP request. Defaults to 5 minutes; the
	// NLM dump is tens of megabytes.
	Timeout time.Duration

	// MaxRetries is the number of attempts per download. Defaults to 3.
	MaxRetries int

	// RetryBaseDelay is the delay before the first retry, doubled on
	// each subsequent one. Defaults to 5 seconds.
	RetryBaseDelay time.Duration

	// MaxAge makes Download skip the request when the local file is
	// non-empty and younger than this. Zero means always re-download.
	MaxAge time.Duration

	// HTTPClient overrides the default client, for tests.
	HTTPClient *http.Client
}

// Client downloads journal list files with retries and a freshness
// check on the local copy.
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
	maxAge         time.Duration
}

// NewClient creates a download client from the given options.
func NewClient(options Options) *Client {
	if options.Timeout <= 0 {
		options.Timeout = 5 * time.Minute
	}
	if options.MaxRetries <= 0 {
		options.MaxRetries = 3
	}
	if options.RetryBaseDelay <= 0 {
		options.RetryBaseDelay = 5 * time.Second
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: options.Timeout}
	}
	return &Client{
		httpClient:     httpClient,
		maxRetries:     options.MaxRetries,
		retryBaseDelay: options.RetryBaseDelay,
		maxAge:         options.MaxAge,
	}
}

// Download fetches a URL to a local file. It returns the number of
// bytes written and whether a fresh local copy made the request
// unnecessary. Transient failures (5xx, network errors) are retried
// with exponential backoff. The download lands in a temp file first,
// so an existing local copy survives a failed attempt.
func (client *Client) Download(ctx context.Context, downloadURL string, localPath string) (int64, bool, error) {
	if info, err := os.Stat(localPath); err == nil && info.Size() > 0 {
		if client.maxAge > 0 && time.Since(info.ModTime()) < client.maxAge {
			return info.Size(), true, nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return 0, false, fmt.Errorf("failed to create directory for %s: %w", localPath, err)
	}

	var lastErr error
	for attempt := 0; attempt < client.maxRetries; attempt++ {
		if attempt > 0 {
			delay := client.retryBaseDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return 0, false, ctx.Err()
			}
		}

		bytesWritten, err := client.downloadAttempt(ctx, downloadURL, localPath)
		if err == nil {
			return bytesWritten, false, nil
		}
		lastErr = err
		if !isRetryableError(err) {
			return 0, false, err
		}
	}
	return 0, false, fmt.Errorf("failed after %d attempts: %w", client.maxRetries, lastErr)
}

func (client *Client) downloadAttempt(ctx context.Context, downloadURL string, localPath string) (int64, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return 0, fmt.Errorf("invalid URL %s: %w", downloadURL, err)
	}
	response, err := client.httpClient.Do(request)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s: %w", downloadURL, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return 0, &statusError{url: downloadURL, statusCode: response.StatusCode}
	}

	// Write to a temp file first so a failed download never clobbers a
	// good local copy.
	tempFile, err := os.CreateTemp(filepath.Dir(localPath), filepath.Base(localPath)+".part*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	bytesWritten, err := io.Copy(tempFile, response.Body)
	if closeErr := tempFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tempFile.Name())
		return 0, fmt.Errorf("failed to write %s: %w", localPath, err)
	}
	if err := os.Rename(tempFile.Name(), localPath); err != nil {
		os.Remove(tempFile.Name())
		return 0, fmt.Errorf("failed to move download into place: %w", err)
	}
	return bytesWritten, nil
}

// statusError marks non-200 responses so retry logic can distinguish
// server errors from client errors.
type statusError struct {
	url        string
	statusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.statusCode, e.url)
}

func isRetryableError(err error) bool {
	var status *statusError
	if errors.As(err, &status) {
		return status.statusCode >= 500
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	// Plain connection failures (refused, reset) come through as *url.Error
	// wrapping *net.OpError.
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
