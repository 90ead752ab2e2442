package web

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// Error taxonomy for upstream data sources.
var (
	// ErrNetwork wraps transport failures and non-retriable HTTP statuses
	// after all retries are exhausted.
	ErrNetwork = errors.New("network error")
	// ErrDataSource wraps responses whose body is not the expected JSON.
	ErrDataSource = errors.New("data source error")
)

// Options is the immutable configuration for a Client. The zero value is
// usable; unset fields fall back to the defaults below.
type Options struct {
	// Timeout is the per-request timeout, default 30s.
	Timeout time.Duration
	// MaxAttempts is the total number of GET attempts, default 5.
	MaxAttempts int
	// BackoffBase is the exponential backoff base factor, default 600ms.
	BackoffBase time.Duration
	// AllowInsecureFallback permits one extra attempt without TLS
	// verification after a certificate failure.
	AllowInsecureFallback bool
	// Proxy is an optional proxy URL.
	Proxy string
	// Headers are set on every outbound request.
	Headers map[string]string
	// RequestsPerSecond paces outbound requests, 0 disables pacing.
	RequestsPerSecond float64
}

var retriableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client issues JSON GET requests with bounded retry/backoff and an
// optional one-time TLS-verification relaxation on certificate failures.
// No retry state is shared across calls.
type Client struct {
	opts     Options
	client   *http.Client
	insecure *http.Client
	limiter  *rate.Limiter
}

// NewClient builds a Client from the given options.
func NewClient(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = 5
	}
	if opts.BackoffBase == 0 {
		opts.BackoffBase = 600 * time.Millisecond
	}

	transport := &http.Transport{}
	insecureTransport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	if opts.Proxy != "" {
		if u, err := url.Parse(opts.Proxy); err == nil {
			transport.Proxy = http.ProxyURL(u)
			insecureTransport.Proxy = http.ProxyURL(u)
		}
	}

	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return &Client{
		opts:     opts,
		client:   &http.Client{Timeout: opts.Timeout, Transport: transport},
		insecure: &http.Client{Timeout: opts.Timeout, Transport: insecureTransport},
		limiter:  limiter,
	}
}

// GetJSON performs a GET with retry on transient server errors and returns
// the parsed JSON body. Only GET is ever retried.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values) (gjson.Result, error) {
	reqURL := rawURL
	if len(params) > 0 {
		reqURL = rawURL + "?" + params.Encode()
	}

	body, err := c.getWithRetry(ctx, reqURL)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("%w: invalid JSON from %s", ErrDataSource, rawURL)
	}
	return gjson.ParseBytes(body), nil
}

func (c *Client) getWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := c.opts.BackoffBase * time.Duration(1<<uint(attempt-1))
			log.Printf("[WARN] GET %s failed (attempt %d/%d): %v, retrying in %v",
				reqURL, attempt, c.opts.MaxAttempts, lastErr, backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		body, retry, err := c.doOnce(ctx, c.client, reqURL)
		if err == nil {
			return body, nil
		}
		lastErr = err

		if isCertError(err) {
			if !c.opts.AllowInsecureFallback {
				return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
			}
			// One extra attempt without certificate verification, then give up.
			log.Printf("[WARN] certificate verification failed for %s, retrying without verification", reqURL)
			body, _, ierr := c.doOnce(ctx, c.insecure, reqURL)
			if ierr == nil {
				return body, nil
			}
			return nil, fmt.Errorf("%w: insecure fallback: %v", ErrNetwork, ierr)
		}
		if !retry {
			return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
		}
	}
	return nil, fmt.Errorf("%w: all %d attempts exhausted: %v", ErrNetwork, c.opts.MaxAttempts, lastErr)
}

// doOnce performs a single request. The second return value reports
// whether the failure is transient and worth another attempt.
func (c *Client) doOnce(ctx context.Context, client *http.Client, reqURL string) ([]byte, bool, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, false, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, false, err
	}
	for k, v := range c.opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, retriableStatus[resp.StatusCode],
			fmt.Errorf("status %d from %s", resp.StatusCode, reqURL)
	}
	return body, false, nil
}

func isCertError(err error) bool {
	var certErr *tls.CertificateVerificationError
	return errors.As(err, &certErr)
}
