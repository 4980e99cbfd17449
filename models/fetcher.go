package models

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/context/ctxhttp"

	e "github.com/microcosm-cc/avatars/errors"
	h "github.com/microcosm-cc/avatars/helpers"
)

// FetchResult is the outcome of a fetch that reached the avatar service.
// Found is false for every answer other than HTTP 200.
type FetchResult struct {
	Found      bool
	StatusCode int
	MimeType   string
	Bytes      []byte
}

// Fetcher retrieves the image for a single hash. A non-nil error means the
// network call itself failed; an avatar service that answers without an
// avatar is reported through FetchResult.Found.
type Fetcher interface {
	Fetch(
		ctx context.Context,
		baseURL string,
		hash string,
		timeout time.Duration,
	) (
		FetchResult,
		error,
	)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context, baseURL string, hash string, timeout time.Duration) (FetchResult, error)

// Fetch calls f
func (f FetcherFunc) Fetch(
	ctx context.Context,
	baseURL string,
	hash string,
	timeout time.Duration,
) (
	FetchResult,
	error,
) {
	return f(ctx, baseURL, hash, timeout)
}

// HTTPFetcher fetches avatars over HTTP(S). Connecting, waiting for the
// response headers and every read of the body are each bounded by the
// timeout given to Fetch.
type HTTPFetcher struct {
	UserAgent string

	mu         sync.Mutex
	transports map[time.Duration]*http.Transport
}

// NewHTTPFetcher returns a fetcher identifying itself with userAgent
func NewHTTPFetcher(userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		UserAgent:  userAgent,
		transports: make(map[time.Duration]*http.Transport),
	}
}

func (f *HTTPFetcher) client(timeout time.Duration) *http.Client {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.transports == nil {
		f.transports = make(map[time.Duration]*http.Transport)
	}

	t, ok := f.transports[timeout]
	if !ok {
		dialer := &net.Dialer{Timeout: timeout}
		t = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConnsPerHost:   2,
			IdleConnTimeout:       90 * time.Second,
		}
		f.transports[timeout] = t
	}

	return &http.Client{Transport: t}
}

// CloseIdleConnections closes idle connections of every transport
func (f *HTTPFetcher) CloseIdleConnections() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.transports {
		t.CloseIdleConnections()
	}
}

// Fetch performs GET baseURL+hash
func (f *HTTPFetcher) Fetch(
	ctx context.Context,
	baseURL string,
	hash string,
	timeout time.Duration,
) (
	FetchResult,
	error,
) {
	if timeout <= 0 {
		timeout = h.DefaultTimeout
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	url := baseURL + hash
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return FetchResult{}, e.Wrap("models.HTTPFetcher.Fetch", e.InvalidURL, err)
	}

	// Every fetch must reach the avatar service
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Accept", "image/*")
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	resp, err := ctxhttp.Do(ctx, f.client(timeout), req)
	if err != nil {
		return FetchResult{}, e.Wrap("models.HTTPFetcher.Fetch", e.NetworkFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if glog.V(2) {
			glog.Infof("GET %s returned %d, no avatar", url, resp.StatusCode)
		}
		return FetchResult{StatusCode: resp.StatusCode}, nil
	}

	body := newIdleTimeoutReader(resp.Body, timeout, cancel)
	defer body.Stop()

	data, err := io.ReadAll(io.LimitReader(body, h.MaxAvatarSize+1))
	if err != nil {
		if body.Expired() {
			err = fmt.Errorf("read timed out after %s: %w", timeout, err)
		}
		return FetchResult{}, e.Wrap("models.HTTPFetcher.Fetch", e.NetworkFailure, err)
	}
	if int64(len(data)) > h.MaxAvatarSize {
		return FetchResult{}, e.New(
			"models.HTTPFetcher.Fetch",
			e.NetworkFailure,
			fmt.Sprintf("avatar larger than %d bytes", h.MaxAvatarSize),
		)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}

	return FetchResult{
		Found:      true,
		StatusCode: resp.StatusCode,
		MimeType:   mimeType,
		Bytes:      data,
	}, nil
}

// idleTimeoutReader cancels the request when no data has been read for
// timeout, the way a socket read timeout behaves
type idleTimeoutReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer

	mu      sync.Mutex
	expired bool
}

func newIdleTimeoutReader(r io.Reader, timeout time.Duration, cancel context.CancelFunc) *idleTimeoutReader {
	t := &idleTimeoutReader{r: r, timeout: timeout}
	t.timer = time.AfterFunc(timeout, func() {
		t.mu.Lock()
		t.expired = true
		t.mu.Unlock()
		cancel()
	})
	return t
}

func (t *idleTimeoutReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 && err == nil {
		t.timer.Reset(t.timeout)
	}
	return n, err
}

func (t *idleTimeoutReader) Stop() {
	t.timer.Stop()
}

func (t *idleTimeoutReader) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}
