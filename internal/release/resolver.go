// Package release resolves the latest stable Python release from the
// python.org downloads index.
package release

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/logging"
)

const (
	// DefaultIndexURL is the upstream downloads index.
	DefaultIndexURL = "https://www.python.org/downloads/"
	// DefaultTimeout bounds the single index fetch.
	DefaultTimeout = 15 * time.Second

	maxIndexBytes = 8 << 20
)

// HTTPClient is the subset of *http.Client the resolver needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithIndexURL overrides the downloads index location.
func WithIndexURL(u string) Option {
	return func(r *Resolver) {
		if u != "" {
			r.indexURL = u
		}
	}
}

// WithHTTPClient sets the client used for the fetch.
func WithHTTPClient(c HTTPClient) Option {
	return func(r *Resolver) {
		if c != nil {
			r.client = c
		}
	}
}

// WithTimeout sets the fetch timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(r *Resolver) {
		if ua != "" {
			r.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver fetches the downloads index. It performs exactly one request per
// call and keeps no cache between calls.
type Resolver struct {
	indexURL  string
	client    HTTPClient
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

// NewResolver returns a resolver for the python.org index.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		indexURL:  DefaultIndexURL,
		client:    http.DefaultClient,
		timeout:   DefaultTimeout,
		userAgent: "pyvm",
		logger:    logging.NewDiscard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IndexURL returns the configured index location.
func (r *Resolver) IndexURL() string {
	return r.indexURL
}

// FetchLatestStable returns the highest stable release on the index.
func (r *Resolver) FetchLatestStable(ctx context.Context) (Candidate, error) {
	candidates, err := r.Candidates(ctx)
	if err != nil {
		return Candidate{}, err
	}

	latest, ok := Latest(candidates)
	if !ok {
		return Candidate{}, errors.Mark(
			errors.Newf("no stable release among %d candidates", len(candidates)),
			errors.ErrParse,
		)
	}
	r.logger.Debug("resolved latest stable", "version", latest.Version, "url", latest.URL)
	return latest, nil
}

// Candidates fetches and parses the index.
func (r *Resolver) Candidates(ctx context.Context) ([]Candidate, error) {
	base, err := url.Parse(r.indexURL)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "index url %q", r.indexURL), errors.ErrInvalidConfig)
	}

	body, err := r.fetch(ctx)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	candidates, err := ParseIndex(io.LimitReader(body, maxIndexBytes), base)
	if err != nil {
		// A body cut short by cancellation or our timeout is not a markup
		// problem.
		if body.ctx.Err() != nil {
			return nil, r.networkError(ctx, body.ctx, err)
		}
		return nil, err
	}
	r.logger.Log(ctx, logging.LevelTrace, "parsed release index", "candidates", len(candidates))
	return candidates, nil
}

func (r *Resolver) fetch(parent context.Context) (*cancelBody, error) {
	ctx, cancel := context.WithTimeout(parent, r.timeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.indexURL, nil)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "building index request")
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html")

	r.logger.Debug("fetching release index", "url", r.indexURL)
	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		err = r.networkError(parent, ctx, err)
		cancel()
		return nil, err
	}
	r.logger.Log(ctx, logging.LevelTrace, "index response",
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, errors.Mark(
			errors.Newf("GET %s: unexpected status %s", r.indexURL, resp.Status),
			errors.ErrNetwork,
		)
	}
	return &cancelBody{ReadCloser: resp.Body, ctx: ctx, cancel: cancel}, nil
}

// networkError classifies a failed request. parent is the caller's context
// and ctx the request context carrying our timeout. Cancellation by the
// caller stays a cancellation; the timeout and transport failures are
// network errors.
func (r *Resolver) networkError(parent, ctx context.Context, err error) error {
	if errors.Is(parent.Err(), context.Canceled) {
		return errors.Wrap(context.Canceled, "fetching release index")
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Mark(
			errors.Newf("fetching %s: timed out after %s", r.indexURL, r.timeout),
			errors.ErrNetwork,
		)
	}
	return errors.Mark(errors.Wrapf(err, "fetching %s", r.indexURL), errors.ErrNetwork)
}

// cancelBody releases the request context when the body is closed.
type cancelBody struct {
	io.ReadCloser
	ctx    context.Context
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
