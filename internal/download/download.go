// Package download fetches installer artifacts with progress reporting.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/thoreinstein/pyvm/internal/errors"
	"github.com/thoreinstein/pyvm/internal/logging"
	"github.com/thoreinstein/pyvm/pkg/fileutil"
)

// DefaultTimeout bounds a whole download.
const DefaultTimeout = 120 * time.Second

// HTTPClient is the subset of *http.Client the downloader needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Downloader streams a URL to disk.
type Downloader struct {
	Client  HTTPClient
	Timeout time.Duration
	// Progress receives "\rDownloading... N%" updates. Nil disables them.
	Progress  io.Writer
	UserAgent string
	Logger    *slog.Logger
}

// New returns a downloader with default settings.
func New(progress io.Writer, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = logging.NewDiscard()
	}
	return &Downloader{
		Client:    http.DefaultClient,
		Timeout:   DefaultTimeout,
		Progress:  progress,
		UserAgent: "pyvm",
		Logger:    logger,
	}
}

// Fetch downloads rawURL to dest. dest only exists once the body has been
// received completely; a short body or an interrupted transfer leaves
// nothing behind.
func (d *Downloader) Fetch(ctx context.Context, rawURL, dest string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return errors.Newf("refusing to download %q: not an http(s) URL", rawURL)
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.Wrap(err, "building download request")
	}
	if d.UserAgent != "" {
		req.Header.Set("User-Agent", d.UserAgent)
	}

	d.Logger.Info("downloading", "url", rawURL, "dest", dest)
	resp, err := d.Client.Do(req)
	if err != nil {
		return d.classify(ctx, err, rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Mark(
			errors.Newf("GET %s: unexpected status %s", rawURL, resp.Status),
			errors.ErrNetwork,
		)
	}

	body := io.Reader(resp.Body)
	var pr *progressReader
	if d.Progress != nil {
		pr = &progressReader{r: resp.Body, w: d.Progress, total: resp.ContentLength, last: -1}
		body = pr
	}
	if resp.ContentLength > 0 {
		body = &exactReader{r: body, want: resp.ContentLength}
	}

	n, err := fileutil.AtomicWriteReader(dest, body, 0o755)
	if pr != nil {
		pr.finish()
	}
	if err != nil {
		return d.classify(ctx, err, rawURL)
	}

	d.Logger.Debug("download complete", "bytes", n, "dest", dest)
	return nil
}

func (d *Downloader) classify(ctx context.Context, err error, rawURL string) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.Mark(errors.Newf("downloading %s: timed out", rawURL), errors.ErrNetwork)
	case ctx.Err() != nil:
		return errors.Wrap(context.Canceled, "download interrupted")
	case errors.Is(err, errShortBody):
		return errors.Mark(errors.Wrapf(err, "downloading %s", rawURL), errors.ErrNetwork)
	}
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return errors.Wrapf(err, "saving %s", rawURL)
	}
	return errors.Mark(errors.Wrapf(err, "downloading %s", rawURL), errors.ErrNetwork)
}

var errShortBody = errors.New("body shorter than Content-Length")

// exactReader fails if the stream ends before want bytes.
type exactReader struct {
	r    io.Reader
	want int64
	got  int64
}

func (e *exactReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	e.got += int64(n)
	if err == io.EOF && e.got < e.want {
		return n, errors.Wrapf(errShortBody, "got %d of %d bytes", e.got, e.want)
	}
	return n, err
}

// progressReader reports whole-percent progress, or a byte count when the
// size is unknown.
type progressReader struct {
	r     io.Reader
	w     io.Writer
	total int64
	done  int64
	last  int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.done += int64(n)
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.total > 0 {
		percent := p.done * 100 / p.total
		if percent != p.last {
			fmt.Fprintf(p.w, "\rDownloading... %d%%", percent)
			p.last = percent
		}
		return
	}
	// Unknown size: report every MiB.
	if mib := p.done >> 20; mib != p.last {
		fmt.Fprintf(p.w, "\rDownloading... %d MiB", mib)
		p.last = mib
	}
}

func (p *progressReader) finish() {
	if p.done > 0 {
		fmt.Fprintln(p.w)
	}
}
