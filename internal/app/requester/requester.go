package requester

import (
	"bufio"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"profilecrawler/internal/usecase"

	"github.com/andybalholm/brotli"
	"go.uber.org/zap"
)

const (
	defaultMaxBodyBytes = 5 << 20
	defaultUserAgent    = "profilecrawler/1.0"
)

var errBodyTooLarge = errors.New("response body exceeds limit")

type requester struct {
	timeout      time.Duration
	logger       *zap.Logger
	rt           http.RoundTripper
	userAgent    string
	maxBodyBytes int64
}

type Option func(*requester)

func WithUserAgent(ua string) Option {
	return func(r *requester) {
		if ua != "" {
			r.userAgent = ua
		}
	}
}

func WithMaxBodyBytes(n int64) Option {
	return func(r *requester) {
		if n > 0 {
			r.maxBodyBytes = n
		}
	}
}

// NewRequester builds the HTTP fetcher. A nil rt means http.DefaultTransport.
func NewRequester(timeout time.Duration, logger *zap.Logger, rt http.RoundTripper, opts ...Option) requester {
	logger.Debug("new requester initialize")
	r := requester{
		timeout:      timeout,
		logger:       logger,
		rt:           rt,
		userAgent:    defaultUserAgent,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

// Fetch returns the page body. Unreachable hosts yield a *usecase.TransportError,
// non-2xx answers a *usecase.RemoteRejectionError.
func (r requester) Fetch(ctx context.Context, url string) (string, error) {
	cl := &http.Client{
		Timeout:   r.timeout,
		Transport: r.rt,
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		r.logger.Error(fmt.Sprintf("error by get new request, url: %s", url))
		return "", &usecase.TransportError{Op: "fetch", URL: url, Err: err}
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := cl.Do(req)
	if err != nil {
		r.logger.Error("http.client error", zap.String("url", url), zap.Error(err))
		return "", &usecase.TransportError{Op: "fetch", URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		r.logger.Warn("unexpected status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return "", &usecase.RemoteRejectionError{Op: "fetch", URL: url, StatusCode: resp.StatusCode}
	}

	body, err := r.readBody(resp)
	if err != nil {
		r.logger.Error("read body error", zap.String("url", url), zap.Error(err))
		return "", &usecase.TransportError{Op: "fetch", URL: url, Err: err}
	}
	r.logger.Debug(fmt.Sprintf("fetched %s, %d bytes", url, len(body)))
	return string(body), nil
}

func (r requester) readBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		rc, err := inflate(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("deflate decode: %w", err)
		}
		defer rc.Close()
		reader = rc
	case "br":
		reader = brotli.NewReader(resp.Body)
	}

	body, err := io.ReadAll(io.LimitReader(reader, r.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > r.maxBodyBytes {
		return nil, fmt.Errorf("%w of %d bytes", errBodyTooLarge, r.maxBodyBytes)
	}
	return body, nil
}

// inflate reads HTTP "deflate", which is zlib-wrapped, and falls back to
// raw DEFLATE for servers that skip the zlib header.
func inflate(r io.Reader) (io.ReadCloser, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err == nil && isZlibHeader(head[0], head[1]) {
		return zlib.NewReader(br)
	}
	return flate.NewReader(br), nil
}

func isZlibHeader(cmf, flg byte) bool {
	return cmf&0x0f == 8 && cmf>>4 <= 7 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}
