package requester

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"profilecrawler/internal/usecase"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type roundTripperFunc func(r *http.Request) (*http.Response, error)

func (rt roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return rt(r)
}

func response(status int, body io.Reader, header http.Header) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(body),
	}
}

func TestNewRequester(t *testing.T) {
	l := zap.NewExample()
	req := NewRequester(3*time.Second, l, nil)
	assert.NotNil(t, req, "Create new requester failed")
	assert.Equal(t, defaultUserAgent, req.userAgent)
}

func TestReqFetch(t *testing.T) {
	l := zap.NewExample()
	var gotUA string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<html><title>Document</title></html>"))
	}))
	defer s.Close()

	req := NewRequester(10*time.Second, l, nil, WithUserAgent("test-agent"))
	body, err := req.Fetch(context.Background(), s.URL)

	assert.NoError(t, err)
	assert.Contains(t, body, "Document")
	assert.Equal(t, "test-agent", gotUA)
}

func TestReqFetchNotFound(t *testing.T) {
	l := zap.NewExample()
	s := httptest.NewServer(http.NotFoundHandler())
	defer s.Close()

	req := NewRequester(10*time.Second, l, nil)
	_, err := req.Fetch(context.Background(), s.URL+"/user/nobody")

	var re *usecase.RemoteRejectionError
	assert.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
	assert.False(t, usecase.IsTransport(err))
}

func TestReqFetchUnreachable(t *testing.T) {
	l := zap.NewExample()
	s := httptest.NewServer(http.NotFoundHandler())
	url := s.URL
	s.Close()

	req := NewRequester(2*time.Second, l, nil)
	_, err := req.Fetch(context.Background(), url)

	assert.True(t, usecase.IsTransport(err))
	assert.False(t, usecase.IsRemoteRejection(err))
}

func TestReqFetchTimeout(t *testing.T) {
	l := zap.NewExample()
	req := NewRequester(50*time.Millisecond, l, roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		<-r.Context().Done()
		return nil, r.Context().Err()
	}))
	_, err := req.Fetch(context.Background(), "https://example.com")
	assert.True(t, usecase.IsTransport(err))
}

func TestReqFetchDecoding(t *testing.T) {
	l := zap.NewExample()
	const text = "<html><body>compressed</body></html>"

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, _ = zw.Write([]byte(text))
	_ = zw.Close()

	var br bytes.Buffer
	bw := brotli.NewWriter(&br)
	_, _ = bw.Write([]byte(text))
	_ = bw.Close()

	var zl bytes.Buffer
	zlw := zlib.NewWriter(&zl)
	_, _ = zlw.Write([]byte(text))
	_ = zlw.Close()

	var raw bytes.Buffer
	fw, _ := flate.NewWriter(&raw, flate.DefaultCompression)
	_, _ = fw.Write([]byte(text))
	_ = fw.Close()

	cases := []struct {
		name    string
		enc     string
		payload []byte
	}{
		{"gzip", "gzip", gz.Bytes()},
		{"br", "br", br.Bytes()},
		{"deflate zlib", "deflate", zl.Bytes()},
		{"deflate raw", "deflate", raw.Bytes()},
	}
	for _, tc := range cases {
		payload := tc.payload
		enc := tc.enc
		t.Run(tc.name, func(t *testing.T) {
			req := NewRequester(time.Second, l, roundTripperFunc(func(r *http.Request) (*http.Response, error) {
				h := http.Header{}
				h.Set("Content-Encoding", enc)
				return response(http.StatusOK, bytes.NewReader(payload), h), nil
			}))
			body, err := req.Fetch(context.Background(), "https://example.com")
			assert.NoError(t, err)
			assert.Equal(t, text, body)
		})
	}
}

func TestReqFetchBodyLimit(t *testing.T) {
	l := zap.NewExample()
	req := NewRequester(time.Second, l, roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return response(http.StatusOK, strings.NewReader(strings.Repeat("x", 64)), nil), nil
	}), WithMaxBodyBytes(16))

	_, err := req.Fetch(context.Background(), "https://example.com")
	assert.True(t, usecase.IsTransport(err))
	assert.True(t, errors.Is(err, errBodyTooLarge))
}
