package feed

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Fetcher issues page requests and enclosure probes. It sets no deadline of
// its own; callers bound latency through ctx.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
}

func NewFetcher(httpClient *http.Client, userAgent string) *Fetcher {
	return &Fetcher{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Fetch downloads a page and returns its body decoded to UTF-8.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	body, err := decodeBody(data, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	return body, nil
}

// Probe issues a HEAD request and returns the Content-Length and
// Content-Type headers, empty when absent.
func (f *Fetcher) Probe(ctx context.Context, url string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return "", "", &ProbeError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", "", &ProbeError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusMethodNotAllowed, resp.StatusCode == http.StatusNotImplemented:
		// Servers that refuse HEAD still serve the enclosure; metadata is unknown.
		return "", "", nil
	case resp.StatusCode >= http.StatusBadRequest:
		return "", "", &ProbeError{URL: url, StatusCode: resp.StatusCode}
	}

	return resp.Header.Get("Content-Length"), resp.Header.Get("Content-Type"), nil
}

// decodeBody honours the charset of the Content-Type header. Without one,
// valid UTF-8 passes through and anything else is sniffed from <meta>.
func decodeBody(data []byte, contentType string) (string, error) {
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if label := params["charset"]; label != "" {
			if enc, err := htmlindex.Get(label); err == nil {
				return decodeWith(enc, data)
			}
		}
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	enc, _, _ := charset.DetermineEncoding(data, "")
	return decodeWith(enc, data)
}

func decodeWith(enc encoding.Encoding, data []byte) (string, error) {
	decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", fmt.Errorf("failed to decode body: %w", err)
	}
	return string(decoded), nil
}
