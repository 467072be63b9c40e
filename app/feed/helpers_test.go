package feed

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/lysyi3m/html-comb/app/document"
)

// fakeTransport serves canned pages for GET and canned headers for HEAD and
// counts every request by method and URL.
type fakeTransport struct {
	mu       sync.Mutex
	pages    map[string]string
	heads    map[string]http.Header
	failures map[string]int // URL -> status code
	requests map[string]int // "METHOD URL" -> count
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		pages:    make(map[string]string),
		heads:    make(map[string]http.Header),
		failures: make(map[string]int),
		requests: make(map[string]int),
	}
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	url := req.URL.String()
	f.requests[req.Method+" "+url]++

	resp := &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader("")),
		Request:    req,
	}

	if status, ok := f.failures[url]; ok {
		resp.StatusCode = status
		return resp, nil
	}

	switch req.Method {
	case http.MethodGet:
		page, ok := f.pages[url]
		if !ok {
			resp.StatusCode = http.StatusNotFound
			return resp, nil
		}
		resp.Header.Set("Content-Type", "text/html; charset=utf-8")
		resp.Body = io.NopCloser(strings.NewReader(page))
	case http.MethodHead:
		if header, ok := f.heads[url]; ok {
			resp.Header = header.Clone()
		}
	default:
		return nil, fmt.Errorf("unexpected method %s", req.Method)
	}

	return resp, nil
}

func (f *fakeTransport) count(method, url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[method+" "+url]
}

func (f *fakeTransport) total(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for key, c := range f.requests {
		if strings.HasPrefix(key, method+" ") {
			n += c
		}
	}
	return n
}

func (f *fakeTransport) fetcher() *Fetcher {
	return NewFetcher(&http.Client{Transport: f}, "HTML-Comb/test")
}

func mustParse(t *testing.T, body string) *document.Document {
	t.Helper()
	doc, err := document.Parse(body)
	if err != nil {
		t.Fatalf("Failed to parse document: %v", err)
	}
	return doc
}

const eventsPage = `<!DOCTYPE html>
<html lang="en">
<head><title>Campus Events</title></head>
<body>
  <ul>
    <li>
      <h3>Opening Lecture</h3>
      <p>Welcome talk in the main hall</p>
      <a href="https://example.com/events/1">Details</a>
      <time datetime="2024-03-01">1 March</time>
      <audio src="https://cdn.example.com/audio/1.mp3" data-length="1000" type="audio/mpeg"></audio>
    </li>
    <li>
      <h3>Closing Party</h3>
      <p>Music and <b>snacks</b></p>
      <a href="https://example.com/events/2">Details</a>
      <time datetime="2024-03-02">2 March</time>
      <audio src="https://cdn.example.com/audio/2.mp3" data-length="2000" type="audio/ogg"></audio>
    </li>
  </ul>
</body>
</html>`

const mismatchPage = `<!DOCTYPE html>
<html>
<head><title>Campus Events</title></head>
<body>
  <ul>
    <li><h3>Opening Lecture</h3><p>Welcome talk</p><a href="https://example.com/events/1">Details</a></li>
    <li><h3>Closing Party</h3><a href="https://example.com/events/2">Details</a></li>
  </ul>
</body>
</html>`
