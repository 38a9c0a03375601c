package vk

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/vkdirty/vktoken/internal/config"
	"github.com/vkdirty/vktoken/internal/util"
)

// userAgent identifies the client on every request of a flow.
const userAgent = "vktoken/1.0"

// PageResponse is the outcome of one transport round trip after all redirects
// have been followed.
type PageResponse struct {
	// StatusCode is the HTTP status of the final response.
	StatusCode int
	// Body is the final response body decoded as text.
	Body string
	// FinalURL is the fully resolved URL of the last request in the redirect
	// chain, fragment included.
	FinalURL string
}

// Session is the transport for exactly one authorization flow. All requests
// share one cookie jar; the jar is never exposed and never reused across
// flows.
type Session struct {
	client *http.Client
}

// newSession builds a flow-scoped HTTP client with a fresh cookie jar,
// transparent redirect following, and transport settings from the config.
func newSession(cfg *config.Config) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(config.DefaultRequestTimeoutSeconds) * time.Second
	if cfg != nil && cfg.RequestTimeout > 0 {
		timeout = time.Duration(cfg.RequestTimeout) * time.Second
	}

	client := &http.Client{Jar: jar, Timeout: timeout}
	if cfg != nil && cfg.BrowserTLS {
		client.Transport = newBrowserRoundTripper(cfg)
	} else {
		client = util.SetProxy(cfg, client)
	}
	return &Session{client: client}, nil
}

// Get fetches the URL and follows redirects.
func (s *Session) Get(ctx context.Context, rawURL string) (*PageResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	return s.do(req)
}

// PostForm submits fields as an urlencoded form body and follows redirects.
// A nil fields map posts an empty body.
func (s *Session) PostForm(ctx context.Context, rawURL string, fields map[string]string) (*PageResponse, error) {
	form := url.Values{}
	for name, value := range fields {
		form.Set(name, value)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req)
}

func (s *Session) do(req *http.Request) (*PageResponse, error) {
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: req.URL.String(), Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: req.URL.String(), Err: err}
	}

	finalURL := req.URL.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &PageResponse{
		StatusCode: resp.StatusCode,
		Body:       string(body),
		FinalURL:   finalURL,
	}, nil
}
