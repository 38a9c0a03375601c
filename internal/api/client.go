// Package api is a thin helper for calling VK API methods with an access
// token acquired by the auth flow. It is not part of the flow itself.
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"github.com/vkdirty/vktoken/internal/config"
	"github.com/vkdirty/vktoken/internal/util"
)

const (
	// apiHost is VK's method-call endpoint.
	apiHost = "https://api.vk.com"
	// apiVersion is the protocol version attached to every call.
	apiVersion = "5.21"
)

// Error is a service-level failure reported inside an otherwise successful
// HTTP response.
type Error struct {
	// Code is VK's numeric error code.
	Code int64
	// Message is VK's error description.
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("vk api: error %d: %s", e.Code, e.Message)
}

// Client calls VK API methods on behalf of one access token.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates an API client using proxy and timeout settings from the
// configuration. A nil config uses library defaults.
func NewClient(cfg *config.Config, accessToken string) *Client {
	if cfg == nil {
		cfg = config.Default()
	}
	client := &http.Client{Timeout: time.Duration(cfg.RequestTimeout) * time.Second}
	return &Client{
		httpClient: util.SetProxy(cfg, client),
		baseURL:    apiHost,
		token:      accessToken,
	}
}

// Call performs a GET against the named API method and returns the `response`
// payload. A JSON body carrying an `error` object yields *Error.
func (c *Client) Call(ctx context.Context, method string, params map[string]string) (gjson.Result, error) {
	query := url.Values{}
	for k, v := range params {
		query.Set(k, v)
	}
	query.Set("v", apiVersion)
	query.Set("access_token", c.token)

	endpoint := c.baseURL + "/method/" + method + "?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("vk api: create request failed: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("vk api: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("vk api: read response failed: %w", err)
	}

	root := gjson.ParseBytes(body)
	if errObj := root.Get("error"); errObj.Exists() {
		return gjson.Result{}, &Error{
			Code:    errObj.Get("error_code").Int(),
			Message: errObj.Get("error_msg").String(),
		}
	}

	response := root.Get("response")
	if !response.Exists() {
		return gjson.Result{}, fmt.Errorf("vk api: no response field in %s reply", method)
	}
	return response, nil
}
