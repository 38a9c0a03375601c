// Package vktoken provides the public SDK surface for the VK token
// acquisition flow.
//
// It re-exports the flow, store, and API helper types so external projects
// can embed the module without importing internal packages.
package vktoken

import (
	"context"

	"github.com/vkdirty/vktoken/internal/api"
	"github.com/vkdirty/vktoken/internal/auth/vk"
	"github.com/vkdirty/vktoken/internal/config"
	"github.com/vkdirty/vktoken/internal/store"
)

// Flow types.
type (
	AuthRequest = vk.AuthRequest
	TokenResult = vk.TokenResult
	VKAuth      = vk.VKAuth
)

// Failure variants.
type (
	ValidationError      = vk.ValidationError
	PageStructureError   = vk.PageStructureError
	AuthRejectedError    = vk.AuthRejectedError
	CaptchaRequiredError = vk.CaptchaRequiredError
	MissingPhoneError    = vk.MissingPhoneError
	TokenMissingError    = vk.TokenMissingError
	NetworkError         = vk.NetworkError
	APIError             = api.Error
)

// Configuration and persistence.
type (
	Config     = config.Config
	TokenStore = store.TokenStore
)

// ErrNoToken is returned by token stores that hold no token.
var ErrNoToken = store.ErrNoToken

// DefaultScope is the permission set requested when AuthRequest.Scope is empty.
var DefaultScope = vk.DefaultScope

// New creates a flow runner. A nil config uses library defaults.
func New(cfg *Config) *VKAuth { return vk.NewVKAuth(cfg) }

// Authorize runs one flow with library defaults.
func Authorize(ctx context.Context, req AuthRequest) (*TokenResult, error) {
	return vk.NewVKAuth(nil).Authorize(ctx, req)
}

// NewFileStore creates a JSON-file token store at path.
func NewFileStore(path string) TokenStore { return store.NewFileStore(path) }

// NewMemoryStore creates an in-memory token store.
func NewMemoryStore() TokenStore { return store.NewMemoryStore() }

// NewAPIClient creates a VK API helper bound to an access token.
func NewAPIClient(cfg *Config, accessToken string) *api.Client {
	return api.NewClient(cfg, accessToken)
}
