// Package vk implements token acquisition for the VK implicit-grant flow.
// It drives VK's browser-oriented authorization pages without a browser:
// fetching server-rendered HTML, replaying forms, answering the phone
// verification challenge, and extracting the access token from the final
// redirect fragment.
package vk

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vkdirty/vktoken/internal/config"
	"github.com/vkdirty/vktoken/internal/store"
)

const (
	// oauthHost is VK's OAuth server.
	oauthHost = "https://oauth.vk.com"
	// authorizeEndpoint starts the implicit grant.
	authorizeEndpoint = oauthHost + "/authorize"
	// redirectURI is the fixed blank page VK redirects to with the token fragment.
	redirectURI = oauthHost + "/blank.html"
	// apiVersion is the VK protocol version sent with every request.
	apiVersion = "5.21"
	// securityCheckMarker appears in the resolved URL of the phone verification page.
	securityCheckMarker = "act=security_check"
)

// VKAuth runs authorization flows. One VKAuth may serve many concurrent
// flows; each flow gets its own Session and shares nothing with the others.
type VKAuth struct {
	cfg *config.Config
	// authorizeBase is the authorize endpoint; tests point it at a local server.
	authorizeBase string
}

// NewVKAuth creates a new VKAuth service instance. A nil config uses library
// defaults.
func NewVKAuth(cfg *config.Config) *VKAuth {
	if cfg == nil {
		cfg = config.Default()
	}
	return &VKAuth{cfg: cfg, authorizeBase: authorizeEndpoint}
}

// Authorize performs the full implicit-grant negotiation for one credential
// set and returns the access token, or exactly one typed failure. When the
// request carries a token store, a previously persisted token short-circuits
// the flow, and a freshly acquired one is persisted before returning.
func (a *VKAuth) Authorize(ctx context.Context, req AuthRequest) (*TokenResult, error) {
	req.setDefaults()
	if err := req.validate(); err != nil {
		return nil, err
	}

	logger := log.WithField("request_id", flowID())

	if req.Store != nil {
		token, err := req.Store.Get(ctx)
		if err == nil && token != "" {
			logger.Debug("using previously stored access token")
			return &TokenResult{AccessToken: token}, nil
		}
		if err != nil && !errors.Is(err, store.ErrNoToken) {
			logger.Debugf("token store read failed, running full flow: %v", err)
		}
	}

	sess, err := newSession(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("vk auth: create session failed: %w", err)
	}

	logger.Debugf("fetching authorize page for client %d", req.ClientID)
	resp, err := sess.Get(ctx, a.authorizeURL(&req))
	if err != nil {
		return nil, err
	}

	form, err := parseLoginForm(resp.Body)
	if err != nil {
		return nil, err
	}
	form.Fields["email"] = req.Login
	form.Fields["pass"] = req.Password

	logger.Debug("submitting credentials")
	resp, err = sess.PostForm(ctx, form.Action, form.Fields)
	if err != nil {
		return nil, err
	}

	if errClassify := classify(resp.Body); errClassify != nil {
		return nil, errClassify
	}

	if strings.Contains(resp.FinalURL, securityCheckMarker) {
		logger.Debug("answering security check")
		resp, err = a.passSecurityCheck(ctx, sess, &req, resp)
		if err != nil {
			return nil, err
		}
		if errClassify := classify(resp.Body); errClassify != nil {
			return nil, errClassify
		}
	}

	finalURL := resp.FinalURL
	if !fragmentHasToken(finalURL) {
		var action string
		action, err = parseConsentForm(resp.Body)
		if err != nil {
			return nil, err
		}
		logger.Debug("granting requested permissions")
		resp, err = sess.PostForm(ctx, action, nil)
		if err != nil {
			return nil, err
		}
		finalURL = resp.FinalURL
	} else {
		logger.Debug("permissions previously granted, skipping consent")
	}

	result, err := extractToken(finalURL)
	if err != nil {
		return nil, err
	}

	if req.Store != nil {
		if errSet := req.Store.Set(ctx, result.AccessToken); errSet != nil {
			return nil, fmt.Errorf("vk auth: persist token failed: %w", errSet)
		}
	}

	logger.Debug("access token acquired")
	return result, nil
}

// passSecurityCheck derives the verification code from the challenge page and
// submits it. The result re-enters the caller's branch logic; VK never serves
// the challenge twice within one well-formed flow.
func (a *VKAuth) passSecurityCheck(ctx context.Context, sess *Session, req *AuthRequest, resp *PageResponse) (*PageResponse, error) {
	form, err := securityCheckForm(resp.Body, req.securityPhone())
	if err != nil {
		return nil, err
	}

	action := form.Action
	if strings.HasPrefix(action, "/") && !strings.HasPrefix(action, "//") {
		if u, errParse := url.Parse(resp.FinalURL); errParse == nil {
			action = u.Scheme + "://" + u.Host + action
		}
	}

	return sess.PostForm(ctx, action, form.Fields)
}

// authorizeURL builds the implicit-grant entry URL for the request.
func (a *VKAuth) authorizeURL(req *AuthRequest) string {
	query := url.Values{}
	query.Set("client_id", strconv.Itoa(req.ClientID))
	query.Set("scope", strings.Join(req.Scope, ","))
	query.Set("redirect_uri", redirectURI)
	query.Set("display", "mobile")
	query.Set("v", apiVersion)
	query.Set("response_type", "token")
	return a.authorizeBase + "?" + query.Encode()
}

// flowID returns a short identifier tying a flow's log lines together.
func flowID() string {
	return uuid.New().String()[:8]
}
