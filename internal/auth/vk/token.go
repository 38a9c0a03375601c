package vk

import (
	"net/url"
	"regexp"
	"strconv"
)

var accessTokenRe = regexp.MustCompile(`access_token=([a-f0-9]+)`)

// TokenResult is the terminal success value of a flow.
type TokenResult struct {
	// AccessToken is the hex token extracted from the redirect fragment.
	AccessToken string
	// UserID is the authenticated user's numeric ID when the fragment carries it.
	UserID int64
	// ExpiresIn is the token lifetime in seconds; zero means non-expiring.
	ExpiresIn int
}

// fragmentHasToken reports whether the URI's fragment already carries an
// access token, which means consent was previously granted.
func fragmentHasToken(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return accessTokenRe.MatchString(u.Fragment)
}

// extractToken parses the final redirect URI for the access token fragment.
func extractToken(finalURI string) (*TokenResult, error) {
	u, err := url.Parse(finalURI)
	if err != nil {
		return nil, &TokenMissingError{Message: "Invalid access_token"}
	}

	m := accessTokenRe.FindStringSubmatch(u.Fragment)
	if m == nil || m[1] == "" {
		return nil, &TokenMissingError{Message: "Invalid access_token"}
	}

	result := &TokenResult{AccessToken: m[1]}
	if values, errParse := url.ParseQuery(u.Fragment); errParse == nil {
		if v, errConv := strconv.Atoi(values.Get("expires_in")); errConv == nil {
			result.ExpiresIn = v
		}
		if v, errConv := strconv.ParseInt(values.Get("user_id"), 10, 64); errConv == nil {
			result.UserID = v
		}
	}
	return result, nil
}
