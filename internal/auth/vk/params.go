package vk

import (
	"regexp"

	"github.com/vkdirty/vktoken/internal/store"
)

// DefaultScope is the permission set requested when AuthRequest.Scope is empty.
var DefaultScope = []string{
	"notify",
	"friends",
	"photos",
	"audio",
	"video",
	"docs",
	"notes",
	"pages",
	"status",
	"offers",
	"questions",
	"wall",
	"groups",
	"messages",
	"notifications",
	"stats",
	"ads",
	"offline",
}

var phoneRe = regexp.MustCompile(`^\+?[0-9]+$`)

// AuthRequest carries the credentials and options for one authorization flow.
type AuthRequest struct {
	// ClientID is the VK application ID.
	ClientID int
	// Login is the account login (email or phone number).
	Login string
	// Password is the account password.
	Password string
	// Phone is the phone number on file. Required unless Login itself is a
	// phone number; used to answer the security check challenge.
	Phone string
	// Scope is the requested permission set. Defaults to DefaultScope.
	Scope []string
	// Store, when set, short-circuits the flow with a previously persisted
	// token and receives the freshly acquired token on success.
	Store store.TokenStore
}

func (r *AuthRequest) setDefaults() {
	if len(r.Scope) == 0 {
		r.Scope = append([]string(nil), DefaultScope...)
	}
}

// validate checks the request before any network activity takes place.
func (r *AuthRequest) validate() error {
	if r.ClientID <= 0 {
		return &ValidationError{Field: "client_id", Reason: "must be a positive integer"}
	}
	if len(r.Login) < 3 {
		return &ValidationError{Field: "login", Reason: "must be at least 3 characters"}
	}
	if r.Password == "" {
		return &ValidationError{Field: "pass", Reason: "must not be empty"}
	}
	if r.Phone != "" && !phoneRe.MatchString(r.Phone) {
		return &ValidationError{Field: "phone", Reason: "must contain digits with an optional leading +"}
	}
	if r.Phone == "" && !phoneRe.MatchString(r.Login) {
		return &ValidationError{Field: "phone", Reason: "required when login is not a phone number"}
	}
	seen := make(map[string]struct{}, len(r.Scope))
	for _, s := range r.Scope {
		if _, dup := seen[s]; dup {
			return &ValidationError{Field: "scope", Reason: "permissions must be unique"}
		}
		seen[s] = struct{}{}
	}
	return nil
}

// securityPhone returns the number used to answer a verification challenge.
func (r *AuthRequest) securityPhone() string {
	if r.Phone != "" {
		return r.Phone
	}
	if phoneRe.MatchString(r.Login) {
		return r.Login
	}
	return ""
}
