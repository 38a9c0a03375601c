package vk

import "fmt"

// The flow fails with exactly one of the error types below. Callers branch
// with errors.As; none of the types wrap another flow error.

// ValidationError reports a malformed authorization request. It is returned
// before any network activity.
type ValidationError struct {
	// Field names the offending request field.
	Field string
	// Reason describes what is wrong with the value.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("vk auth: invalid %s: %s", e.Field, e.Reason)
}

// PageStructureError reports that a fetched page is missing an expected form
// or field, meaning VK served an unexpected or unsupported page.
type PageStructureError struct {
	Message string
}

func (e *PageStructureError) Error() string {
	return e.Message
}

// AuthRejectedError reports a rejection banner rendered by VK, for example on
// wrong credentials. Banner carries the banner text verbatim.
type AuthRejectedError struct {
	Banner string
}

func (e *AuthRejectedError) Error() string {
	return fmt.Sprintf("vk auth: rejected: %s", e.Banner)
}

// CaptchaRequiredError reports a CAPTCHA-gated login page. The flow cannot
// solve captchas; ImageURL is surfaced so callers can present it elsewhere.
type CaptchaRequiredError struct {
	// SID is the captcha session identifier when present.
	SID string
	// ImageURL points at the captcha image when present.
	ImageURL string
}

func (e *CaptchaRequiredError) Error() string {
	if e.SID != "" {
		return fmt.Sprintf("vk auth: captcha required (sid %s)", e.SID)
	}
	return "vk auth: captcha required"
}

// MissingPhoneError reports that VK asked for a phone verification code but
// the request did not carry a phone number.
type MissingPhoneError struct{}

func (e *MissingPhoneError) Error() string {
	return "vk auth: phone number should be provided when security check is requested"
}

// TokenMissingError reports a flow that finished without a recoverable access
// token in the final redirect.
type TokenMissingError struct {
	Message string
}

func (e *TokenMissingError) Error() string {
	return e.Message
}

// NetworkError wraps a transport-level failure, including expired deadlines.
type NetworkError struct {
	// URL is the request target that failed.
	URL string
	// Err is the underlying transport error.
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("vk auth: request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
