package vk

import (
	"errors"
	"reflect"
	"testing"
)

const loginPage = `<html><body>
<div class="form_item">
<form method="post" action="https://login.vk.com/?act=login&amp;soft=1">
	<input type="hidden" name="_origin" value="https://oauth.vk.com">
	<input type="hidden" name="ip_h" value="5c06c04c07fa1e6eb2">
	<input type="hidden" name="to" value="aHR0cHM6Ly9vYXV0aC52ay5jb20vYmxhbmsuaHRtbA--">
	<input type="text" name="email" value="">
	<input type="password" name="pass">
	<input type="submit" value="Log in">
</form>
</div>
</body></html>`

func TestParseLoginForm(t *testing.T) {
	t.Parallel()

	form, err := parseLoginForm(loginPage)
	if err != nil {
		t.Fatalf("parseLoginForm() error = %v", err)
	}

	if form.Action != "https://login.vk.com/?act=login&soft=1" {
		t.Errorf("action = %q, want %q", form.Action, "https://login.vk.com/?act=login&soft=1")
	}

	want := map[string]string{
		"_origin": "https://oauth.vk.com",
		"ip_h":    "5c06c04c07fa1e6eb2",
		"to":      "aHR0cHM6Ly9vYXV0aC52ay5jb20vYmxhbmsuaHRtbA--",
		"email":   "",
		"pass":    "",
	}
	if !reflect.DeepEqual(form.Fields, want) {
		t.Errorf("fields = %#v, want %#v", form.Fields, want)
	}
}

func TestParseLoginFormWrongPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
	}{
		{"no form at all", `<html><body>service unavailable</body></html>`},
		{"post form without email field", `<form method="post" action="/search"><input name="q" value=""></form>`},
		{"get form only", `<form method="get" action="/login"><input name="email" value=""></form>`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseLoginForm(tt.html)
			var structural *PageStructureError
			if !errors.As(err, &structural) {
				t.Fatalf("parseLoginForm() error = %v, want PageStructureError", err)
			}
			if structural.Message != "Unable to fetch login page" {
				t.Errorf("message = %q, want %q", structural.Message, "Unable to fetch login page")
			}
		})
	}
}

func TestParseConsentForm(t *testing.T) {
	t.Parallel()

	html := `<form method="post" action="https://login.vk.com/?act=grant_access&amp;app_id=42"></form>`
	action, err := parseConsentForm(html)
	if err != nil {
		t.Fatalf("parseConsentForm() error = %v", err)
	}
	if action != "https://login.vk.com/?act=grant_access&app_id=42" {
		t.Errorf("action = %q, want grant_access link", action)
	}
}

func TestParseConsentFormNoForm(t *testing.T) {
	t.Parallel()

	_, err := parseConsentForm(`<html><body><p>nothing here</p></body></html>`)
	var structural *PageStructureError
	if !errors.As(err, &structural) {
		t.Fatalf("parseConsentForm() error = %v, want PageStructureError", err)
	}
	if structural.Message != "Unable to get link to grant permissions" {
		t.Errorf("message = %q, want %q", structural.Message, "Unable to get link to grant permissions")
	}
}

func TestParseConsentFormWarningBanner(t *testing.T) {
	t.Parallel()

	html := `<div class="service_msg service_msg_warning">Invalid login or password.</div>`
	_, err := parseConsentForm(html)
	var rejected *AuthRejectedError
	if !errors.As(err, &rejected) {
		t.Fatalf("parseConsentForm() error = %v, want AuthRejectedError", err)
	}
	if rejected.Banner != "Invalid login or password." {
		t.Errorf("banner = %q, want the exact banner text", rejected.Banner)
	}
}
