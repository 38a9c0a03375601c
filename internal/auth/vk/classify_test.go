package vk

import (
	"errors"
	"testing"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	t.Run("clean page", func(t *testing.T) {
		t.Parallel()
		if err := classify(`<form method="post" action="/x"></form>`); err != nil {
			t.Errorf("classify() = %v, want nil", err)
		}
	})

	t.Run("warning banner", func(t *testing.T) {
		t.Parallel()
		err := classify(`<div class="service_msg_warning">Too many attempts, try later</div>`)
		var rejected *AuthRejectedError
		if !errors.As(err, &rejected) {
			t.Fatalf("classify() = %v, want AuthRejectedError", err)
		}
		if rejected.Banner != "Too many attempts, try later" {
			t.Errorf("banner = %q, want verbatim text", rejected.Banner)
		}
	})

	t.Run("captcha challenge", func(t *testing.T) {
		t.Parallel()
		err := classify(`<form method="post" action="/login">
			<img class="captcha_img" src="/captcha.php?sid=99">
			<input type="hidden" name="captcha_sid" value="99">
			<input name="captcha_key" type="text">
		</form>`)
		var captcha *CaptchaRequiredError
		if !errors.As(err, &captcha) {
			t.Fatalf("classify() = %v, want CaptchaRequiredError", err)
		}
		if captcha.SID != "99" {
			t.Errorf("sid = %q, want %q", captcha.SID, "99")
		}
		if captcha.ImageURL != "/captcha.php?sid=99" {
			t.Errorf("image = %q, want captcha image src", captcha.ImageURL)
		}
	})

	t.Run("banner wins over captcha", func(t *testing.T) {
		t.Parallel()
		err := classify(`<div class="service_msg_warning">blocked</div>
			<input name="captcha_sid" value="1">`)
		var rejected *AuthRejectedError
		if !errors.As(err, &rejected) {
			t.Fatalf("classify() = %v, want AuthRejectedError", err)
		}
	})
}
