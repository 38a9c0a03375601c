package vk

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// classify inspects a page for a service-level rejection before any form
// extraction happens on it. A warning banner wins over everything else; a
// captcha challenge is reported as its own variant because the banner check
// does not catch captcha-gated pages.
func classify(html string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	if banner := doc.Find(".service_msg_warning"); banner.Length() != 0 {
		return &AuthRejectedError{Banner: banner.Text()}
	}

	if captcha := doc.Find("input[name='captcha_sid']"); captcha.Length() != 0 {
		return &CaptchaRequiredError{
			SID:      captcha.AttrOr("value", ""),
			ImageURL: doc.Find("img.captcha_img").AttrOr("src", ""),
		}
	}

	return nil
}
