package vk

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FormDescriptor is a server-rendered form reduced to what replaying it needs:
// the action URL and the current value of every named input.
type FormDescriptor struct {
	// Action is the URL the form submits to.
	Action string
	// Fields maps input names to their current values.
	Fields map[string]string
}

// postForm returns the first form on the page submitted by POST with a
// non-empty action. The boolean reports whether such a form exists.
func postForm(doc *goquery.Document) (*goquery.Selection, bool) {
	var form *goquery.Selection
	doc.Find("form[action]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		method := s.AttrOr("method", "")
		action := s.AttrOr("action", "")
		if strings.EqualFold(method, "post") && action != "" {
			form = s
			return false
		}
		return true
	})
	return form, form != nil
}

// formFields collects every named input of the form. Inputs without a value
// attribute contribute an empty string.
func formFields(form *goquery.Selection) map[string]string {
	fields := make(map[string]string)
	form.Find("input[name]").Each(func(_ int, input *goquery.Selection) {
		name := input.AttrOr("name", "")
		fields[name] = input.AttrOr("value", "")
	})
	return fields
}

// parseLoginForm extracts the login form from the authorize page. The
// presence of the email field is the signal that VK actually served the
// expected login page rather than an error page or unrelated content.
func parseLoginForm(html string) (*FormDescriptor, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &PageStructureError{Message: "Unable to fetch login page"}
	}

	descriptor := &FormDescriptor{Fields: map[string]string{}}
	if form, ok := postForm(doc); ok {
		descriptor.Action = form.AttrOr("action", "")
		descriptor.Fields = formFields(form)
	}

	if _, ok := descriptor.Fields["email"]; !ok {
		return nil, &PageStructureError{Message: "Unable to fetch login page"}
	}
	return descriptor, nil
}

// parseConsentForm extracts the action URL of the consent ("Allow") form. The
// page is classified first: a warning page carries no usable form, so the
// banner takes precedence over the structural failure.
func parseConsentForm(html string) (string, error) {
	if err := classify(html); err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", &PageStructureError{Message: "Unable to get link to grant permissions"}
	}

	form, ok := postForm(doc)
	if !ok {
		return "", &PageStructureError{Message: "Unable to get link to grant permissions"}
	}
	return form.AttrOr("action", ""), nil
}
