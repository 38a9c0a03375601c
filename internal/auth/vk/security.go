package vk

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// trimPhone normalizes a phone number or masked phone label: surrounding
// whitespace is removed, then exactly one leading "+" or one leading "00" is
// stripped. Everything else, including any further "+", is kept.
func trimPhone(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") {
		return s[1:]
	}
	if strings.HasPrefix(s, "00") {
		return s[2:]
	}
	return s
}

// securityCheckForm parses the phone verification challenge and derives the
// code VK expects: the portion of the real phone number hidden between the
// masked prefix and postfix labels rendered around the code input.
func securityCheckForm(html, phone string) (*FormDescriptor, error) {
	if phone == "" {
		return nil, &MissingPhoneError{}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &PageStructureError{Message: "Unable to fetch security check page"}
	}

	form, ok := postForm(doc)
	if !ok {
		return nil, &PageStructureError{Message: "Unable to fetch security check page"}
	}

	fields := formFields(form)
	codeInput := form.Find("input[name='code']")
	if codeInput.Length() == 0 {
		return nil, &PageStructureError{Message: "Unable to fetch security check page"}
	}

	code := trimPhone(phone)
	prefix := trimPhone(codeInput.PrevFiltered(".field_prefix").Text())
	postfix := strings.TrimSpace(codeInput.NextFiltered(".field_prefix").Text())

	if prefix != "" && strings.HasPrefix(code, prefix) {
		code = code[len(prefix):]
	}
	if postfix != "" {
		// Only a match that ends exactly at the end of the candidate counts.
		if i := strings.LastIndex(code, postfix); i >= 0 && i == len(code)-len(postfix) {
			code = code[:i]
		}
	}

	fields["code"] = code
	return &FormDescriptor{Action: form.AttrOr("action", ""), Fields: fields}, nil
}
