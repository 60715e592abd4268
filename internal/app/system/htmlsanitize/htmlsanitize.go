// Package htmlsanitize cleans free text that reaches the inventory
// backend or is echoed back into pages. Descriptions may carry light
// formatting; every other text field is reduced to plain text.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	descPolicy  *bluemonday.Policy
	plainPolicy *bluemonday.Policy
	policyOnce  sync.Once
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		descPolicy = bluemonday.NewPolicy()
		descPolicy.AllowElements("p", "br", "b", "strong", "i", "em", "u", "ul", "ol", "li")

		plainPolicy = bluemonday.StrictPolicy()
	})
	return descPolicy, plainPolicy
}

// Description sanitizes an item description, keeping basic inline
// formatting and lists.
func Description(s string) string {
	if s == "" {
		return ""
	}
	desc, _ := policies()
	return strings.TrimSpace(desc.Sanitize(s))
}

// PlainText strips all markup from s. Entities produced by the policy
// are unescaped so the result is raw text suitable for a JSON payload.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	_, plain := policies()
	return strings.TrimSpace(html.UnescapeString(plain.Sanitize(s)))
}

// IsPlainText reports whether content has no markup.
func IsPlainText(content string) bool {
	return !strings.Contains(content, "<") || !strings.Contains(content, ">")
}

// PrepareForDisplay renders a description for a template. Plain text is
// escaped with newlines kept; markup goes through the description policy.
func PrepareForDisplay(content string) template.HTML {
	if content == "" {
		return ""
	}
	if IsPlainText(content) {
		escaped := template.HTMLEscapeString(content)
		return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
	}
	return template.HTML(Description(content))
}
