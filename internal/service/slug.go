package service

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// slugPattern 只允许小写字母、数字以及单个连字符分隔的片段
var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

// ValidationError carries one message per invalid field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, e.Fields[key]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Slugify derives a URL slug from a title: "My Title!" becomes "my-title".
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		case r == '-' || unicode.IsSpace(r):
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// ValidateSlug checks slug against the storefront URL pattern.
func ValidateSlug(slug string) error {
	if strings.TrimSpace(slug) == "" {
		return fmt.Errorf("slug is required")
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("slug %q may only contain lowercase letters, numbers and single hyphens between them", slug)
	}
	return nil
}

// PageInput is the editable part of a page.
type PageInput struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Content string `json:"content"`
	Draft   bool   `json:"draft"`
}

// Normalize trims title and slug.
func (in PageInput) Normalize() PageInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	return in
}

// ValidatePage reports every invalid field of in at once.
func ValidatePage(in PageInput) error {
	verr := &ValidationError{}
	if strings.TrimSpace(in.Title) == "" {
		verr.add("title", "title is required")
	}
	if err := ValidateSlug(strings.TrimSpace(in.Slug)); err != nil {
		verr.add("slug", err.Error())
	}
	return verr.orNil()
}

// SiteInput is the editable part of a site.
type SiteInput struct {
	Name             string `json:"name"`
	Subdomain        string `json:"subdomain"`
	Logo             string `json:"logo"`
	OrganizationName string `json:"organization"`
}

func validateSite(in SiteInput) error {
	verr := &ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		verr.add("name", "name is required")
	}
	sub := strings.TrimSpace(in.Subdomain)
	switch {
	case sub == "":
		verr.add("subdomain", "subdomain is required")
	case !subdomainPattern.MatchString(sub):
		verr.add("subdomain", "subdomain may only contain lowercase letters, numbers and hyphens")
	}
	return verr.orNil()
}
