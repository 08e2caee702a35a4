package render

import (
	"fmt"
	"strings"
)

// SiteContext is the ambient site data handed to data-driven components.
type SiteContext struct {
	ID           uint
	Name         string
	Subdomain    string
	Logo         string
	BasePath     string
	Organization OrganizationContext
	Tiers        []TierContext
	Pages        []PageLink
}

// OrganizationContext carries the organization that owns a site.
type OrganizationContext struct {
	Name string
}

// TierContext is a published pricing tier.
type TierContext struct {
	ID          uint
	Name        string
	Price       int64
	Currency    string
	Description string
	Features    []string
}

// PageLink is a menu entry.
type PageLink struct {
	Title    string
	Slug     string
	Homepage bool
}

// PageContext is the page currently being rendered.
type PageContext struct {
	ID    uint
	Title string
	Slug  string
	Draft bool
}

// Features is the set of feature flags active for the current render.
type Features map[string]bool

// NewFeatures turns a list of flag names into a Features set.
func NewFeatures(names ...string) Features {
	f := make(Features, len(names))
	for _, name := range names {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			f[name] = true
		}
	}
	return f
}

// Enabled reports whether the named feature is on.
func (f Features) Enabled(name string) bool {
	return f != nil && f[name]
}

// FeatureCheckout turns on the purchase buttons of pricing components.
const FeatureCheckout = "checkout"

// DisplayName is what a storefront shows as the seller name.
func (s *SiteContext) DisplayName() string {
	if s == nil {
		return ""
	}
	if name := strings.TrimSpace(s.Organization.Name); name != "" {
		return name
	}
	return strings.TrimSpace(s.Name)
}

// PageURL builds the public URL of a page on this site.
func (s *SiteContext) PageURL(link PageLink) string {
	base := ""
	if s != nil {
		base = strings.TrimSuffix(s.BasePath, "/")
	}
	if link.Homepage {
		if base == "" {
			return "/"
		}
		return base
	}
	return base + "/" + link.Slug
}

// FormatPrice renders an amount in minor units, e.g. 1250 usd -> "$12.50".
func FormatPrice(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	value := fmt.Sprintf("%d.%02d", amount/100, amount%100)
	switch strings.ToLower(strings.TrimSpace(currency)) {
	case "", "usd":
		return sign + "$" + value
	case "eur":
		return sign + "€" + value
	case "gbp":
		return sign + "£" + value
	default:
		return sign + value + " " + strings.ToUpper(currency)
	}
}
