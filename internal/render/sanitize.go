package render

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// NewSanitizer returns the policy applied to rendered page HTML. It extends
// the UGC policy with classes, data attributes and the video player iframes.
func NewSanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowStyling()
	policy.AllowDataAttributes()
	policy.AllowElements("section", "nav", "iframe")
	policy.AllowAttrs("aria-current").OnElements("a")
	policy.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	policy.AllowAttrs("src").Matching(videoEmbedSrcPattern).OnElements("iframe")
	policy.AllowAttrs("title", "allow", "allowfullscreen", "frameborder", "loading", "referrerpolicy").OnElements("iframe")
	return policy
}
