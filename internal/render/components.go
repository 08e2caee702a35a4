package render

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

var markdownEngine = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
	goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithXHTML()),
)

// sampleTiers stand in for real data in the editor preview.
var sampleTiers = []TierContext{
	{Name: "Community", Price: 0, Currency: "usd", Description: "For individuals trying things out.", Features: []string{"Public issue tracker", "Community chat"}},
	{Name: "Team", Price: 4900, Currency: "usd", Description: "For teams running it in production.", Features: []string{"Priority issues", "Private chat channel", "Monthly office hours"}},
	{Name: "Enterprise", Price: 49900, Currency: "usd", Description: "For organizations that need guarantees.", Features: []string{"Support SLA", "Security advisories", "Roadmap input"}},
}

func siteName(props Props, _ []*Node) *Node {
	return Element("span", []Attr{{Key: "class", Val: "site-name"}}, Text(props.Site.DisplayName()))
}

func siteLogo(props Props, _ []*Node) *Node {
	if props.Site == nil || strings.TrimSpace(props.Site.Logo) == "" {
		return nil
	}
	return VoidElement("img", []Attr{
		{Key: "class", Val: "site-logo"},
		{Key: "src", Val: props.Site.Logo},
		{Key: "alt", Val: props.Site.DisplayName()},
	})
}

func siteLogoPreview(props Props, children []*Node) *Node {
	if logo := siteLogo(props, children); logo != nil {
		return logo
	}
	return Element("div", []Attr{{Key: "class", Val: "site-logo site-logo-placeholder"}}, Text("Logo"))
}

func pageTitle(props Props, _ []*Node) *Node {
	title := ""
	if props.Page != nil {
		title = props.Page.Title
	}
	return Element("h1", []Attr{{Key: "class", Val: "page-title"}}, Text(title))
}

func menu(props Props, _ []*Node) *Node {
	if props.Site == nil || len(props.Site.Pages) == 0 {
		return nil
	}
	return menuList(props.Site, props.Site.Pages, props.Page)
}

func menuPreview(props Props, children []*Node) *Node {
	if node := menu(props, children); node != nil {
		return node
	}
	links := []PageLink{{Title: "Home", Homepage: true}, {Title: "Pricing", Slug: "pricing"}, {Title: "Docs", Slug: "docs"}}
	return menuList(props.Site, links, props.Page)
}

func menuList(site *SiteContext, links []PageLink, current *PageContext) *Node {
	items := make([]*Node, 0, len(links))
	for _, link := range links {
		attrs := []Attr{{Key: "href", Val: site.PageURL(link)}}
		if current != nil && current.Slug == link.Slug {
			attrs = append(attrs, Attr{Key: "aria-current", Val: "page"})
		}
		items = append(items, Element("li", nil, Element("a", attrs, Text(link.Title))))
	}
	return Element("nav", []Attr{{Key: "class", Val: "site-menu"}}, Element("ul", nil, items...))
}

func tiers(props Props, _ []*Node) *Node {
	if props.Site == nil || len(props.Site.Tiers) == 0 {
		return nil
	}
	return tierList("tiers", "Subscribe", props.Site, props.Site.Tiers, props.Features)
}

func tiersPreview(props Props, children []*Node) *Node {
	if node := tiers(props, children); node != nil {
		return node
	}
	return tierList("tiers", "Subscribe", props.Site, sampleTiers, props.Features)
}

func packages(props Props, _ []*Node) *Node {
	if props.Site == nil || len(props.Site.Tiers) == 0 {
		return nil
	}
	return tierList("packages", "Get in touch", props.Site, props.Site.Tiers, props.Features)
}

func packagesPreview(props Props, children []*Node) *Node {
	if node := packages(props, children); node != nil {
		return node
	}
	return tierList("packages", "Get in touch", props.Site, sampleTiers, props.Features)
}

func tierList(class, cta string, site *SiteContext, list []TierContext, features Features) *Node {
	cards := make([]*Node, 0, len(list))
	for _, tier := range list {
		featureItems := make([]*Node, 0, len(tier.Features))
		for _, feature := range tier.Features {
			featureItems = append(featureItems, Element("li", nil, Text(feature)))
		}

		var action *Node
		if features.Enabled(FeatureCheckout) && tier.ID != 0 && site != nil {
			href := strings.TrimSuffix(site.BasePath, "/") + "/checkout/" + strconv.FormatUint(uint64(tier.ID), 10)
			action = Element("a", []Attr{{Key: "class", Val: "tier-cta"}, {Key: "href", Val: href}}, Text(cta))
		}

		var featureList *Node
		if len(featureItems) > 0 {
			featureList = Element("ul", []Attr{{Key: "class", Val: "tier-features"}}, featureItems...)
		}

		attrs := []Attr{{Key: "class", Val: "tier"}}
		if tier.ID != 0 {
			attrs = append(attrs, Attr{Key: "data-tier-id", Val: strconv.FormatUint(uint64(tier.ID), 10)})
		}
		cards = append(cards, Element("div", attrs,
			Element("h3", []Attr{{Key: "class", Val: "tier-name"}}, Text(tier.Name)),
			Element("p", []Attr{{Key: "class", Val: "tier-price"}}, Text(FormatPrice(tier.Price, tier.Currency))),
			Element("p", []Attr{{Key: "class", Val: "tier-description"}}, Text(tier.Description)),
			featureList,
			action,
		))
	}
	return Element("section", []Attr{{Key: "class", Val: class}}, cards...)
}

func flex(props Props, children []*Node) *Node {
	direction := attrOr(props.Attrs, "direction", "row")
	class := classes(
		"flex",
		"flex-"+direction,
		"gap-"+attrOr(props.Attrs, "gap", "4"),
		prefixed("items-", props.Attrs["align"]),
		prefixed("justify-", props.Attrs["justify"]),
		props.Attrs["class"],
	)
	return Element("div", withID(props.Attrs, []Attr{{Key: "class", Val: class}}), children...)
}

// box keeps every authored attribute except inline styles.
func box(props Props, children []*Node) *Node {
	return Element("div", passthrough(props.Attrs), children...)
}

func card(props Props, children []*Node) *Node {
	var heading *Node
	if title := strings.TrimSpace(props.Attrs["title"]); title != "" {
		heading = Element("h3", []Attr{{Key: "class", Val: "card-title"}}, Text(title))
	}
	body := Element("div", []Attr{{Key: "class", Val: "card-body"}}, children...)
	class := classes("card", props.Attrs["class"])
	return Element("div", withID(props.Attrs, []Attr{{Key: "class", Val: class}}), heading, body)
}

func grid(props Props, children []*Node) *Node {
	class := classes(
		"grid",
		"grid-cols-"+attrOr(props.Attrs, "cols", "3"),
		"gap-"+attrOr(props.Attrs, "gap", "4"),
		props.Attrs["class"],
	)
	return Element("div", withID(props.Attrs, []Attr{{Key: "class", Val: class}}), children...)
}

func linkButton(props Props, children []*Node) *Node {
	class := classes("button", "button-"+attrOr(props.Attrs, "variant", "primary"), props.Attrs["class"])
	attrs := []Attr{{Key: "class", Val: class}, {Key: "href", Val: attrOr(props.Attrs, "href", "#")}}
	if target := props.Attrs["target"]; target != "" {
		attrs = append(attrs, Attr{Key: "target", Val: target}, Attr{Key: "rel", Val: "noopener noreferrer"})
	}
	return Element("a", withID(props.Attrs, attrs), children...)
}

func markdown(props Props, children []*Node) *Node {
	var source strings.Builder
	for _, child := range children {
		collectSource(&source, child)
	}

	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(dedent(source.String())), &buf); err != nil {
		return nil
	}
	return Element("div", withID(props.Attrs, []Attr{{Key: "class", Val: classes("markdown", props.Attrs["class"])}}), Raw(buf.String()))
}

// collectSource gathers the literal text of the Markdown body.
func collectSource(sb *strings.Builder, n *Node) {
	if n == nil {
		return
	}
	if n.Type == TextNode {
		sb.WriteString(n.Text)
		return
	}
	for _, child := range n.Children {
		collectSource(sb, child)
	}
}

// dedent strips the indentation shared by all non-blank lines so that
// Markdown nested inside indented markup is not read as a code block.
func dedent(source string) string {
	lines := strings.Split(source, "\n")
	common := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if common == -1 || indent < common {
			common = indent
		}
	}
	if common <= 0 {
		return source
	}
	for i, line := range lines {
		if len(line) >= common {
			lines[i] = line[common:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}

func attrOr(attrs map[string]string, key, fallback string) string {
	if value := strings.TrimSpace(attrs[key]); value != "" {
		return value
	}
	return fallback
}

func prefixed(prefix, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	return prefix + value
}

func withID(attrs map[string]string, out []Attr) []Attr {
	if id := strings.TrimSpace(attrs["id"]); id != "" {
		out = append([]Attr{{Key: "id", Val: id}}, out...)
	}
	return out
}

func passthrough(attrs map[string]string) []Attr {
	out := make([]Attr, 0, len(attrs))
	for _, key := range sortedKeys(attrs) {
		if key == "style" {
			continue
		}
		out = append(out, Attr{Key: key, Val: attrs[key]})
	}
	return out
}
