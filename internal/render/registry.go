package render

import "strings"

// Kind identifies a registered component. The set is closed: every tag the
// renderer treats as a component maps to one Kind in KindForTag.
type Kind int

const (
	KindNone Kind = iota
	KindSiteName
	KindSiteLogo
	KindPageTitle
	KindMenu
	KindTiers
	KindPackages
	KindFlex
	KindBox
	KindCard
	KindGrid
	KindLinkButton
	KindMarkdown
	KindVideoEmbed

	kindCount
)

// Props are the inputs handed to a component. UI components receive Attrs,
// site components receive Site and Page; never both.
type Props struct {
	Attrs    map[string]string
	Site     *SiteContext
	Page     *PageContext
	Features Features
}

// ComponentFunc renders a component from its props and rendered children.
type ComponentFunc func(props Props, children []*Node) *Node

// AttributeSpec documents an attribute a UI component understands; the
// editor uses it to build the settings form.
type AttributeSpec struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
}

// Entry binds a tag to its renderers and metadata.
type Entry struct {
	Kind        Kind
	Name        string
	Tag         string
	Description string
	Element     ComponentFunc
	Preview     ComponentFunc
	// UI entries receive authored attributes; others receive site/page context.
	UI         bool
	Hidden     bool
	Attributes []AttributeSpec
	Insert     string
}

// KindForTag resolves a tag name, case-insensitively, to a component kind.
func KindForTag(tag string) Kind {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "sitename":
		return KindSiteName
	case "sitelogo":
		return KindSiteLogo
	case "pagetitle":
		return KindPageTitle
	case "menu":
		return KindMenu
	case "tiers":
		return KindTiers
	case "packages":
		return KindPackages
	case "flex":
		return KindFlex
	case "box":
		return KindBox
	case "card":
		return KindCard
	case "grid":
		return KindGrid
	case "linkbutton":
		return KindLinkButton
	case "markdown":
		return KindMarkdown
	case "videoembed":
		return KindVideoEmbed
	default:
		return KindNone
	}
}

var registry = [kindCount]Entry{
	KindSiteName: {
		Name:        "SiteName",
		Description: "The organization name of the current site.",
		Element:     siteName,
		Insert:      "<SiteName></SiteName>",
	},
	KindSiteLogo: {
		Name:        "SiteLogo",
		Description: "The site logo image.",
		Element:     siteLogo,
		Preview:     siteLogoPreview,
		Insert:      "<SiteLogo></SiteLogo>",
	},
	KindPageTitle: {
		Name:        "PageTitle",
		Description: "The title of the page being rendered.",
		Element:     pageTitle,
		Insert:      "<PageTitle></PageTitle>",
	},
	KindMenu: {
		Name:        "Menu",
		Description: "Navigation links to the published pages of the site.",
		Element:     menu,
		Preview:     menuPreview,
		Insert:      "<Menu></Menu>",
	},
	KindTiers: {
		Name:        "Tiers",
		Description: "Published pricing tiers of the site.",
		Element:     tiers,
		Preview:     tiersPreview,
		Insert:      "<Tiers></Tiers>",
	},
	KindPackages: {
		Name:        "Packages",
		Description: "Published tiers presented as service packages.",
		Element:     packages,
		Preview:     packagesPreview,
		Insert:      "<Packages></Packages>",
	},
	KindFlex: {
		Name:        "Flex",
		Description: "Flexbox layout container.",
		Element:     flex,
		UI:          true,
		Attributes: []AttributeSpec{
			{Name: "direction", Description: "row or column", Default: "row"},
			{Name: "gap", Description: "spacing scale between children", Default: "4"},
			{Name: "align", Description: "cross-axis alignment"},
			{Name: "justify", Description: "main-axis alignment"},
			{Name: "class", Description: "extra CSS classes"},
		},
		Insert: `<Flex direction="row" gap="4"></Flex>`,
	},
	KindBox: {
		Name:        "Box",
		Description: "Plain container that keeps every authored attribute.",
		Element:     box,
		UI:          true,
		Hidden:      true,
		Insert:      "<Box></Box>",
	},
	KindCard: {
		Name:        "Card",
		Description: "Bordered card with an optional title.",
		Element:     card,
		UI:          true,
		Attributes: []AttributeSpec{
			{Name: "title", Description: "heading shown above the content"},
			{Name: "class", Description: "extra CSS classes"},
		},
		Insert: `<Card title="Title"></Card>`,
	},
	KindGrid: {
		Name:        "Grid",
		Description: "Responsive grid layout.",
		Element:     grid,
		UI:          true,
		Attributes: []AttributeSpec{
			{Name: "cols", Description: "number of columns", Default: "3"},
			{Name: "gap", Description: "spacing scale between cells", Default: "4"},
			{Name: "class", Description: "extra CSS classes"},
		},
		Insert: `<Grid cols="3" gap="4"></Grid>`,
	},
	KindLinkButton: {
		Name:        "LinkButton",
		Description: "Call-to-action link styled as a button.",
		Element:     linkButton,
		UI:          true,
		Attributes: []AttributeSpec{
			{Name: "href", Description: "link target"},
			{Name: "variant", Description: "primary, secondary or ghost", Default: "primary"},
			{Name: "class", Description: "extra CSS classes"},
		},
		Insert: `<LinkButton href="/" variant="primary">Get started</LinkButton>`,
	},
	KindMarkdown: {
		Name:        "Markdown",
		Description: "Renders its text body as Markdown.",
		Element:     markdown,
		UI:          true,
		Attributes: []AttributeSpec{
			{Name: "class", Description: "extra CSS classes"},
		},
		Insert: "<Markdown>\n## Heading\n\nWrite *Markdown* here.\n</Markdown>",
	},
	KindVideoEmbed: {
		Name:        "VideoEmbed",
		Description: "Embedded YouTube or Vimeo player.",
		Element:     videoEmbed,
		UI:          true,
		Attributes: []AttributeSpec{
			{Name: "src", Description: "video page URL"},
			{Name: "title", Description: "accessible player title"},
		},
		Insert: `<VideoEmbed src="https://www.youtube.com/watch?v="></VideoEmbed>`,
	},
}

func init() {
	for kind := KindNone + 1; kind < kindCount; kind++ {
		entry := &registry[kind]
		entry.Kind = kind
		entry.Tag = strings.ToLower(entry.Name)
	}
}

// Entry returns the registry entry of k; KindNone yields the zero Entry.
func (k Kind) Entry() Entry {
	if k <= KindNone || k >= kindCount {
		return Entry{}
	}
	return registry[k]
}

// String returns the component name.
func (k Kind) String() string {
	if k <= KindNone || k >= kindCount {
		return "none"
	}
	return registry[k].Name
}

// Lookup resolves a tag to its registry entry.
func Lookup(tag string) (Entry, bool) {
	kind := KindForTag(tag)
	if kind == KindNone {
		return Entry{}, false
	}
	return registry[kind], true
}

// Entries lists every registered component in Kind order.
func Entries() []Entry {
	entries := make([]Entry, 0, kindCount-1)
	for kind := KindNone + 1; kind < kindCount; kind++ {
		entries = append(entries, registry[kind])
	}
	return entries
}

// Palette lists the components offered in the editor sidebar.
func Palette() []Entry {
	entries := make([]Entry, 0, kindCount-1)
	for _, entry := range Entries() {
		if !entry.Hidden {
			entries = append(entries, entry)
		}
	}
	return entries
}

// renderer picks the preview variant when requested and available.
func (e Entry) renderer(preview bool) (ComponentFunc, Variant) {
	if preview && e.Preview != nil {
		return e.Preview, VariantPreview
	}
	return e.Element, VariantElement
}
