package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSite() *SiteContext {
	return &SiteContext{
		ID:           1,
		Name:         "acme-site",
		Subdomain:    "acme",
		Logo:         "https://cdn.example.com/acme.png",
		BasePath:     "/s/acme",
		Organization: OrganizationContext{Name: "Acme Open Source"},
		Tiers: []TierContext{
			{ID: 11, Name: "Backer", Price: 1000, Currency: "usd", Description: "Say thanks.", Features: []string{"Logo in README"}},
		},
		Pages: []PageLink{
			{Title: "Home", Slug: "home", Homepage: true},
			{Title: "Pricing", Slug: "pricing"},
		},
	}
}

func renderMarkup(t *testing.T, markup string, opts Options) *Node {
	t.Helper()
	roots, err := Parse(markup)
	require.NoError(t, err)
	return Render(roots, opts)
}

func TestParseReturnsEveryTopLevelElement(t *testing.T) {
	roots, err := Parse(`<h1>One</h1> <p>Two</p><div>Three</div>`)
	require.NoError(t, err)
	require.Len(t, roots, 3)
	assert.Equal(t, "h1", roots[0].Data)
	assert.Equal(t, "p", roots[1].Data)
	assert.Equal(t, "div", roots[2].Data)
}

func TestParseOrEmptyToleratesGarbage(t *testing.T) {
	roots := ParseOrEmpty("<div><<<>>>&&&</span", nil)
	tree := Render(roots, Options{})
	assert.NotPanics(t, func() { _ = HTML(tree) })
}

func TestVoidTagKeepsAttributesExceptStyle(t *testing.T) {
	tree := renderMarkup(t, `<img src="x.png" alt="Logo" style="border:1px" class="rounded">`, Options{})
	require.Len(t, tree.Children, 1)

	img := tree.Children[0]
	assert.Equal(t, "img", img.Tag)
	assert.True(t, img.Void)
	assert.Empty(t, img.Children)
	assert.Equal(t, []Attr{{Key: "src", Val: "x.png"}, {Key: "alt", Val: "Logo"}, {Key: "class", Val: "rounded"}}, img.Attrs)
	assert.Equal(t, `<img src="x.png" alt="Logo" class="rounded">`, HTML(tree))
}

func TestPlainContainerRecursesAndDropsStyle(t *testing.T) {
	tree := renderMarkup(t, `<div class="hero" style="color:red"><p>Hello <b>world</b></p><br></div>`, Options{})
	assert.Equal(t, `<div class="hero"><p>Hello <b>world</b></p><br></div>`, HTML(tree))
}

func TestVariantSelection(t *testing.T) {
	site := testSite()

	published := renderMarkup(t, `<Tiers></Tiers>`, Options{Site: site})
	require.Len(t, published.Children, 1)
	assert.Equal(t, KindTiers, published.Children[0].Component)
	assert.Equal(t, VariantElement, published.Children[0].Variant)

	preview := renderMarkup(t, `<Tiers></Tiers>`, Options{Site: site, Preview: true})
	require.Len(t, preview.Children, 1)
	assert.Equal(t, VariantPreview, preview.Children[0].Variant)

	noPreviewVariant := renderMarkup(t, `<SiteName></SiteName>`, Options{Site: site, Preview: true})
	require.Len(t, noPreviewVariant.Children, 1)
	assert.Equal(t, KindSiteName, noPreviewVariant.Children[0].Component)
	assert.Equal(t, VariantElement, noPreviewVariant.Children[0].Variant)
}

func TestPreviewSubstitutesSampleTiers(t *testing.T) {
	empty := &SiteContext{Name: "empty"}

	assert.Empty(t, renderMarkup(t, `<Tiers></Tiers>`, Options{Site: empty}).Children)

	preview := renderMarkup(t, `<Tiers></Tiers>`, Options{Site: empty, Preview: true})
	assert.Contains(t, TextContent(preview), "Community")
}

func TestUIComponentReceivesAuthoredAttributes(t *testing.T) {
	roots, err := Parse(`<Box id="hero" data-tone="warm" class="p-4" style="margin:0"></Box>`)
	require.NoError(t, err)
	entry, ok := Lookup(roots[0].Data)
	require.True(t, ok)
	require.True(t, entry.UI)

	props := componentProps(entry, roots[0], Options{Site: testSite(), Page: &PageContext{Title: "Home"}})
	assert.Equal(t, map[string]string{"id": "hero", "data-tone": "warm", "class": "p-4", "style": "margin:0"}, props.Attrs)
	assert.Nil(t, props.Site)
	assert.Nil(t, props.Page)

	tree := Render(roots, Options{Site: testSite()})
	assert.Equal(t, `<div class="p-4" data-tone="warm" id="hero"></div>`, HTML(tree))
}

func TestSiteComponentIgnoresAuthoredAttributes(t *testing.T) {
	roots, err := Parse(`<SiteName data-name="Spoofed" class="big"></SiteName>`)
	require.NoError(t, err)
	entry, ok := Lookup(roots[0].Data)
	require.True(t, ok)
	require.False(t, entry.UI)

	site := testSite()
	page := &PageContext{Title: "Home"}
	props := componentProps(entry, roots[0], Options{Site: site, Page: page})
	assert.Nil(t, props.Attrs)
	assert.Same(t, site, props.Site)
	assert.Same(t, page, props.Page)
}

func TestIgnoredTagsDropWholeSubtree(t *testing.T) {
	markup := `<div><p>kept</p><script>alert(1)</script><style>p{}</style>` +
		`<svg><path d="M0 0"></path><text>hidden</text></svg><noscript><p>nojs</p></noscript></div>`
	tree := renderMarkup(t, markup, Options{})

	assert.Equal(t, `<div><p>kept</p></div>`, HTML(tree))
	assert.Equal(t, "kept", TextContent(tree))
}

func TestSiteNameReflectsOrganization(t *testing.T) {
	site := testSite()
	tree := renderMarkup(t, `<h1><SiteName>Literal authored text</SiteName></h1>`, Options{Site: site})
	assert.Equal(t, "Acme Open Source", TextContent(tree))

	site.Organization.Name = "Renamed Org"
	tree = renderMarkup(t, `<h1><SiteName>Literal authored text</SiteName></h1>`, Options{Site: site})
	assert.Equal(t, "Renamed Org", TextContent(tree))
}

func TestTagLookupIsCaseInsensitive(t *testing.T) {
	for _, tag := range []string{"SiteName", "sitename", "SITENAME"} {
		assert.Equal(t, KindSiteName, KindForTag(tag), tag)
	}
	assert.Equal(t, KindNone, KindForTag("section"))
}

func TestUnknownTagsFallThroughAsPlainElements(t *testing.T) {
	tree := renderMarkup(t, `<Widget foo="bar">x</Widget>`, Options{})
	assert.Equal(t, `<widget foo="bar">x</widget>`, HTML(tree))
}

func TestMenuLinksToSitePages(t *testing.T) {
	tree := renderMarkup(t, `<Menu></Menu>`, Options{Site: testSite(), Page: &PageContext{Slug: "pricing"}})
	out := HTML(tree)
	assert.Contains(t, out, `<a href="/s/acme">Home</a>`)
	assert.Contains(t, out, `<a href="/s/acme/pricing" aria-current="page">Pricing</a>`)
}

func TestTiersCheckoutFeature(t *testing.T) {
	without := HTML(renderMarkup(t, `<Tiers></Tiers>`, Options{Site: testSite()}))
	assert.NotContains(t, without, "tier-cta")
	assert.Contains(t, without, "$10.00")

	with := HTML(renderMarkup(t, `<Tiers></Tiers>`, Options{Site: testSite(), Features: Features{FeatureCheckout: true}}))
	assert.Contains(t, with, `href="/s/acme/checkout/11"`)
}

func TestLayoutComponentsNestChildren(t *testing.T) {
	tree := renderMarkup(t, `<Flex direction="column" gap="2"><Card title="Fast"><p>Really</p></Card></Flex>`, Options{})
	assert.Equal(t,
		`<div class="flex flex-column gap-2"><div class="card"><h3 class="card-title">Fast</h3><div class="card-body"><p>Really</p></div></div></div>`,
		HTML(tree),
	)
}

func TestMarkdownComponent(t *testing.T) {
	tree := renderMarkup(t, "<Markdown>\n    ## Support\n\n    Ask *anything*.\n</Markdown>", Options{})
	out := HTML(tree)
	assert.Contains(t, out, "<h2>Support</h2>")
	assert.Contains(t, out, "<em>anything</em>")
}

func TestPaletteHidesHiddenEntries(t *testing.T) {
	for _, entry := range Palette() {
		assert.False(t, entry.Hidden, entry.Name)
		assert.NotEmpty(t, entry.Insert, entry.Name)
	}
	assert.Len(t, Entries(), int(kindCount-1))
	assert.Equal(t, "box", KindBox.Entry().Tag)
	assert.Equal(t, "none", KindNone.String())
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$12.50", FormatPrice(1250, "usd"))
	assert.Equal(t, "€0.05", FormatPrice(5, "EUR"))
	assert.Equal(t, "3.00 CHF", FormatPrice(300, "chf"))
	assert.Equal(t, "-$1.00", FormatPrice(-100, ""))
}

func TestTextContentCollapsesWhitespace(t *testing.T) {
	tree := renderMarkup(t, "<div>\n  <p>a</p>\n  <p>b</p>\n</div>", Options{})
	assert.Equal(t, "a b", TextContent(tree))
	assert.False(t, strings.Contains(TextContent(tree), "\n"))
}

func TestNewFeaturesNormalizesNames(t *testing.T) {
	f := NewFeatures(" Checkout ", "", "beta")
	if !f.Enabled(FeatureCheckout) || !f.Enabled("beta") {
		t.Fatalf("expected checkout and beta enabled, got %v", f)
	}
	if len(f) != 2 {
		t.Fatalf("expected blank names to be skipped, got %v", f)
	}
	var none Features
	if none.Enabled(FeatureCheckout) {
		t.Fatal("nil feature set should have nothing enabled")
	}
}
