package render

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapCache struct {
	values map[string]string
	gets   int
	sets   int
	err    error
}

func (m *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	m.gets++
	if m.err != nil {
		return "", false, m.err
	}
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.sets++
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func TestRenderHTMLSanitizesOutput(t *testing.T) {
	p := NewPipeline(nil)
	out := p.RenderHTML(`<p onclick="steal()">Hi</p><a href="javascript:alert(1)">bad</a>`, Options{})

	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "javascript:")
	assert.Contains(t, out, "<p>Hi</p>")
}

func TestRenderHTMLKeepsVideoIframe(t *testing.T) {
	p := NewPipeline(nil)
	out := p.RenderHTML(`<VideoEmbed src="https://youtu.be/abc123"></VideoEmbed>`, Options{})
	assert.Contains(t, out, `src="https://www.youtube-nocookie.com/embed/abc123?`)
}

func TestRenderPublishedUsesCache(t *testing.T) {
	cache := &mapCache{values: map[string]string{}}
	p := NewPipeline(nil, WithCache(cache, time.Minute))
	opts := Options{Site: testSite()}

	first := p.RenderPublished(context.Background(), `<SiteName></SiteName>`, opts)
	second := p.RenderPublished(context.Background(), `<SiteName></SiteName>`, opts)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.sets)
	assert.Contains(t, first, "Acme Open Source")
}

func TestRenderPublishedFallsBackWhenCacheFails(t *testing.T) {
	cache := &mapCache{values: map[string]string{}, err: errors.New("redis down")}
	p := NewPipeline(nil, WithCache(cache, time.Minute))

	out := p.RenderPublished(context.Background(), `<p>ok</p>`, Options{})
	assert.Equal(t, "<p>ok</p>", out)
}

func TestCacheKeyChangesWithContext(t *testing.T) {
	site := testSite()
	before := CacheKey(`<SiteName></SiteName>`, Options{Site: site})
	site.Organization.Name = "Other"
	after := CacheKey(`<SiteName></SiteName>`, Options{Site: site})

	assert.NotEqual(t, before, after)
	assert.Equal(t, after, CacheKey(`<SiteName></SiteName>`, Options{Site: site}))
}

func TestPreviewWrapsInScaledFrame(t *testing.T) {
	p := NewPipeline(nil)
	out := p.Preview(`<Tiers></Tiers>`, Options{}, 800)

	assert.Contains(t, out, `class="preview-frame"`)
	assert.Contains(t, out, "transform: scale(0.5)")
	assert.Contains(t, out, "Community")
}

func TestFrameScale(t *testing.T) {
	frame := NewFrame()
	assert.InDelta(t, 0.25, frame.Scale(400), 1e-9)
	assert.InDelta(t, 1.0, frame.Scale(0), 1e-9)
	assert.Equal(t, "transform: scale(1.5); transform-origin: top left; width: 1600px", frame.Style(2400))

	custom := Frame{VirtualWidth: 1000}
	assert.InDelta(t, 0.8, custom.Scale(800), 1e-9)
}

func TestParseVideoURL(t *testing.T) {
	cases := []struct {
		raw      string
		platform string
		embed    string
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=1m30s", "youtube", "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ?modestbranding=1&playsinline=1&rel=0&start=90"},
		{"youtu.be/abc", "youtube", "https://www.youtube-nocookie.com/embed/abc?modestbranding=1&playsinline=1&rel=0"},
		{"https://youtube.com/shorts/xyz/extra", "youtube", "https://www.youtube-nocookie.com/embed/xyz?modestbranding=1&playsinline=1&rel=0"},
		{"https://vimeo.com/channels/staff/123456", "vimeo", "https://player.vimeo.com/video/123456"},
	}
	for _, tc := range cases {
		source, ok := parseVideoURL(tc.raw)
		require.True(t, ok, tc.raw)
		assert.Equal(t, tc.platform, source.Platform, tc.raw)
		assert.Equal(t, tc.embed, source.EmbedURL, tc.raw)
	}

	for _, raw := range []string{"", "ftp://youtube.com/watch?v=a", "https://example.com/video/1", "https://www.youtube.com/watch"} {
		_, ok := parseVideoURL(raw)
		assert.False(t, ok, raw)
	}
}

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	require.NotEmpty(t, catalog.Templates)

	theme, ok := catalog.Theme("midnight")
	require.True(t, ok)
	assert.Equal(t, "theme-midnight", theme.Class)

	items := catalog.Insertables()
	assert.Len(t, items, len(Palette())+len(catalog.Templates))
	assert.Equal(t, "component", items[0].Kind)
	assert.Equal(t, "template", items[len(items)-1].Kind)

	for _, tmpl := range catalog.Templates {
		roots, err := Parse(tmpl.Content)
		require.NoError(t, err, tmpl.Name)
		assert.NotEmpty(t, roots, tmpl.Name)
	}
}

func TestParseCatalogRejectsUnnamedTemplates(t *testing.T) {
	_, err := ParseCatalog([]byte("templates:\n  - content: <p>x</p>\n"))
	assert.Error(t, err)
}
