package render

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/marketdev/internal/metrics"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// Cache stores rendered public pages.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Pipeline parses, renders, serializes and sanitizes page markup.
type Pipeline struct {
	logger    *zap.Logger
	sanitizer *bluemonday.Policy
	cache     Cache
	cacheTTL  time.Duration
	frame     Frame
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithCache enables caching of published renders.
func WithCache(cache Cache, ttl time.Duration) PipelineOption {
	return func(p *Pipeline) {
		p.cache = cache
		p.cacheTTL = ttl
	}
}

// WithFrame overrides the preview frame.
func WithFrame(frame Frame) PipelineOption {
	return func(p *Pipeline) {
		p.frame = frame
	}
}

// NewPipeline constructs a Pipeline.
func NewPipeline(logger *zap.Logger, opts ...PipelineOption) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		logger:    logger,
		sanitizer: NewSanitizer(),
		cacheTTL:  10 * time.Minute,
		frame:     NewFrame(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tree parses markup and returns the render tree; parse failures yield an empty fragment.
func (p *Pipeline) Tree(markup string, opts Options) *Node {
	return Render(ParseOrEmpty(markup, p.logger), opts)
}

// RenderHTML renders markup to sanitized HTML without caching.
func (p *Pipeline) RenderHTML(markup string, opts Options) string {
	start := time.Now()
	out := p.sanitizer.Sanitize(HTML(p.Tree(markup, opts)))
	metrics.ObserveRender(modeLabel(opts.Preview), time.Since(start))
	return out
}

// RenderPublished renders a public page, consulting the cache when configured.
// Cache failures are logged and fall back to a direct render.
func (p *Pipeline) RenderPublished(ctx context.Context, markup string, opts Options) string {
	if p.cache == nil {
		return p.RenderHTML(markup, opts)
	}

	key := CacheKey(markup, opts)
	if cached, ok, err := p.cache.Get(ctx, key); err != nil {
		p.logger.Warn("render cache read failed", zap.Error(err))
	} else if ok {
		metrics.CacheResult(true)
		return cached
	}
	metrics.CacheResult(false)

	out := p.RenderHTML(markup, opts)
	if err := p.cache.Set(ctx, key, out, p.cacheTTL); err != nil {
		p.logger.Warn("render cache write failed", zap.Error(err))
	}
	return out
}

// Preview renders markup in preview mode inside the scaled frame.
func (p *Pipeline) Preview(markup string, opts Options, containerWidth float64) string {
	opts.Preview = true
	return p.frame.Wrap(p.RenderHTML(markup, opts), containerWidth)
}

// CacheKey derives a key from the markup and everything the render depends on,
// so any change to site, page or features produces a new key.
func CacheKey(markup string, opts Options) string {
	h := sha256.New()
	h.Write([]byte(markup))
	var site SiteContext
	if opts.Site != nil {
		site = *opts.Site
	}
	var page PageContext
	if opts.Page != nil {
		page = *opts.Page
	}
	fmt.Fprintf(h, "\x00%+v\x00%+v\x00%v\x00%t", site, page, opts.Features, opts.Preview)
	return "render:" + hex.EncodeToString(h.Sum(nil))
}

func modeLabel(preview bool) string {
	if preview {
		return "preview"
	}
	return "published"
}
