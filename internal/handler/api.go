package handler

import (
	"time"

	"github.com/marketdev/internal/editor"
	"github.com/marketdev/internal/render"
	"github.com/marketdev/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options carries the settings handlers need beyond the database.
type Options struct {
	UploadDir    string
	UploadURL    string
	RootDomain   string
	SaveDelay    time.Duration
	PreviewDelay time.Duration
	Features     render.Features
	Pipeline     *render.Pipeline
	Logger       *zap.Logger
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	sites    *service.SiteService
	pages    *service.PageService
	tiers    *service.TierService
	pipeline *render.Pipeline
	catalog  render.Catalog
	logger   *zap.Logger
	live     *liveRegistry
	opts     Options
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Pipeline == nil {
		opts.Pipeline = render.NewPipeline(opts.Logger)
	}
	if opts.SaveDelay <= 0 {
		opts.SaveDelay = editor.DefaultSaveDelay
	}
	if opts.PreviewDelay <= 0 {
		opts.PreviewDelay = editor.DefaultPreviewDelay
	}
	if opts.RootDomain == "" {
		opts.RootDomain = "market.dev"
	}

	catalog, err := render.DefaultCatalog()
	if err != nil {
		opts.Logger.Error("load insertables catalog", zap.Error(err))
	}

	return &API{
		db:       gdb,
		sites:    service.NewSiteService(gdb),
		pages:    service.NewPageService(gdb),
		tiers:    service.NewTierService(gdb),
		pipeline: opts.Pipeline,
		catalog:  catalog,
		logger:   opts.Logger,
		live:     newLiveRegistry(),
		opts:     opts,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// LiveSessions reports how many editor websockets are connected.
func (a *API) LiveSessions() int {
	return a.live.count()
}

// CloseLiveSessions ends every editor session; used on shutdown.
func (a *API) CloseLiveSessions() {
	a.live.closeAll()
}

// renderOptions builds render options for a site and page.
func (a *API) renderOptions(site *render.SiteContext, page *render.PageContext, preview bool) render.Options {
	return render.Options{
		Site:     site,
		Page:     page,
		Preview:  preview,
		Features: a.opts.Features,
	}
}
