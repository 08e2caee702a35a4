package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/marketdev/internal/config"
	"github.com/marketdev/internal/db"
	"github.com/marketdev/internal/logging"
	"github.com/marketdev/internal/render"
	"github.com/marketdev/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type renderFlags struct {
	preview  bool
	width    float64
	site     string
	features []string
	out      string
}

var (
	renderOpts renderFlags
	watchDelay time.Duration
)

var renderCmd = &cobra.Command{
	Use:   "render <file>",
	Short: "Render a page markup file to HTML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New(config.Load().LogLevel, "console")
		site, err := loadSiteContext(renderOpts.site)
		if err != nil {
			return err
		}
		return renderTo(cmd.OutOrStdout(), args[0], renderOpts, site, render.NewPipeline(logger))
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-render a page markup file whenever it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.New(config.Load().LogLevel, "console")
		site, err := loadSiteContext(renderOpts.site)
		if err != nil {
			return err
		}
		pipeline := render.NewPipeline(logger)
		rerender := func() error {
			return renderTo(cmd.OutOrStdout(), args[0], renderOpts, site, pipeline)
		}
		if err := rerender(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return watchFile(ctx, args[0], watchDelay, rerender, logger)
	},
}

func init() {
	for _, c := range []*cobra.Command{renderCmd, watchCmd} {
		c.Flags().BoolVar(&renderOpts.preview, "preview", false, "Render in editor preview mode")
		c.Flags().Float64Var(&renderOpts.width, "width", 0, "Preview container width in pixels")
		c.Flags().StringVar(&renderOpts.site, "site", "", "Subdomain of the site whose data components should use")
		c.Flags().StringSliceVar(&renderOpts.features, "feature", nil, "Feature flag to enable (repeatable)")
		c.Flags().StringVarP(&renderOpts.out, "out", "o", "", "Write HTML to this file instead of stdout")
	}
	watchCmd.Flags().DurationVar(&watchDelay, "debounce", 300*time.Millisecond, "Wait this long after the last change before rendering")
}

// loadSiteContext 从数据库读取站点上下文；未指定站点时返回 nil。
func loadSiteContext(subdomain string) (*render.SiteContext, error) {
	if subdomain == "" {
		return nil, nil
	}
	if err := db.Init(config.Load().DatabasePath); err != nil {
		return nil, err
	}
	sites := service.NewSiteService(db.DB)
	site, err := sites.GetBySubdomain(subdomain)
	if err != nil {
		return nil, fmt.Errorf("load site %q: %w", subdomain, err)
	}
	return sites.Context(site.ID)
}

func renderFile(path string, flags renderFlags, site *render.SiteContext, pipeline *render.Pipeline) (string, error) {
	markup, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	opts := render.Options{
		Site:     site,
		Page:     &render.PageContext{Title: pageTitleFromPath(path), Draft: flags.preview},
		Preview:  flags.preview,
		Features: render.NewFeatures(flags.features...),
	}
	if flags.preview {
		return pipeline.Preview(string(markup), opts, flags.width), nil
	}
	return pipeline.RenderHTML(string(markup), opts), nil
}

func renderTo(stdout io.Writer, path string, flags renderFlags, site *render.SiteContext, pipeline *render.Pipeline) error {
	html, err := renderFile(path, flags, site, pipeline)
	if err != nil {
		return err
	}
	if flags.out == "" {
		_, err = fmt.Fprintln(stdout, html)
		return err
	}
	return os.WriteFile(flags.out, []byte(html), 0o644)
}

func pageTitleFromPath(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// watchFile 监听文件所在目录，连续修改在 delay 内合并为一次 onChange。
func watchFile(ctx context.Context, path string, delay time.Duration, onChange func() error, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error setting up file watcher: %w", err)
	}
	defer watcher.Close()

	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	// 编辑器常以 rename 方式保存，因此监听目录而不是文件本身
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			name, _ := filepath.Abs(event.Name)
			if name != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			if !timer.Stop() && pending {
				<-timer.C
			}
			timer.Reset(delay)
			pending = true
		case <-timer.C:
			pending = false
			if err := onChange(); err != nil {
				logger.Warn("re-render failed", zap.String("file", path), zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}
