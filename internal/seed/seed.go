// Package seed fills an empty database with a demo storefront.
package seed

import (
	"errors"
	"fmt"
	"strings"

	"github.com/marketdev/internal/db"
	"github.com/marketdev/internal/render"
	"github.com/marketdev/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DemoSubdomain is the subdomain of the generated site.
const DemoSubdomain = "acme"

// Summary reports what Demo created.
type Summary struct {
	Site    *db.Site
	Pages   int
	Tiers   int
	Skipped bool
}

var demoTiers = []service.TierInput{
	{Name: "Community", Price: 0, Currency: "usd", Description: "For individuals trying things out.", Features: []string{"Public issue tracker", "Community chat"}, Published: true, SortOrder: 1},
	{Name: "Team", Price: 4900, Currency: "usd", Description: "For teams running it in production.", Features: []string{"Priority issues", "Private chat channel"}, Published: true, SortOrder: 2},
	{Name: "Enterprise", Price: 49900, Currency: "usd", Description: "For organizations that need guarantees.", Features: []string{"Support SLA", "Security advisories"}, Published: true, SortOrder: 3},
	{Name: "Sponsor", Price: 100000, Currency: "usd", Description: "Not announced yet.", SortOrder: 4},
}

// Demo 创建示例站点、价格档位和基于模板的页面；站点已存在时跳过。
func Demo(gdb *gorm.DB, logger *zap.Logger) (Summary, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sites := service.NewSiteService(gdb)

	// 检查是否已存在示例站点
	if existing, err := sites.GetBySubdomain(DemoSubdomain); err == nil {
		logger.Info("demo site exists, skipping", zap.Uint("site_id", existing.ID))
		return Summary{Site: existing, Skipped: true}, nil
	} else if !errors.Is(err, service.ErrSiteNotFound) {
		return Summary{}, err
	}

	catalog, err := render.DefaultCatalog()
	if err != nil {
		return Summary{}, fmt.Errorf("load catalog: %w", err)
	}

	var summary Summary
	err = gdb.Transaction(func(tx *gorm.DB) error {
		txSites := service.NewSiteService(tx)
		site, err := txSites.Create(service.SiteInput{
			Name:             "Acme",
			Subdomain:        DemoSubdomain,
			OrganizationName: "Acme Open Source",
		})
		if err != nil {
			return err
		}
		summary.Site = site

		tiers := service.NewTierService(tx)
		for _, in := range demoTiers {
			if _, err := tiers.Create(site.ID, in); err != nil {
				return fmt.Errorf("create tier %q: %w", in.Name, err)
			}
			summary.Tiers++
		}

		pages := service.NewPageService(tx)
		var homepageID uint
		for _, tmpl := range catalog.Templates {
			title := strings.TrimSuffix(tmpl.Name, " page")
			page, err := pages.Create(site.ID, service.PageInput{
				Title:   title,
				Slug:    service.Slugify(title),
				Content: tmpl.Content,
			})
			if err != nil {
				return fmt.Errorf("create page %q: %w", title, err)
			}
			if homepageID == 0 {
				homepageID = page.ID
			}
			summary.Pages++
		}
		if homepageID == 0 {
			return nil
		}
		return txSites.SetHomepage(site.ID, homepageID)
	})
	if err != nil {
		return Summary{}, err
	}

	logger.Info("demo data created",
		zap.String("subdomain", DemoSubdomain),
		zap.Int("pages", summary.Pages),
		zap.Int("tiers", summary.Tiers),
	)
	return summary, nil
}
