package seed

import (
	"testing"

	"github.com/marketdev/internal/db"
	"github.com/marketdev/internal/service"
	"gorm.io/gorm/logger"
)

func TestDemoCreatesStorefrontOnce(t *testing.T) {
	gdb, err := db.Open("file:seed-demo?mode=memory&cache=shared", logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	summary, err := Demo(gdb, nil)
	if err != nil {
		t.Fatalf("Demo returned error: %v", err)
	}
	if summary.Skipped || summary.Pages == 0 || summary.Tiers != len(demoTiers) {
		t.Fatalf("unexpected summary %+v", summary)
	}

	sites := service.NewSiteService(gdb)
	ctx, err := sites.Context(summary.Site.ID)
	if err != nil {
		t.Fatalf("Context returned error: %v", err)
	}
	if len(ctx.Tiers) != len(demoTiers)-1 {
		t.Fatalf("expected unpublished tier to be hidden, got %d tiers", len(ctx.Tiers))
	}

	home, err := service.NewPageService(gdb).Homepage(summary.Site.ID)
	if err != nil {
		t.Fatalf("Homepage returned error: %v", err)
	}
	if home.Slug != "landing" {
		t.Fatalf("expected landing page as homepage, got %q", home.Slug)
	}

	again, err := Demo(gdb, nil)
	if err != nil {
		t.Fatalf("second Demo returned error: %v", err)
	}
	if !again.Skipped || again.Site.ID != summary.Site.ID {
		t.Fatalf("expected second run to skip, got %+v", again)
	}
}
