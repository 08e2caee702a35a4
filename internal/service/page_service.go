package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/marketdev/internal/db"
	"gorm.io/gorm"
)

var (
	ErrPageNotFound   = errors.New("page not found")
	ErrSlugTaken      = errors.New("slug already used on this site")
	ErrPageIsHomepage = errors.New("page is the site homepage; choose another homepage before deleting it")
	ErrNoHomepage     = errors.New("site has no homepage")
)

// PageService manages storefront pages.
type PageService struct {
	db *gorm.DB
}

// NewPageService returns a new PageService instance.
func NewPageService(gdb *gorm.DB) *PageService {
	return &PageService{db: gdb}
}

// Create validates in and inserts a page for siteID.
func (s *PageService) Create(siteID uint, in PageInput) (*db.Page, error) {
	in = in.Normalize()
	if err := ValidatePage(in); err != nil {
		return nil, err
	}
	if err := s.ensureSite(siteID); err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(siteID, in.Slug, 0); err != nil {
		return nil, err
	}

	page := db.Page{
		SiteID:  siteID,
		Slug:    in.Slug,
		Title:   in.Title,
		Content: in.Content,
		Draft:   in.Draft,
	}
	if err := s.db.Create(&page).Error; err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return &page, nil
}

// Get fetches a page by id.
func (s *PageService) Get(id uint) (*db.Page, error) {
	var page db.Page
	if err := s.db.First(&page, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// GetBySlug fetches a page for a given site and slug.
func (s *PageService) GetBySlug(siteID uint, slug string) (*db.Page, error) {
	var page db.Page
	if err := s.db.Where("site_id = ? AND slug = ?", siteID, strings.TrimSpace(slug)).First(&page).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPageNotFound
		}
		return nil, err
	}
	return &page, nil
}

// List returns the pages of a site ordered by creation.
func (s *PageService) List(siteID uint, includeDrafts bool) ([]db.Page, error) {
	query := s.db.Where("site_id = ?", siteID)
	if !includeDrafts {
		query = query.Where("draft = ?", false)
	}
	var pages []db.Page
	if err := query.Order("id asc").Find(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

// Update validates in and overwrites title, slug, content and draft.
func (s *PageService) Update(id uint, in PageInput) (*db.Page, error) {
	in = in.Normalize()
	if err := ValidatePage(in); err != nil {
		return nil, err
	}

	page, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if page.Slug != in.Slug {
		if err := s.ensureSlugFree(page.SiteID, in.Slug, page.ID); err != nil {
			return nil, err
		}
	}
	if in.Draft && !page.Draft {
		// 首页必须保持发布状态
		var site db.Site
		if err := s.db.Select("id", "homepage_id").First(&site, page.SiteID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if site.HomepageID != nil && *site.HomepageID == page.ID {
			return nil, ErrHomepageMustBeLive
		}
	}

	page.Title = in.Title
	page.Slug = in.Slug
	page.Content = in.Content
	page.Draft = in.Draft
	if err := s.db.Save(page).Error; err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}
	return page, nil
}

// Delete removes a page. The current homepage cannot be deleted.
func (s *PageService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var page db.Page
		if err := tx.First(&page, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPageNotFound
			}
			return err
		}

		var site db.Site
		if err := tx.Select("id", "homepage_id").First(&site, page.SiteID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if site.HomepageID != nil && *site.HomepageID == page.ID {
			return ErrPageIsHomepage
		}

		// 硬删除，释放 (site_id, slug) 唯一索引
		return tx.Unscoped().Delete(&page).Error
	})
}

// Homepage returns the page flagged as the site's homepage.
func (s *PageService) Homepage(siteID uint) (*db.Page, error) {
	var site db.Site
	if err := s.db.Select("id", "homepage_id").First(&site, siteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}
	if site.HomepageID == nil {
		return nil, ErrNoHomepage
	}

	page, err := s.Get(*site.HomepageID)
	if errors.Is(err, ErrPageNotFound) {
		return nil, ErrNoHomepage
	}
	return page, err
}

func (s *PageService) ensureSite(siteID uint) error {
	var count int64
	if err := s.db.Model(&db.Site{}).Where("id = ?", siteID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrSiteNotFound
	}
	return nil
}

func (s *PageService) ensureSlugFree(siteID uint, slug string, exceptID uint) error {
	var count int64
	query := s.db.Model(&db.Page{}).Where("site_id = ? AND slug = ?", siteID, slug)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSlugTaken
	}
	return nil
}
