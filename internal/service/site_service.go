package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/marketdev/internal/db"
	"github.com/marketdev/internal/render"
	"gorm.io/gorm"
)

var (
	ErrSiteNotFound       = errors.New("site not found")
	ErrSubdomainTaken     = errors.New("subdomain already taken")
	ErrPageNotOnSite      = errors.New("page does not belong to this site")
	ErrHomepageMustBeLive = errors.New("draft pages cannot be the homepage")
)

// SiteService manages storefront sites and builds their render context.
type SiteService struct {
	db *gorm.DB
}

// NewSiteService returns a new SiteService instance.
func NewSiteService(gdb *gorm.DB) *SiteService {
	return &SiteService{db: gdb}
}

// Create inserts a site together with its organization.
func (s *SiteService) Create(in SiteInput) (*db.Site, error) {
	in = normalizeSite(in)
	if err := validateSite(in); err != nil {
		return nil, err
	}
	if err := s.ensureSubdomainFree(in.Subdomain, 0); err != nil {
		return nil, err
	}

	orgName := in.OrganizationName
	if orgName == "" {
		orgName = in.Name
	}
	site := db.Site{
		Name:         in.Name,
		Subdomain:    in.Subdomain,
		Logo:         in.Logo,
		Organization: db.Organization{Name: orgName},
	}
	if err := s.db.Create(&site).Error; err != nil {
		return nil, fmt.Errorf("create site: %w", err)
	}
	return &site, nil
}

// Get fetches a site with its organization.
func (s *SiteService) Get(id uint) (*db.Site, error) {
	var site db.Site
	if err := s.db.Preload("Organization").First(&site, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}
	return &site, nil
}

// GetBySubdomain fetches a site by its subdomain, case-insensitively.
func (s *SiteService) GetBySubdomain(subdomain string) (*db.Site, error) {
	var site db.Site
	sub := strings.ToLower(strings.TrimSpace(subdomain))
	if err := s.db.Preload("Organization").Where("subdomain = ?", sub).First(&site).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSiteNotFound
		}
		return nil, err
	}
	return &site, nil
}

// List returns every site ordered by name.
func (s *SiteService) List() ([]db.Site, error) {
	var sites []db.Site
	if err := s.db.Preload("Organization").Order("name asc").Find(&sites).Error; err != nil {
		return nil, err
	}
	return sites, nil
}

// Update changes the site fields and renames its organization when given.
func (s *SiteService) Update(id uint, in SiteInput) (*db.Site, error) {
	in = normalizeSite(in)
	if err := validateSite(in); err != nil {
		return nil, err
	}
	site, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if site.Subdomain != in.Subdomain {
		if err := s.ensureSubdomainFree(in.Subdomain, site.ID); err != nil {
			return nil, err
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if in.OrganizationName != "" && in.OrganizationName != site.Organization.Name {
			site.Organization.Name = in.OrganizationName
			if err := tx.Save(&site.Organization).Error; err != nil {
				return err
			}
		}
		return tx.Model(site).Updates(map[string]interface{}{
			"name":      in.Name,
			"subdomain": in.Subdomain,
			"logo":      in.Logo,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update site: %w", err)
	}
	site.Name = in.Name
	site.Subdomain = in.Subdomain
	site.Logo = in.Logo
	return site, nil
}

// SetLogo stores the public URL of an uploaded logo.
func (s *SiteService) SetLogo(id uint, url string) error {
	result := s.db.Model(&db.Site{}).Where("id = ?", id).Update("logo", url)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSiteNotFound
	}
	return nil
}

// SetHomepage flags pageID as the site's homepage. The page must belong to the
// site and must not be a draft.
func (s *SiteService) SetHomepage(siteID, pageID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var site db.Site
		if err := tx.First(&site, siteID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSiteNotFound
			}
			return err
		}

		var page db.Page
		if err := tx.First(&page, pageID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPageNotFound
			}
			return err
		}
		if page.SiteID != site.ID {
			return ErrPageNotOnSite
		}
		if page.Draft {
			return ErrHomepageMustBeLive
		}

		return tx.Model(&site).Update("homepage_id", page.ID).Error
	})
}

// Context builds the read-only data components render against: organization,
// published tiers and non-draft pages.
func (s *SiteService) Context(siteID uint) (*render.SiteContext, error) {
	site, err := s.Get(siteID)
	if err != nil {
		return nil, err
	}

	var tiers []db.Tier
	if err := s.db.Where("site_id = ? AND published = ?", site.ID, true).
		Order("sort_order asc, id asc").Find(&tiers).Error; err != nil {
		return nil, err
	}

	var pages []db.Page
	if err := s.db.Select("id", "title", "slug").
		Where("site_id = ? AND draft = ?", site.ID, false).
		Order("id asc").Find(&pages).Error; err != nil {
		return nil, err
	}

	ctx := &render.SiteContext{
		ID:           site.ID,
		Name:         site.Name,
		Subdomain:    site.Subdomain,
		Logo:         site.Logo,
		BasePath:     "/s/" + site.Subdomain,
		Organization: render.OrganizationContext{Name: site.Organization.Name},
		Tiers:        make([]render.TierContext, 0, len(tiers)),
		Pages:        make([]render.PageLink, 0, len(pages)),
	}
	for _, tier := range tiers {
		ctx.Tiers = append(ctx.Tiers, TierContext(tier))
	}
	for _, page := range pages {
		ctx.Pages = append(ctx.Pages, render.PageLink{
			Title:    page.Title,
			Slug:     page.Slug,
			Homepage: site.HomepageID != nil && *site.HomepageID == page.ID,
		})
	}
	return ctx, nil
}

// PageContext converts a page record for rendering.
func PageContext(page *db.Page) *render.PageContext {
	if page == nil {
		return nil
	}
	return &render.PageContext{
		ID:    page.ID,
		Title: page.Title,
		Slug:  page.Slug,
		Draft: page.Draft,
	}
}

func (s *SiteService) ensureSubdomainFree(subdomain string, exceptID uint) error {
	var count int64
	query := s.db.Model(&db.Site{}).Where("subdomain = ?", subdomain)
	if exceptID != 0 {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrSubdomainTaken
	}
	return nil
}

func normalizeSite(in SiteInput) SiteInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Subdomain = strings.ToLower(strings.TrimSpace(in.Subdomain))
	in.Logo = strings.TrimSpace(in.Logo)
	in.OrganizationName = strings.TrimSpace(in.OrganizationName)
	return in
}
