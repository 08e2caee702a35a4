package db

import "gorm.io/gorm"

// Page is a storefront page whose Content holds the raw component markup.
type Page struct {
	gorm.Model
	SiteID  uint   `gorm:"not null;uniqueIndex:idx_pages_site_slug"`
	Slug    string `gorm:"not null;uniqueIndex:idx_pages_site_slug"`
	Title   string `gorm:"not null"`
	Content string `gorm:"type:text"`
	// Draft pages are only visible in the editor.
	Draft bool `gorm:"not null"`
}
