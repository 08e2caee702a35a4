package db

import "gorm.io/gorm"

// Organization owns one or more sites; its name is what storefronts display.
type Organization struct {
	gorm.Model
	Name string `gorm:"not null"`
}

// Site is a maintainer storefront served under its own subdomain.
type Site struct {
	gorm.Model
	Name           string `gorm:"not null"`
	Subdomain      string `gorm:"uniqueIndex;not null"`
	Logo           string
	OrganizationID uint
	Organization   Organization
	// HomepageID is a weak reference; the page may have been removed.
	HomepageID *uint
	Pages      []Page `gorm:"constraint:OnDelete:CASCADE;"`
	Tiers      []Tier `gorm:"constraint:OnDelete:CASCADE;"`
}
