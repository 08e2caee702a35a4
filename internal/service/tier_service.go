package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/marketdev/internal/db"
	"github.com/marketdev/internal/render"
	"gorm.io/gorm"
)

var ErrTierNotFound = errors.New("tier not found")

// TierInput is the editable part of a tier.
type TierInput struct {
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	Currency    string   `json:"currency"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Published   bool     `json:"published"`
	SortOrder   int      `json:"sortOrder"`
}

func validateTier(in TierInput) error {
	verr := &ValidationError{}
	if strings.TrimSpace(in.Name) == "" {
		verr.add("name", "name is required")
	}
	if in.Price < 0 {
		verr.add("price", "price cannot be negative")
	}
	if c := strings.TrimSpace(in.Currency); c != "" && len(c) != 3 {
		verr.add("currency", "currency must be a three-letter code")
	}
	return verr.orNil()
}

// TierService manages pricing tiers and service packages.
type TierService struct {
	db *gorm.DB
}

// NewTierService returns a new TierService instance.
func NewTierService(gdb *gorm.DB) *TierService {
	return &TierService{db: gdb}
}

// Create inserts a tier for siteID.
func (s *TierService) Create(siteID uint, in TierInput) (*db.Tier, error) {
	if err := validateTier(in); err != nil {
		return nil, err
	}
	var count int64
	if err := s.db.Model(&db.Site{}).Where("id = ?", siteID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrSiteNotFound
	}

	tier := db.Tier{SiteID: siteID}
	applyTierInput(&tier, in)
	if err := s.db.Create(&tier).Error; err != nil {
		return nil, fmt.Errorf("create tier: %w", err)
	}
	return &tier, nil
}

// Get fetches a tier by id.
func (s *TierService) Get(id uint) (*db.Tier, error) {
	var tier db.Tier
	if err := s.db.First(&tier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTierNotFound
		}
		return nil, err
	}
	return &tier, nil
}

// Update overwrites every field of the tier.
func (s *TierService) Update(id uint, in TierInput) (*db.Tier, error) {
	if err := validateTier(in); err != nil {
		return nil, err
	}
	tier, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	applyTierInput(tier, in)
	if err := s.db.Save(tier).Error; err != nil {
		return nil, fmt.Errorf("update tier: %w", err)
	}
	return tier, nil
}

// List returns a site's tiers in display order.
func (s *TierService) List(siteID uint, publishedOnly bool) ([]db.Tier, error) {
	query := s.db.Where("site_id = ?", siteID)
	if publishedOnly {
		query = query.Where("published = ?", true)
	}
	var tiers []db.Tier
	if err := query.Order("sort_order asc, id asc").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}

// SetPublished toggles storefront visibility.
func (s *TierService) SetPublished(id uint, published bool) error {
	result := s.db.Model(&db.Tier{}).Where("id = ?", id).Update("published", published)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTierNotFound
	}
	return nil
}

// Delete removes a tier.
func (s *TierService) Delete(id uint) error {
	result := s.db.Delete(&db.Tier{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTierNotFound
	}
	return nil
}

// TierContext converts a tier record for rendering.
func TierContext(tier db.Tier) render.TierContext {
	return render.TierContext{
		ID:          tier.ID,
		Name:        tier.Name,
		Price:       tier.Price,
		Currency:    tier.Currency,
		Description: tier.Description,
		Features:    tier.Features(),
	}
}

func applyTierInput(tier *db.Tier, in TierInput) {
	tier.Name = strings.TrimSpace(in.Name)
	tier.Price = in.Price
	tier.Currency = strings.ToLower(strings.TrimSpace(in.Currency))
	if tier.Currency == "" {
		tier.Currency = "usd"
	}
	tier.Description = strings.TrimSpace(in.Description)
	tier.SetFeatures(in.Features)
	tier.Published = in.Published
	tier.SortOrder = in.SortOrder
}
