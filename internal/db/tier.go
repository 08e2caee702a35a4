package db

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"
)

// Tier is a pricing tier or service package offered on a site.
type Tier struct {
	gorm.Model
	SiteID      uint   `gorm:"index;not null"`
	Name        string `gorm:"not null"`
	Price       int64  `gorm:"not null;default:0"`
	Currency    string `gorm:"size:3;not null;default:'usd'"`
	Description string `gorm:"type:text"`
	// FeaturesJSON stores the feature bullet list as a JSON array.
	FeaturesJSON string `gorm:"column:features;type:text"`
	Published    bool   `gorm:"not null;default:false"`
	SortOrder    int    `gorm:"not null;default:0"`
}

// Features decodes the stored feature list, skipping blank entries.
func (t Tier) Features() []string {
	if strings.TrimSpace(t.FeaturesJSON) == "" {
		return nil
	}
	var raw []string
	if err := json.Unmarshal([]byte(t.FeaturesJSON), &raw); err != nil {
		return nil
	}
	features := make([]string, 0, len(raw))
	for _, feature := range raw {
		if trimmed := strings.TrimSpace(feature); trimmed != "" {
			features = append(features, trimmed)
		}
	}
	return features
}

// SetFeatures encodes the feature list into FeaturesJSON.
func (t *Tier) SetFeatures(features []string) {
	cleaned := make([]string, 0, len(features))
	for _, feature := range features {
		if trimmed := strings.TrimSpace(feature); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	encoded, _ := json.Marshal(cleaned)
	t.FeaturesJSON = string(encoded)
}
