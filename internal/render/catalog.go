package render

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Template is a full-page starter markup offered by the editor.
type Template struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Content     string `json:"content" yaml:"content"`
}

// Theme is a named style class that can be applied to a page.
type Theme struct {
	Name        string `json:"name" yaml:"name"`
	Class       string `json:"class" yaml:"class"`
	Description string `json:"description" yaml:"description"`
}

// Catalog holds the editor's templates and themes.
type Catalog struct {
	Templates []Template `json:"templates" yaml:"templates"`
	Themes    []Theme    `json:"themes" yaml:"themes"`
}

// Insertable is one item of the editor sidebar.
type Insertable struct {
	Kind        string          `json:"kind"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Insert      string          `json:"insert"`
	Attributes  []AttributeSpec `json:"attributes,omitempty"`
}

var (
	catalogOnce   sync.Once
	catalogCached Catalog
	catalogErr    error
)

// ParseCatalog decodes a catalog document.
func ParseCatalog(data []byte) (Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	for i, tmpl := range catalog.Templates {
		if strings.TrimSpace(tmpl.Name) == "" {
			return Catalog{}, fmt.Errorf("catalog template %d has no name", i)
		}
	}
	return catalog, nil
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (Catalog, error) {
	catalogOnce.Do(func() {
		catalogCached, catalogErr = ParseCatalog(catalogYAML)
	})
	return catalogCached, catalogErr
}

// Insertables lists the palette components followed by the catalog templates.
func (c Catalog) Insertables() []Insertable {
	palette := Palette()
	items := make([]Insertable, 0, len(palette)+len(c.Templates))
	for _, entry := range palette {
		items = append(items, Insertable{
			Kind:        "component",
			Name:        entry.Name,
			Description: entry.Description,
			Insert:      entry.Insert,
			Attributes:  entry.Attributes,
		})
	}
	for _, tmpl := range c.Templates {
		items = append(items, Insertable{
			Kind:        "template",
			Name:        tmpl.Name,
			Description: tmpl.Description,
			Insert:      tmpl.Content,
		})
	}
	return items
}

// Theme looks a theme up by name, case-insensitively.
func (c Catalog) Theme(name string) (Theme, bool) {
	for _, theme := range c.Themes {
		if strings.EqualFold(theme.Name, strings.TrimSpace(name)) {
			return theme, true
		}
	}
	return Theme{}, false
}
