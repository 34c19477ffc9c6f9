package entity

import "strings"

type Category string

const (
	ModelWalk      Category = "modelWalk"
	Dance          Category = "dance"
	MovieSelection Category = "movieSelection"
)

// AllCategories is the fixed category order used for totals, display and exports.
var AllCategories = []Category{ModelWalk, Dance, MovieSelection}

// DisplayName is the label shown to participants in emails and exports.
func (c Category) DisplayName() string {
	switch c {
	case ModelWalk:
		return "Model Selection"
	case MovieSelection:
		return "Movie Selection"
	case Dance:
		return "Dance Selection"
	}
	return string(c)
}

// Categories is the participant's selection. Stored inline on the owning row.
type Categories struct {
	ModelWalk      bool `gorm:"not null;default:false" json:"modelWalk"`
	Dance          bool `gorm:"not null;default:false" json:"dance"`
	MovieSelection bool `gorm:"not null;default:false" json:"movieSelection"`
}

func (c Categories) Has(category Category) bool {
	switch category {
	case ModelWalk:
		return c.ModelWalk
	case Dance:
		return c.Dance
	case MovieSelection:
		return c.MovieSelection
	}
	return false
}

func (c Categories) Any() bool {
	return c.ModelWalk || c.Dance || c.MovieSelection
}

func (c Categories) Selected() []Category {
	var selected []Category
	for _, category := range AllCategories {
		if c.Has(category) {
			selected = append(selected, category)
		}
	}
	return selected
}

// Overlap counts the flags on which c and other agree.
func (c Categories) Overlap(other Categories) int {
	n := 0
	for _, category := range AllCategories {
		if c.Has(category) == other.Has(category) {
			n++
		}
	}
	return n
}

func (c Categories) String() string {
	names := make([]string, 0, 3)
	for _, category := range c.Selected() {
		names = append(names, category.DisplayName())
	}
	return strings.Join(names, ", ")
}
