package entity

import "time"

// CategoryCostID is the primary key of the single cost table row.
const CategoryCostID uint = 1

const DefaultCategoryPrice int64 = 5000

type CategoryCost struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	ModelWalk      int64     `gorm:"not null" json:"modelWalk"`
	Dance          int64     `gorm:"not null" json:"dance"`
	MovieSelection int64     `gorm:"not null" json:"movieSelection"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func DefaultCategoryCost(price int64) CategoryCost {
	return CategoryCost{
		ID:             CategoryCostID,
		ModelWalk:      price,
		Dance:          price,
		MovieSelection: price,
	}
}

func (c CategoryCost) Price(category Category) int64 {
	switch category {
	case ModelWalk:
		return c.ModelWalk
	case Dance:
		return c.Dance
	case MovieSelection:
		return c.MovieSelection
	}
	return 0
}

// Total sums the prices of the selected categories.
func (c CategoryCost) Total(categories Categories) int64 {
	var total int64
	for _, category := range categories.Selected() {
		total += c.Price(category)
	}
	return total
}
