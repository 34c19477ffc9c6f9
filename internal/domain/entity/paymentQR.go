package entity

import "time"

// PaymentQR is the payment QR image shown for one category combination.
// The flag triple is unique.
type PaymentQR struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ModelWalk      bool      `gorm:"not null;uniqueIndex:idx_payment_qr_categories" json:"modelWalk"`
	Dance          bool      `gorm:"not null;uniqueIndex:idx_payment_qr_categories" json:"dance"`
	MovieSelection bool      `gorm:"not null;uniqueIndex:idx_payment_qr_categories" json:"movieSelection"`
	ImageURL       string    `gorm:"not null" json:"imageUrl"`
	Name           string    `json:"name"`
	IsActive       bool      `gorm:"not null;default:true" json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (p *PaymentQR) Categories() Categories {
	return Categories{
		ModelWalk:      p.ModelWalk,
		Dance:          p.Dance,
		MovieSelection: p.MovieSelection,
	}
}

func (p *PaymentQR) SetCategories(c Categories) {
	p.ModelWalk = c.ModelWalk
	p.Dance = c.Dance
	p.MovieSelection = c.MovieSelection
}
