package dto

import "github.com/fasevent/registrations/internal/domain/entity"

type PaymentQRInput struct {
	Categories entity.Categories `json:"categories"`
	ImageURL   string            `json:"imageUrl"`
	Name       string            `json:"name"`
}

// PaymentQRLookup is the public view. ExactMatch is false when a fallback record was chosen.
type PaymentQRLookup struct {
	ID         uint              `json:"id"`
	ImageURL   string            `json:"imageUrl"`
	Name       string            `json:"name"`
	Categories entity.Categories `json:"categories"`
	ExactMatch bool              `json:"exactMatch"`
}

func NewPaymentQRLookup(qr *entity.PaymentQR, exact bool) PaymentQRLookup {
	return PaymentQRLookup{
		ID:         qr.ID,
		ImageURL:   qr.ImageURL,
		Name:       qr.Name,
		Categories: qr.Categories(),
		ExactMatch: exact,
	}
}
