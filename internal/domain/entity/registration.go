package entity

import (
	"time"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentVerified, PaymentRejected:
		return true
	}
	return false
}

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
	Other  Gender = "other"
)

func (g Gender) Valid() bool {
	return g == Male || g == Female || g == Other
}

type EducationStatus string

const (
	InCollege   EducationStatus = "inCollege"
	School      EducationStatus = "school"
	NoEducation EducationStatus = "none"
)

func (e EducationStatus) Valid() bool {
	return e == InCollege || e == School || e == NoEducation
}

type Registration struct {
	ID             uint   `gorm:"primaryKey" json:"-"`
	RegistrationID string `gorm:"uniqueIndex;not null;size:16" json:"registrationId"`

	Name            string          `gorm:"not null" json:"name"`
	Age             int             `gorm:"not null" json:"age"`
	Gender          Gender          `gorm:"not null" json:"gender"`
	Email           string          `gorm:"not null;index" json:"email"`
	Phone           string          `gorm:"not null;size:10" json:"phone"`
	EducationStatus EducationStatus `gorm:"not null" json:"educationStatus"`

	ParticipationCategories Categories `gorm:"embedded;embeddedPrefix:category_" json:"participationCategories"`

	UtrID                string        `gorm:"not null" json:"utrId"`
	PaymentScreenshotURL string        `gorm:"not null" json:"paymentScreenshotUrl"`
	TotalAmount          int64         `gorm:"not null" json:"totalAmount"`
	PaymentStatus        PaymentStatus `gorm:"not null;default:pending;index" json:"paymentStatus"`

	QRCodeImage *string `gorm:"type:text" json:"qrCodeImage,omitempty"`

	EntryVerified  bool       `gorm:"not null;default:false" json:"entryVerified"`
	EntryTimestamp *time.Time `json:"entryTimestamp,omitempty"`

	RegistrationDate time.Time `gorm:"not null;index" json:"registrationDate"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// HasTicket reports whether a ticket image has already been produced.
func (r *Registration) HasTicket() bool {
	return r.QRCodeImage != nil && *r.QRCodeImage != ""
}

func (r *Registration) IsPaid() bool {
	return r.PaymentStatus == PaymentVerified
}
