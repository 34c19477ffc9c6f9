package dto

import (
	"time"

	"github.com/fasevent/registrations/internal/domain/entity"
)

// RegistrationInput is the public registration form.
type RegistrationInput struct {
	Name                    string                 `json:"name"`
	Age                     int                    `json:"age"`
	Gender                  entity.Gender          `json:"gender"`
	Email                   string                 `json:"email"`
	Phone                   string                 `json:"phone"`
	EducationStatus         entity.EducationStatus `json:"educationStatus"`
	ParticipationCategories entity.Categories      `json:"participationCategories"`
	UtrID                   string                 `json:"utrId"`
	PaymentScreenshotURL    string                 `json:"paymentScreenshotUrl"`
}

// RegistrationResult is returned by Create. Warnings lists post-commit steps that failed.
type RegistrationResult struct {
	RegistrationID string   `json:"registrationId"`
	TotalAmount    int64    `json:"totalAmount"`
	QRCodeImage    *string  `json:"qrCodeImage"`
	Warnings       []string `json:"warnings,omitempty"`
}

// StatusUpdateResult is returned by SetPaymentStatus.
type StatusUpdateResult struct {
	Registration *entity.Registration `json:"registration"`
	Warnings     []string             `json:"warnings,omitempty"`
}

// EntryVerification is the outcome of an entry check. AlreadyVerified marks the
// "already done" outcome; Timestamp is then the original entry time.
type EntryVerification struct {
	RegistrationID  string    `json:"registrationId"`
	Name            string    `json:"name"`
	Timestamp       time.Time `json:"entryTimestamp"`
	AlreadyVerified bool      `json:"alreadyVerified"`
}

// TicketScan is the reduced projection returned to the scanning device.
type TicketScan struct {
	Name            string            `json:"name"`
	RegistrationID  string            `json:"registrationId"`
	Categories      entity.Categories `json:"categories"`
	EntryTimestamp  time.Time         `json:"entryTimestamp"`
	AlreadyVerified bool              `json:"alreadyVerified"`
}

func NewTicketScan(registration *entity.Registration, verification EntryVerification) TicketScan {
	return TicketScan{
		Name:            registration.Name,
		RegistrationID:  registration.RegistrationID,
		Categories:      registration.ParticipationCategories,
		EntryTimestamp:  verification.Timestamp,
		AlreadyVerified: verification.AlreadyVerified,
	}
}
