package admin

import (
	"testing"
	"time"

	"github.com/fasevent/registrations/internal/domain/dto"
	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/stretchr/testify/assert"
)

func TestScanMessage(t *testing.T) {
	scan := &dto.TicketScan{
		Name:           "Jane <Doe>",
		RegistrationID: "FAS-123456",
		Categories:     entity.Categories{ModelWalk: true, Dance: true},
		EntryTimestamp: time.Date(2026, 11, 20, 18, 5, 0, 0, time.UTC),
	}

	text := scanMessage(scan)
	assert.Contains(t, text, "Entry verified")
	assert.Contains(t, text, "Jane &lt;Doe&gt;")
	assert.Contains(t, text, "Model Selection, Dance Selection")

	scan.AlreadyVerified = true
	assert.Contains(t, scanMessage(scan), "already been used")
}

func TestRegistrationMessage(t *testing.T) {
	entered := time.Date(2026, 11, 20, 18, 5, 0, 0, time.UTC)
	text := registrationMessage(&entity.Registration{
		RegistrationID:          "FAS-123456",
		Name:                    "Jane Doe",
		Age:                     21,
		Email:                   "jane@example.com",
		Phone:                   "9876543210",
		UtrID:                   "123456789012",
		TotalAmount:             10000,
		ParticipationCategories: entity.Categories{MovieSelection: true},
		PaymentStatus:           entity.PaymentVerified,
		EntryVerified:           true,
		EntryTimestamp:          &entered,
	})

	assert.Contains(t, text, "<b>FAS-123456</b>")
	assert.Contains(t, text, "₹10000")
	assert.Contains(t, text, "Payment: <b>verified</b>")
	assert.Contains(t, text, "Entered:")
	assert.NotContains(t, text, "screenshot")
}

func TestStatsMessage(t *testing.T) {
	text := statsMessage(map[entity.PaymentStatus]int64{
		entity.PaymentPending:  2,
		entity.PaymentVerified: 5,
	})
	assert.Contains(t, text, "Registrations: 7")
	assert.Contains(t, text, "Rejected: 0")
}
