package calendar

import (
	"testing"
	"time"

	"github.com/fasevent/registrations/internal/domain/dto"
	"github.com/fasevent/registrations/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketToICS(t *testing.T) {
	event := dto.Event{
		ID:        "fas-2026",
		Name:      "Fashion Show",
		Location:  "Main Auditorium",
		StartTime: time.Date(2026, 11, 20, 18, 0, 0, 0, time.UTC),
	}
	registration := &entity.Registration{
		RegistrationID:          "FAS-123456",
		ParticipationCategories: entity.Categories{ModelWalk: true, Dance: true},
	}

	data, err := TicketToICS(event, registration, "https://fas.example.com/verify/FAS-123456")
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, "BEGIN:VCALENDAR")
	assert.Contains(t, body, "UID:FAS-123456@fas-2026")
	assert.Contains(t, body, "SUMMARY:Fashion Show")
	assert.Contains(t, body, "DTSTART:20261120T180000Z")
	assert.Contains(t, body, "DTEND:20261120T210000Z")
	assert.Contains(t, body, "BEGIN:VALARM")
}

func TestTicketToICSRequiresStart(t *testing.T) {
	_, err := TicketToICS(dto.Event{Name: "x"}, &entity.Registration{RegistrationID: "FAS-000001"}, "u")
	assert.Error(t, err)
}
