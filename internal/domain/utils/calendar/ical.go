package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/fasevent/registrations/internal/domain/dto"
	"github.com/fasevent/registrations/internal/domain/entity"
	ics "github.com/arran4/golang-ical"
)

// TicketToICS builds an iCalendar invite for the participant's event entry.
// The event gets a stable UID per registration so re-sent invites replace the earlier one,
// plus reminders one day and one hour before the start.
func TicketToICS(event dto.Event, registration *entity.Registration, verifyURL string) ([]byte, error) {
	if event.StartTime.IsZero() {
		return nil, fmt.Errorf("event start time is not configured")
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//FAS Registrations//EN")
	cal.SetVersion("2.0")
	cal.SetCalscale("GREGORIAN")

	e := cal.AddEvent(fmt.Sprintf("%s@%s", registration.RegistrationID, event.ID))

	now := time.Now()
	e.SetDtStampTime(now)
	e.SetCreatedTime(now)
	e.SetModifiedAt(now)

	e.SetStartAt(event.StartTime)
	if !event.EndTime.IsZero() {
		e.SetEndAt(event.EndTime)
	} else {
		e.SetEndAt(event.StartTime.Add(3 * time.Hour))
	}

	e.SetSummary(event.Name)
	e.SetLocation(event.Location)

	var description strings.Builder
	if event.Description != "" {
		description.WriteString(event.Description)
		description.WriteString("\n\n")
	}
	fmt.Fprintf(&description, "Registration ID: %s\n", registration.RegistrationID)
	fmt.Fprintf(&description, "Categories: %s\n", registration.ParticipationCategories.String())
	fmt.Fprintf(&description, "Ticket: %s", verifyURL)
	e.SetDescription(description.String())
	e.SetURL(verifyURL)

	e.SetStatus(ics.ObjectStatusConfirmed)
	e.SetTimeTransparency(ics.TransparencyOpaque)
	e.SetClass(ics.ClassificationPublic)
	e.SetSequence(0)

	dayAlarm := e.AddAlarm()
	dayAlarm.SetAction(ics.ActionDisplay)
	dayAlarm.AddProperty("TRIGGER;VALUE=DURATION", "-P1D")
	dayAlarm.SetDescription(fmt.Sprintf("Reminder: %s is tomorrow", event.Name))

	hourAlarm := e.AddAlarm()
	hourAlarm.SetAction(ics.ActionDisplay)
	hourAlarm.AddProperty("TRIGGER;VALUE=DURATION", "-PT1H")
	hourAlarm.SetDescription(fmt.Sprintf("Reminder: %s starts in an hour", event.Name))

	return []byte(cal.Serialize()), nil
}
