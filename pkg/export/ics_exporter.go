package export

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

// DefaultProductID identifies the service in exported calendars.
const DefaultProductID = "-//SportMeetup//Activity//EN"

// ICSExporter renders activities as single-event iCalendar files.
type ICSExporter struct {
	productID string
	now       func() time.Time
}

// NewICSExporter constructs an exporter. An empty product id uses DefaultProductID.
func NewICSExporter(productID string) *ICSExporter {
	if strings.TrimSpace(productID) == "" {
		productID = DefaultProductID
	}
	return &ICSExporter{productID: productID, now: time.Now}
}

// Render serialises the event into a VCALENDAR containing one VEVENT. A
// recurring event carries its RRULE instead of expanded dates.
func (e *ICSExporter) Render(ev CalendarEvent) ([]byte, error) {
	if ev.Start.IsZero() {
		return nil, fmt.Errorf("ics requires an event start")
	}
	id := ev.ID
	if id == "" {
		id = uuid.NewString()
	}

	cal := ical.NewCalendar()
	cal.SetProductId(e.productID)
	cal.SetMethod(ical.MethodPublish)

	event := cal.AddEvent(id + "@sportmeetup")
	event.SetDtStampTime(e.now())
	event.SetStartAt(ev.Start)
	event.SetEndAt(ev.end())
	event.SetSummary(ev.Title)
	if ev.Description != "" {
		event.SetDescription(ev.Description)
	}
	if ev.Location != "" {
		event.SetLocation(ev.Location)
	}
	if rule := ev.Rule(); rule != "" {
		event.AddProperty(ical.ComponentPropertyRrule, rule)
	}

	return []byte(cal.Serialize()), nil
}
