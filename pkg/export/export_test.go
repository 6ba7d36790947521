package export

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teambition/rrule-go"

	"github.com/noah-isme/sport-meetup-api/pkg/recurrence"
)

func TestBuildRRule(t *testing.T) {
	until := time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		freq  recurrence.Frequency
		until *time.Time
		want  string
	}{
		{name: "daily", freq: recurrence.Daily, want: "FREQ=DAILY"},
		{name: "weekly", freq: recurrence.Weekly, want: "FREQ=WEEKLY"},
		{name: "biweekly", freq: recurrence.Biweekly, want: "FREQ=WEEKLY;INTERVAL=2"},
		{name: "monthly with end", freq: recurrence.Monthly, until: &until, want: "FREQ=MONTHLY;UNTIL=20240630T180000Z"},
		{name: "unknown", freq: "yearly", want: ""},
		{name: "empty", freq: "", until: &until, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildRRule(tt.freq, tt.until))
		})
	}
}

func TestBuildRRuleParsesAsRFC5545(t *testing.T) {
	until := time.Date(2024, 6, 30, 18, 0, 0, 0, time.UTC)
	rule, err := rrule.StrToRRule(BuildRRule(recurrence.Biweekly, &until))
	require.NoError(t, err)
	assert.Equal(t, rrule.WEEKLY, rule.OrigOptions.Freq)
	assert.Equal(t, 2, rule.OrigOptions.Interval)
	assert.True(t, rule.OrigOptions.Until.Equal(until))
}

func TestEventEnd(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, start.Add(time.Hour), EventEnd(start, 0))
	assert.Equal(t, start.Add(90*time.Minute), EventEnd(start, 90))
}

func TestGoogleCalendarURL(t *testing.T) {
	end := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	ev := CalendarEvent{
		Title:             "Sunday Run",
		Description:       "Easy pace",
		Location:          "Central Park",
		Start:             time.Date(2024, 3, 3, 8, 0, 0, 0, time.UTC),
		IsRecurring:       true,
		RecurrenceType:    recurrence.Weekly,
		RecurrenceEndDate: &end,
	}

	raw := GoogleCalendarURL(ev)
	require.True(t, strings.HasPrefix(raw, "https://calendar.google.com/calendar/render?"))

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	q := parsed.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "Sunday Run", q.Get("text"))
	assert.Equal(t, "20240303T080000Z/20240303T090000Z", q.Get("dates"))
	assert.Equal(t, "Central Park", q.Get("location"))
	assert.Equal(t, "RRULE:FREQ=WEEKLY;UNTIL=20240430T000000Z", q.Get("recur"))

	ev.IsRecurring = false
	parsed, err = url.Parse(GoogleCalendarURL(ev))
	require.NoError(t, err)
	assert.Empty(t, parsed.Query().Get("recur"))
}

func TestICSExporterRender(t *testing.T) {
	exporter := NewICSExporter("")
	exporter.now = func() time.Time { return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) }

	ev := CalendarEvent{
		ID:             "4f1c",
		Title:          "Tennis Doubles",
		Location:       "Court 3",
		Start:          time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC),
		End:            time.Date(2024, 3, 5, 20, 0, 0, 0, time.UTC),
		IsRecurring:    true,
		RecurrenceType: recurrence.Biweekly,
	}
	body, err := exporter.Render(ev)
	require.NoError(t, err)
	out := string(body)

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "PRODID:"+DefaultProductID)
	assert.Contains(t, out, "METHOD:PUBLISH")
	assert.Contains(t, out, "UID:4f1c@sportmeetup")
	assert.Contains(t, out, "DTSTART:20240305T180000Z")
	assert.Contains(t, out, "DTEND:20240305T200000Z")
	assert.Contains(t, out, "SUMMARY:Tennis Doubles")
	assert.Contains(t, out, "RRULE:FREQ=WEEKLY;INTERVAL=2")
	assert.Equal(t, 1, strings.Count(out, "BEGIN:VEVENT"))
}

func TestICSExporterOneOffHasNoRule(t *testing.T) {
	body, err := NewICSExporter("-//Test//EN").Render(CalendarEvent{
		Title: "Pickup Game",
		Start: time.Date(2024, 3, 5, 18, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.NotContains(t, string(body), "RRULE")
	assert.Contains(t, string(body), "DTEND:20240305T190000Z")
}

func TestICSExporterRequiresStart(t *testing.T) {
	_, err := NewICSExporter("").Render(CalendarEvent{Title: "x"})
	assert.Error(t, err)
}

func TestScheduleDatasetRendersToCSVAndPDF(t *testing.T) {
	first := time.Date(2024, 3, 4, 19, 30, 0, 0, time.UTC)
	data := ScheduleDataset([]time.Time{first, first.AddDate(0, 0, 7)}, 90)
	require.Len(t, data.Rows, 2)
	assert.Equal(t, "Monday", data.Rows[0][ColumnDay])
	assert.Equal(t, "21:00", data.Rows[0][ColumnEnd])
	assert.Equal(t, "2024-03-11", data.Rows[1][ColumnDate])

	csvBytes, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvBytes)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "#,Date,Day,Start,End", lines[0])
	assert.Equal(t, "1,2024-03-04,Monday,19:30,21:00", lines[1])

	pdfBytes, err := NewPDFExporter().Render(data, "Evening Swim", "Every week")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdfBytes), "%PDF"))
}

func TestExportersRejectMissingHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}
