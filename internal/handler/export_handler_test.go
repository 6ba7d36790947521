package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sport-meetup-api/internal/service"
	appErrors "github.com/noah-isme/sport-meetup-api/pkg/errors"
)

type fakeExportService struct {
	lastNow time.Time
}

func (f *fakeExportService) ICS(_ context.Context, id string) (*service.ExportFile, error) {
	if id == "missing" {
		return nil, appErrors.ErrNotFound
	}
	return &service.ExportFile{Filename: "run.ics", ContentType: "text/calendar; charset=utf-8", Body: []byte("BEGIN:VCALENDAR")}, nil
}

func (f *fakeExportService) GoogleCalendarURL(_ context.Context, id string) (string, error) {
	return "https://calendar.google.com/calendar/render?action=TEMPLATE", nil
}

func (f *fakeExportService) ScheduleCSV(_ context.Context, id string, now time.Time) (*service.ExportFile, error) {
	f.lastNow = now
	return &service.ExportFile{Filename: "run-schedule.csv", ContentType: "text/csv", Body: []byte("#,Date\n")}, nil
}

func (f *fakeExportService) SchedulePDF(_ context.Context, id string, now time.Time) (*service.ExportFile, error) {
	f.lastNow = now
	return &service.ExportFile{Filename: "run-schedule.pdf", ContentType: "application/pdf", Body: []byte("%PDF")}, nil
}

func TestExportHandlerICSAttachment(t *testing.T) {
	handler := NewExportHandler(&fakeExportService{})

	c, rec := newContext(http.MethodGet, "/activities/a1/calendar.ics", "", "", idParam("a1"))
	handler.ICS(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="run.ics"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "BEGIN:VCALENDAR", rec.Body.String())

	c, rec = newContext(http.MethodGet, "/activities/missing/calendar.ics", "", "", idParam("missing"))
	handler.ICS(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportHandlerGoogleCalendar(t *testing.T) {
	handler := NewExportHandler(&fakeExportService{})

	c, rec := newContext(http.MethodGet, "/activities/a1/calendar/google", "", "", idParam("a1"))
	handler.GoogleCalendar(c)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "calendar.google.com")

	c, rec = newContext(http.MethodGet, "/activities/a1/calendar/google?format=json", "", "", idParam("a1"))
	handler.GoogleCalendar(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decodeEnvelope(t, rec).Data), "calendar.google.com")
}

func TestExportHandlerSchedulesUseClock(t *testing.T) {
	svc := &fakeExportService{}
	handler := NewExportHandler(svc)
	handler.now = func() time.Time { return fixedNow }

	c, rec := newContext(http.MethodGet, "/activities/a1/schedule.csv", "", "", idParam("a1"))
	handler.ScheduleCSV(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, fixedNow, svc.lastNow)

	c, rec = newContext(http.MethodGet, "/activities/a1/schedule.pdf", "", "", idParam("a1"))
	handler.SchedulePDF(c)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
}
