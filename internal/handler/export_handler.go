package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sport-meetup-api/internal/service"
	"github.com/noah-isme/sport-meetup-api/pkg/response"
)

type exportService interface {
	ICS(ctx context.Context, id string) (*service.ExportFile, error)
	GoogleCalendarURL(ctx context.Context, id string) (string, error)
	ScheduleCSV(ctx context.Context, id string, now time.Time) (*service.ExportFile, error)
	SchedulePDF(ctx context.Context, id string, now time.Time) (*service.ExportFile, error)
}

// ExportHandler serves calendar and schedule downloads.
type ExportHandler struct {
	service exportService
	now     func() time.Time
}

// NewExportHandler constructs the handler.
func NewExportHandler(svc exportService) *ExportHandler {
	return &ExportHandler{service: svc, now: time.Now}
}

// ICS godoc
// @Summary Download iCalendar file
// @Tags Export
// @Produce text/calendar
// @Param id path string true "Activity ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /activities/{id}/calendar.ics [get]
func (h *ExportHandler) ICS(c *gin.Context) {
	file, err := h.service.ICS(c.Request.Context(), c.Param("id"))
	h.send(c, file, err)
}

// GoogleCalendar godoc
// @Summary Google Calendar link
// @Description Redirects to Google Calendar, or returns the link when format=json
// @Tags Export
// @Param id path string true "Activity ID"
// @Param format query string false "json"
// @Success 302
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{id}/calendar/google [get]
func (h *ExportHandler) GoogleCalendar(c *gin.Context) {
	link, err := h.service.GoogleCalendarURL(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if c.Query("format") == "json" {
		response.JSON(c, http.StatusOK, gin.H{"url": link}, nil)
		return
	}
	c.Redirect(http.StatusFound, link)
}

// ScheduleCSV godoc
// @Summary Download upcoming schedule as CSV
// @Tags Export
// @Produce text/csv
// @Param id path string true "Activity ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /activities/{id}/schedule.csv [get]
func (h *ExportHandler) ScheduleCSV(c *gin.Context) {
	file, err := h.service.ScheduleCSV(c.Request.Context(), c.Param("id"), h.now().UTC())
	h.send(c, file, err)
}

// SchedulePDF godoc
// @Summary Download upcoming schedule as PDF
// @Tags Export
// @Produce application/pdf
// @Param id path string true "Activity ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /activities/{id}/schedule.pdf [get]
func (h *ExportHandler) SchedulePDF(c *gin.Context) {
	file, err := h.service.SchedulePDF(c.Request.Context(), c.Param("id"), h.now().UTC())
	h.send(c, file, err)
}

func (h *ExportHandler) send(c *gin.Context, file *service.ExportFile, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
