package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sport-meetup-api/internal/dto"
	"github.com/noah-isme/sport-meetup-api/pkg/response"
)

type dashboardService interface {
	Home(ctx context.Context, userID string, now time.Time) (*dto.HomeResponse, error)
	Mine(ctx context.Context, userID string, now time.Time) (*dto.DashboardResponse, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
	now     func() time.Time
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service, now: time.Now}
}

// Home godoc
// @Summary Home page sections
// @Description Soonest activities split into joined and available
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /home [get]
func (h *DashboardHandler) Home(c *gin.Context) {
	home, err := h.service.Home(c.Request.Context(), viewerID(c), h.now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, home, nil)
}

// Dashboard godoc
// @Summary Personal dashboard
// @Description Organized and joined activities split into upcoming and past
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	dashboard, err := h.service.Mine(c.Request.Context(), userID, h.now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil)
}
