package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sport-meetup-api/internal/dto"
	"github.com/noah-isme/sport-meetup-api/internal/middleware"
	"github.com/noah-isme/sport-meetup-api/internal/models"
	appErrors "github.com/noah-isme/sport-meetup-api/pkg/errors"
	"github.com/noah-isme/sport-meetup-api/pkg/response"
)

type activityService interface {
	List(ctx context.Context, filter models.ActivityFilter, userID string, now time.Time) ([]dto.ActivitySummary, *models.Pagination, bool, error)
	Get(ctx context.Context, id, userID string, now time.Time) (*dto.ActivityDetail, error)
	Create(ctx context.Context, organizerID string, req dto.CreateActivityRequest, now time.Time) (*dto.ActivityDetail, error)
	Update(ctx context.Context, id, userID string, req dto.UpdateActivityRequest, now time.Time) (*dto.ActivityDetail, error)
	Delete(ctx context.Context, id, userID string) error
}

type participationService interface {
	Join(ctx context.Context, activityID, userID string) (*dto.ParticipationResponse, error)
	Leave(ctx context.Context, activityID, userID string) (*dto.ParticipationResponse, error)
}

// ActivityHandler exposes activity listing, CRUD and participation endpoints.
type ActivityHandler struct {
	activities    activityService
	participation participationService
	now           func() time.Time
}

// NewActivityHandler constructs the handler.
func NewActivityHandler(activities activityService, participation participationService) *ActivityHandler {
	return &ActivityHandler{activities: activities, participation: participation, now: time.Now}
}

// List godoc
// @Summary List upcoming activities
// @Description Active activities ordered by next occurrence
// @Tags Activities
// @Produce json
// @Param sport query string false "Sport type"
// @Param skill query string false "Skill level"
// @Param location query string false "Location substring"
// @Param dateFrom query string false "Earliest next occurrence (YYYY-MM-DD)"
// @Param dateTo query string false "Latest next occurrence (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /activities [get]
func (h *ActivityHandler) List(c *gin.Context) {
	filter, err := parseActivityFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	items, pagination, cacheHit, err := h.activities.List(c.Request.Context(), filter, viewerID(c), h.now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, items, pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Activity detail
// @Tags Activities
// @Produce json
// @Param id path string true "Activity ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{id} [get]
func (h *ActivityHandler) Get(c *gin.Context) {
	detail, err := h.activities.Get(c.Request.Context(), c.Param("id"), viewerID(c), h.now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Create godoc
// @Summary Create activity
// @Tags Activities
// @Accept json
// @Produce json
// @Param payload body dto.CreateActivityRequest true "Activity payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /activities [post]
func (h *ActivityHandler) Create(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity payload"))
		return
	}

	detail, err := h.activities.Create(c.Request.Context(), userID, req, h.now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, detail)
}

// Update godoc
// @Summary Update activity
// @Description Organizer only. Omitted fields are left unchanged.
// @Tags Activities
// @Accept json
// @Produce json
// @Param id path string true "Activity ID"
// @Param payload body dto.UpdateActivityRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{id} [patch]
func (h *ActivityHandler) Update(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity payload"))
		return
	}

	detail, err := h.activities.Update(c.Request.Context(), c.Param("id"), userID, req, h.now().UTC())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete activity
// @Tags Activities
// @Param id path string true "Activity ID"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{id} [delete]
func (h *ActivityHandler) Delete(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.activities.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Join godoc
// @Summary Join activity
// @Tags Participation
// @Produce json
// @Param id path string true "Activity ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /activities/{id}/join [post]
func (h *ActivityHandler) Join(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.participation.Join(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Leave godoc
// @Summary Leave activity
// @Tags Participation
// @Produce json
// @Param id path string true "Activity ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /activities/{id}/leave [post]
func (h *ActivityHandler) Leave(c *gin.Context) {
	userID, err := requireUserID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.participation.Leave(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

func parseActivityFilter(c *gin.Context) (models.ActivityFilter, error) {
	filter := models.ActivityFilter{
		Sport:       strings.TrimSpace(c.Query("sport")),
		Skill:       strings.TrimSpace(c.Query("skill")),
		Location:    strings.TrimSpace(c.Query("location")),
		OrganizerID: strings.TrimSpace(c.Query("organizer")),
		Page:        parseQueryInt(c, "page", 1),
		PageSize:    parseQueryInt(c, "page_size", 0),
	}
	from, err := parseDateParam(queryAny(c, "dateFrom", "date_from"))
	if err != nil {
		return filter, err
	}
	to, err := parseDateParam(queryAny(c, "dateTo", "date_to"))
	if err != nil {
		return filter, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return filter, appErrors.Clone(appErrors.ErrValidation, "dateTo must not be before dateFrom")
	}
	filter.DateFrom = from
	filter.DateTo = to
	return filter, nil
}
