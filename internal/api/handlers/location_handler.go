package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"smallbasket/internal/services"
	"smallbasket/internal/worker"
)

type LocationHandler struct {
	locationService *services.LocationService
	scheduler       *worker.Scheduler
}

func NewLocationHandler(locationService *services.LocationService, scheduler *worker.Scheduler) *LocationHandler {
	return &LocationHandler{
		locationService: locationService,
		scheduler:       scheduler,
	}
}

type TrackingRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// Sync handles POST /location/sync
func (h *LocationHandler) Sync(c *gin.Context) {
	res, err := h.scheduler.RunNow(c.Request.Context())
	if errors.Is(err, worker.ErrAlreadyRunning) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": res.String()})
}

// GetLocation handles GET /location
func (h *LocationHandler) GetLocation(c *gin.Context) {
	ctx := c.Request.Context()

	enabled, err := h.locationService.TrackingEnabled(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{"tracking_enabled": enabled}
	fix, ok, err := h.locationService.LastFix(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if ok {
		resp["last_fix"] = fix
	}
	if at, res := h.scheduler.LastRun(); !at.IsZero() {
		resp["last_run"] = gin.H{"at": at, "result": res.String()}
	}

	c.JSON(http.StatusOK, resp)
}

// SetTracking handles PUT /location/tracking
func (h *LocationHandler) SetTracking(c *gin.Context) {
	var req TrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.locationService.SetTrackingEnabled(c.Request.Context(), *req.Enabled); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tracking_enabled": *req.Enabled})
}
