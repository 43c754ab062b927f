package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"appointly/metrics"
	"appointly/models"
	"appointly/services/availability"
	"appointly/services/realtime"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ViewSubscriber is satisfied by *realtime.Broadcaster.
type ViewSubscriber interface {
	Subscribe(ctx context.Context, q availability.ViewQuery) (*realtime.Subscription, error)
}

type AvailabilityHandler struct {
	Service    availability.AvailabilityService
	Subscriber ViewSubscriber
	Metrics    *metrics.BookingMetrics
	KeepAlive  time.Duration
}

func NewAvailabilityHandler(svc availability.AvailabilityService, sub ViewSubscriber, m *metrics.BookingMetrics) *AvailabilityHandler {
	return &AvailabilityHandler{Service: svc, Subscriber: sub, Metrics: m, KeepAlive: 25 * time.Second}
}

func viewQuery(c *gin.Context) (availability.ViewQuery, error) {
	sel, err := models.ParseProviderSelection(c.DefaultQuery("provider", models.AnyProviderValue))
	if err != nil {
		return availability.ViewQuery{}, err
	}
	return availability.ViewQuery{
		LocationID: c.Query("locationId"),
		Selection:  sel,
		Date:       c.Query("date"),
	}, nil
}

func (h *AvailabilityHandler) view(c *gin.Context) (*models.AvailabilityView, bool) {
	q, err := viewQuery(c)
	if err != nil {
		badRequest(c, "Invalid provider selection", err)
		return nil, false
	}
	mode := "specific"
	if q.Selection.IsAny() {
		mode = "any"
	}
	start := time.Now()
	view, err := h.Service.GetView(c.Request.Context(), q)
	h.Metrics.ObserveAvailability(mode, time.Since(start).Seconds())
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return view, true
}

// GetDatesHandler lists the bookable dates in the horizon.
func (h *AvailabilityHandler) GetDatesHandler(c *gin.Context) {
	view, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"locationId": view.LocationID,
		"provider":   view.Selection,
		"dates":      view.Dates,
		"computedAt": view.ComputedAt,
	})
}

// GetSlotsHandler lists the bookable slots of one date. A date that is no
// longer bookable comes back cleared with no slots.
func (h *AvailabilityHandler) GetSlotsHandler(c *gin.Context) {
	if c.Query("date") == "" {
		badRequest(c, "date is required", nil)
		return
	}
	view, ok := h.view(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"locationId": view.LocationID,
		"provider":   view.Selection,
		"date":       view.Date,
		"slots":      view.Slots,
		"computedAt": view.ComputedAt,
	})
}

// StreamHandler sends the current view and then a fresh view whenever the
// location's availability or appointments change, as server-sent events.
func (h *AvailabilityHandler) StreamHandler(c *gin.Context) {
	q, err := viewQuery(c)
	if err != nil {
		badRequest(c, "Invalid provider selection", err)
		return
	}
	sub, err := h.Subscriber.Subscribe(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	defer sub.Unsubscribe()

	logger := getLogger(c)
	logger.Debug("availability stream opened", zap.String("locationId", q.LocationID), zap.String("provider", q.Selection.String()))

	keepAlive := h.KeepAlive
	if keepAlive <= 0 {
		keepAlive = 25 * time.Second
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("availability", sub.Snapshot)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case view, ok := <-sub.Updates:
			if !ok {
				return false
			}
			c.SSEvent("availability", view)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
	logger.Debug("availability stream closed", zap.String("locationId", q.LocationID))
}

// GetAvailabilityHandler returns the stored record of one scope.
func (h *AvailabilityHandler) GetAvailabilityHandler(c *gin.Context) {
	a, err := h.Service.GetAvailability(c.Request.Context(), models.Scope(c.Param("scope")), c.Param("scopeId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"availability": a})
}

// PutAvailabilityHandler replaces the weekly schedule, blocked ranges and
// limits of one scope.
func (h *AvailabilityHandler) PutAvailabilityHandler(c *gin.Context) {
	var a models.Availability
	if err := c.ShouldBindJSON(&a); err != nil {
		badRequest(c, "Invalid availability payload", err)
		return
	}
	a.Scope = models.Scope(c.Param("scope"))
	a.ScopeID = c.Param("scopeId")
	if err := h.Service.SaveAvailability(c.Request.Context(), &a); err != nil {
		respondError(c, err)
		return
	}
	getLogger(c).Info("availability updated", zap.String("scope", string(a.Scope)), zap.String("scopeId", a.ScopeID), zap.String("by", c.GetString("callerID")))
	c.JSON(http.StatusOK, gin.H{"availability": a})
}
