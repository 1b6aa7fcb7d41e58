package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-alert-dashboard/internal/metrics"
	"github.com/mr1hm/go-alert-dashboard/internal/models"
	"github.com/mr1hm/go-alert-dashboard/internal/store"
	"github.com/mr1hm/go-alert-dashboard/internal/stream"
)

const maxFeedLimit = 1000

// AlertReader is the read side of the rolling store.
type AlertReader interface {
	Feed(limit int) ([]models.Alert, error)
	FeedBySeverity(limit int, sev models.Severity) ([]models.Alert, error)
	Snapshot() store.Snapshot
	Trend(sev models.Severity) ([]models.TrendSample, error)
}

// Controller accepts commands that mutate dashboard state.
type Controller interface {
	Inject(ctx context.Context, a models.Alert) error
	SetVisible(ctx context.Context, visible bool) (bool, error)
	Visible() bool
}

type AlertSource interface {
	Generate() models.Alert
}

type Options struct {
	FeedLimit int
	KeepAlive time.Duration
	Source    AlertSource // enables the debug endpoint when set
	Metrics   *metrics.Metrics
}

type Handler struct {
	reader      AlertReader
	control     Controller
	broadcaster *stream.Broadcaster
	opts        Options
}

func NewHandler(reader AlertReader, control Controller, broadcaster *stream.Broadcaster, opts Options) *Handler {
	if opts.FeedLimit <= 0 {
		opts.FeedLimit = 10
	}
	if opts.KeepAlive <= 0 {
		opts.KeepAlive = 15 * time.Second
	}
	return &Handler{
		reader:      reader,
		control:     control,
		broadcaster: broadcaster,
		opts:        opts,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/alerts", h.getAlerts)
	api.GET("/stats", h.getStats)
	api.GET("/trends", h.getTrends)
	api.GET("/trends/:severity", h.getTrend)
	api.POST("/visibility", h.setVisibility)
	if h.broadcaster != nil {
		api.GET("/stream", h.stream)
	}
	if h.opts.Source != nil {
		api.POST("/debug/test-alert", h.createTestAlert)
	}

	if h.opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.opts.Metrics.Handler()))
	}
}

func (h *Handler) getAlerts(c *gin.Context) {
	limit := h.opts.FeedLimit
	if l := c.Query("limit"); l != "" {
		lim, err := strconv.Atoi(l)
		if err != nil || lim > maxFeedLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be an integer up to " + strconv.Itoa(maxFeedLimit)})
			return
		}
		limit = lim
	}

	var (
		alerts []models.Alert
		err    error
	)
	if s := c.Query("severity"); s != "" && !strings.EqualFold(s, "all") {
		sev, ok := models.ParseSeverity(s)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown severity: " + s})
			return
		}
		alerts, err = h.reader.FeedBySeverity(limit, sev)
	} else {
		alerts, err = h.reader.Feed(limit)
	}
	if err != nil {
		if errors.Is(err, store.ErrInvalidLimit) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read feed"})
		return
	}

	c.JSON(http.StatusOK, feedResponse{
		Alerts: toAlertViews(alerts),
		Count:  len(alerts),
	})
}

func (h *Handler) getStats(c *gin.Context) {
	snap := h.reader.Snapshot()
	c.JSON(http.StatusOK, statsResponse{
		Counts:      store.CountAll(snap.Alerts),
		Total:       len(snap.Alerts),
		LastUpdated: snap.LastUpdated,
	})
}

func (h *Handler) getTrends(c *gin.Context) {
	trends := make([]trendResponse, 0, len(models.TrackedSeverities))
	for _, sev := range models.TrackedSeverities {
		samples, err := h.reader.Trend(sev)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read trends"})
			return
		}
		trends = append(trends, trendResponse{Severity: sev, Samples: toSampleViews(samples)})
	}
	c.JSON(http.StatusOK, gin.H{"trends": trends})
}

func (h *Handler) getTrend(c *gin.Context) {
	sev, ok := models.ParseSeverity(c.Param("severity"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown severity: " + c.Param("severity")})
		return
	}

	samples, err := h.reader.Trend(sev)
	if err != nil {
		if errors.Is(err, store.ErrUntrackedSeverity) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read trend"})
		return
	}

	c.JSON(http.StatusOK, trendResponse{Severity: sev, Samples: toSampleViews(samples)})
}

type visibilityRequest struct {
	Visible *bool `json:"visible" binding:"required"`
}

func (h *Handler) setVisibility(c *gin.Context) {
	var req visibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be {\"visible\": bool}"})
		return
	}

	resynced, err := h.control.SetVisible(c.Request.Context(), *req.Visible)
	if err != nil {
		slog.Error("failed to apply visibility change", "visible", *req.Visible, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dashboard is shutting down"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"visible":  h.control.Visible(),
		"resynced": resynced,
	})
}

func (h *Handler) stream(c *gin.Context) {
	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	if m := h.opts.Metrics; m != nil {
		m.StreamSubscribers.Inc()
		defer m.StreamSubscribers.Dec()
	}

	slog.Info("client subscribed to alert stream", "subscriber_id", id)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	snap := h.reader.Snapshot()
	c.SSEvent("ready", gin.H{"subscriberId": id, "total": len(snap.Alerts)})
	c.Writer.Flush()

	keepAlive := time.NewTicker(h.opts.KeepAlive)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Type), toEventView(ev))
			return true
		case t := <-keepAlive.C:
			c.SSEvent("ping", gin.H{"at": t})
			return true
		}
	})

	slog.Info("client disconnected from alert stream", "subscriber_id", id)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) createTestAlert(c *gin.Context) {
	alert := h.opts.Source.Generate()

	if err := h.control.Inject(c.Request.Context(), alert); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dashboard is shutting down"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "test alert queued",
		"alert":   toAlertView(alert),
	})
}
