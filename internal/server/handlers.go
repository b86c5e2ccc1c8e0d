package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cryptotrack/internal"
	"cryptotrack/internal/tracker"
	"cryptotrack/internal/ui"
)

type Handlers struct {
	Svc    Service
	Logger zerolog.Logger
}

func NewHandlers(svc Service, logger zerolog.Logger) *Handlers {
	return &Handlers{Svc: svc, Logger: logger}
}

func (h *Handlers) SetupHandlers(router *gin.Engine) {
	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/coins", h.ListCoins)
		v1.GET("/resolve", h.ResolveCoin)

		coin := v1.Group("/coins/:id")
		{
			coin.GET("/snapshot", h.GetSnapshot)
			coin.GET("/history", h.GetHistory)
			coin.GET("/view", h.GetView)
		}
	}
}

type viewResponse struct {
	tracker.View
	Title   string      `json:"title"`
	Metrics []ui.Metric `json:"metrics"`
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "cryptotrack",
		"cache":     h.Svc.Stats(),
		"timestamp": time.Now(),
	})
}

func (h *Handlers) ListCoins(c *gin.Context) {
	coins, err := h.Svc.Coins(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	coins = ui.Filter(coins, c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"count": len(coins),
		"coins": coins,
	})
}

func (h *Handlers) ResolveCoin(c *gin.Context) {
	var (
		coin internal.CoinRef
		err  error
	)
	if name := c.Query("name"); name != "" {
		coin, err = h.Svc.Resolve(c.Request.Context(), name)
	} else {
		coin, err = h.Svc.DefaultCoin(c.Request.Context())
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, coin)
}

func (h *Handlers) GetSnapshot(c *gin.Context) {
	coin, ok := h.lookup(c)
	if !ok {
		return
	}
	snap, err := h.Svc.Snapshot(c.Request.Context(), coin.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handlers) GetHistory(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = n
	}

	coin, ok := h.lookup(c)
	if !ok {
		return
	}
	history, err := h.Svc.History(c.Request.Context(), coin.ID, days)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *Handlers) GetView(c *gin.Context) {
	coin, ok := h.lookup(c)
	if !ok {
		return
	}
	view, err := h.Svc.View(c.Request.Context(), coin)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewResponse{
		View:    view,
		Title:   ui.ChartTitle(coin.Name, view.History.Days),
		Metrics: ui.Metrics(view.Snapshot),
	})
}

func (h *Handlers) lookup(c *gin.Context) (internal.CoinRef, bool) {
	coin, err := h.Svc.Lookup(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return internal.CoinRef{}, false
	}
	return coin, true
}

func (h *Handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	evt := h.Logger.Error()
	if status < http.StatusInternalServerError {
		evt = h.Logger.Debug()
	}
	evt.Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg("Request failed")
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tracker.ErrUnknownCoin):
		return http.StatusNotFound
	case errors.Is(err, internal.ErrSchema),
		errors.Is(err, internal.ErrProtocol),
		errors.Is(err, internal.ErrNetwork):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
