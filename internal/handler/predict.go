package handler

import (
	"errors"
	"net/http"

	"stockcaster/internal/domain"
	"stockcaster/internal/store"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// PredictRequest is the /predict request body.
type PredictRequest struct {
	Ticker string `json:"ticker" example:"MSFT"`
	Days   int    `json:"days" example:"7"`
}

// Ping godoc
// @Summary      Liveness probe
// @Description  Returns a fixed pong body
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /ping [get]
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ping": "pong!"})
}

// Health godoc
// @Summary      Health check
// @Description  Returns the health status of the service
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Predict godoc
// @Summary      Predict future prices for a ticker
// @Description  Returns the trend forecast for the next `days` calendar days, one entry per day in chronological order
// @Tags         predictions
// @Accept       json
// @Produce      json
// @Param        request  body  PredictRequest  true  "Ticker and horizon"
// @Success      200  {object}  domain.PredictionResponse
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /predict [post]
func (h *Handler) Predict(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.predict")
	defer span.End()

	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}

	// Validate before touching the store.
	ticker := domain.NormalizeTicker(req.Ticker)
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": domain.ErrInvalidTicker.Error()})
		return
	}
	if req.Days <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"detail": domain.ErrInvalidHorizon.Error()})
		return
	}
	span.SetAttributes(attribute.String("ticker", ticker), attribute.Int("days", req.Days))

	resp, err := h.predictor.Predict(ctx, ticker, req.Days)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			// Fixed body, kept for compatibility with existing clients.
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Model not found."})
		case errors.Is(err, store.ErrCorrupt):
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "Model artifact is corrupted."})
		case errors.Is(err, domain.ErrInvalidHorizon), errors.Is(err, domain.ErrInvalidTicker):
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "prediction failed"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}
