package handler

import (
	"errors"
	"net/http"

	"stockcaster/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// TrainRequest is the /api/train request body.
type TrainRequest struct {
	Ticker string `json:"ticker" example:"MSFT"`
}

// TriggerTraining godoc
// @Summary      Train a model for a ticker
// @Description  Fetches price history, fits a model, and replaces the stored artifact. Synchronous; intended for operators.
// @Tags         models
// @Accept       json
// @Produce      json
// @Param        request  body  TrainRequest  true  "Ticker to train"
// @Success      200  {object}  service.TrainResult
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/train [post]
func (h *Handler) TriggerTraining(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.trigger-training")
	defer span.End()

	var req TrainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request body"})
		return
	}
	ticker := domain.NormalizeTicker(req.Ticker)
	if ticker == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": domain.ErrInvalidTicker.Error()})
		return
	}
	span.SetAttributes(attribute.String("ticker", ticker))

	res, err := h.trainer.Train(ctx, ticker)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyHistory) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "no price history for " + ticker})
			return
		}
		// Feed failures are upstream problems, not ours.
		c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}
