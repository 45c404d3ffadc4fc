package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// ListModels godoc
// @Summary      List trained tickers
// @Description  Returns every ticker symbol that currently has a servable model artifact
// @Tags         models
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/models [get]
func (h *Handler) ListModels(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-models")
	defer span.End()

	tickers, err := h.artifacts.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if tickers == nil {
		tickers = []string{}
	}
	span.SetAttributes(attribute.Int("models", len(tickers)))

	c.JSON(http.StatusOK, gin.H{"models": tickers})
}
