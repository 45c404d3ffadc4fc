package handler

import (
	"context"

	"stockcaster/internal/domain"
	"stockcaster/internal/service"
	"stockcaster/internal/store"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// PredictionService generates shaped forecasts for trained tickers.
type PredictionService interface {
	Predict(ctx context.Context, ticker string, days int) (*domain.PredictionResponse, error)
}

// TrainingService runs one training cycle for a ticker.
type TrainingService interface {
	Train(ctx context.Context, ticker string) (service.TrainResult, error)
}

type Handler struct {
	tracer    trace.Tracer
	predictor PredictionService
	trainer   TrainingService
	artifacts store.ArtifactStore
	adminKey  string
}

func New(tracer trace.Tracer, predictor PredictionService, trainer TrainingService, artifacts store.ArtifactStore, adminKey string) *Handler {
	return &Handler{
		tracer:    tracer,
		predictor: predictor,
		trainer:   trainer,
		artifacts: artifacts,
		adminKey:  adminKey,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/ping", h.Ping)
	r.GET("/health", h.Health)
	r.POST("/predict", h.Predict)
	r.GET("/api/models", h.ListModels)
	r.POST("/api/train", APIKeyAuth(h.adminKey), h.TriggerTraining)
}
