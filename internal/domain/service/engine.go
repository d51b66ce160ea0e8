package service

import (
	"context"

	"CosmicClock/internal/domain/models"
	"CosmicClock/internal/services/patterns"
)

// PatternDetector classifies a sample against the catalog.
type PatternDetector interface {
	Detect(sample models.TimeSample) []models.DetectedPattern
}

// PatternPredictor forecasts the next occurrences after a sample.
type PatternPredictor interface {
	Predict(from models.TimeSample, opts patterns.PredictOptions) []models.PredictedOccurrence
}

// Forecaster is a predictor behind a cache.
type Forecaster interface {
	Forecast(ctx context.Context, from models.TimeSample, opts patterns.PredictOptions) ([]models.PredictedOccurrence, error)
}

var (
	_ PatternDetector  = (*patterns.Detector)(nil)
	_ PatternPredictor = (*patterns.Predictor)(nil)
)
