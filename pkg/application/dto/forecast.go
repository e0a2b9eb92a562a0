package dto

import (
	"time"

	"github.com/vsinha/vantax/pkg/domain/entities"
)

// MonthlyUnits is the observed unit volume of one calendar month
type MonthlyUnits struct {
	Month time.Time         `json:"month"`
	Units entities.Quantity `json:"units"`
}

// ForecastPoint is the projected demand of one future month
type ForecastPoint struct {
	Month    time.Time `json:"month"`
	Expected float64   `json:"expected"`
	Lower    float64   `json:"lower"`
	Upper    float64   `json:"upper"`
}

// Forecast is a product demand projection
type Forecast struct {
	ProductID entities.ProductID `json:"product_id"`
	Method    string             `json:"method"`
	Slope     float64            `json:"slope"`
	Intercept float64            `json:"intercept"`
	StdDev    float64            `json:"residual_stddev"`
	History   []MonthlyUnits     `json:"history"`
	Points    []ForecastPoint    `json:"points"`
}
