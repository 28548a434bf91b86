package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bnbprice/server/config"
	"bnbprice/server/internal/dataset"
	"bnbprice/server/internal/features"
	"bnbprice/server/internal/prediction"
)

const (
	msgNotLoaded      = "The data has not been loaded. Please refresh the data by calling the '/reload' endpoint first."
	msgMissingParams  = "Missing or invalid required parameters"
	msgInvalidNumeric = "Invalid numeric values for bedrooms, bathrooms, or accommodates"
)

// ListingCounter reports how many listings are stored.
type ListingCounter interface {
	CountListings() (int64, error)
}

type Handler struct {
	service *prediction.Service
	store   ListingCounter
	logger  *logrus.Logger
}

// PredictRequest mirrors the predict endpoint's JSON body. The numeric
// fields are loosely typed so numeric-looking strings are coerced the same
// way absent and malformed values are told apart.
type PredictRequest struct {
	Bedrooms      interface{} `json:"bedrooms"`
	Bathrooms     interface{} `json:"bathrooms"`
	Accommodates  interface{} `json:"accommodates"`
	Neighbourhood *string     `json:"neighbourhood_cleansed"`
}

type PredictResponse struct {
	PredictedPrice float64 `json:"predicted_price"`
}

func NewHandler(service *prediction.Service, store ListingCounter, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		service: service,
		store:   store,
		logger:  logger,
	}
}

// Reload refreshes the stored listings and retrains the model, returning
// summary statistics of the loaded batch.
func (h *Handler) Reload(c *gin.Context) {
	summary, err := h.service.Reload(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Reload failed")
		if errors.Is(err, dataset.ErrFetch) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch the listings dataset"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reload data and retrain the model"})
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Predict prices a single listing described by the request body.
func (h *Handler) Predict(c *gin.Context) {
	if !h.service.Loaded() {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNotLoaded})
		return
	}

	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingParams})
		return
	}

	if req.Neighbourhood == nil || *req.Neighbourhood == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgMissingParams})
		return
	}

	if !config.IsValidNeighbourhood(*req.Neighbourhood) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid neighborhood. Please choose one of the following: %s", config.NeighbourhoodList()),
		})
		return
	}

	bedrooms, ok1 := toNumber(req.Bedrooms)
	bathrooms, ok2 := toNumber(req.Bathrooms)
	accommodates, ok3 := toNumber(req.Accommodates)
	if !ok1 || !ok2 || !ok3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidNumeric})
		return
	}

	price, err := h.service.Predict(features.Record{
		Bedrooms:      bedrooms,
		Bathrooms:     bathrooms,
		Accommodates:  accommodates,
		Neighbourhood: *req.Neighbourhood,
	})
	if err != nil {
		switch {
		case errors.Is(err, prediction.ErrModelNotLoaded):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNotLoaded})
		case errors.Is(err, features.ErrUnknownCategory):
			// Allowlist and fitted vocabulary have drifted apart
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid neighborhood. Please choose one of the following: %s", config.NeighbourhoodList()),
			})
		case errors.Is(err, features.ErrInvalidNumeric), errors.Is(err, features.ErrMissingField):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidNumeric})
		default:
			h.logger.WithError(err).Error("Prediction failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Prediction failed"})
		}
		return
	}

	c.JSON(http.StatusOK, PredictResponse{PredictedPrice: price})
}

// Health reports process liveness and whether a model is loaded.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"model_loaded": h.service.Loaded(),
	})
}

// ListingCount returns the number of listings currently stored.
func (h *Handler) ListingCount(c *gin.Context) {
	count, err := h.store.CountListings()
	if err != nil {
		h.logger.WithError(err).Error("Failed to count listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count listings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"total_listings": count})
}

// toNumber coerces a decoded JSON value to a finite float64. Numeric
// strings are accepted; absent and non-numeric values are not.
func toNumber(v interface{}) (float64, bool) {
	var f float64
	var err error

	switch value := v.(type) {
	case float64:
		f = value
	case json.Number:
		f, err = value.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(value), 64)
	default:
		return 0, false
	}

	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
