package ginserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"homeseek/internal/infra/pricing"
)

type PriceHTTP interface {
	Predict(c *gin.Context)
}

type PriceHandler struct {
	Predictor *pricing.Predictor
	Logger    *slog.Logger
}

// Predict forwards a feature vector to the ML service and relays its answer.
func (h PriceHandler) Predict(c *gin.Context) {
	if _, ok := requireAuth(c); !ok {
		return
	}
	var body struct {
		Features json.RawMessage `json:"features"`
		Data     json.RawMessage `json:"data"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		failure(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	features := body.Features
	if len(features) == 0 {
		features = body.Data
	}
	if len(features) == 0 {
		failure(c, http.StatusBadRequest, "Missing 'features' in body")
		return
	}

	prediction, err := h.Predictor.Predict(requestContext(c), features)
	if err != nil {
		if errors.Is(err, pricing.ErrUpstream) && prediction != nil {
			c.Data(prediction.Status, "application/json", prediction.Body)
			return
		}
		respondError(c, h.Logger, err)
		return
	}
	c.Data(http.StatusOK, "application/json", prediction.Body)
}
