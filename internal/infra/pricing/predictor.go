package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

var ErrUpstream = errors.New("pricing: upstream rejected the request")

// Predictor proxies price estimation to an external ML service. The features
// payload is passed through opaquely so the model schema can evolve without
// touching this service.
type Predictor struct {
	Client   *http.Client
	Endpoint string
	Logger   *slog.Logger
}

type predictRequest struct {
	Features json.RawMessage `json:"features"`
}

// Prediction carries the upstream response body verbatim plus the status it
// arrived with.
type Prediction struct {
	Status int
	Body   json.RawMessage
}

func (p *Predictor) Predict(ctx context.Context, features json.RawMessage) (*Prediction, error) {
	if p == nil || p.Client == nil {
		return nil, errors.New("pricing: http client not configured")
	}
	endpoint := strings.TrimRight(p.Endpoint, "/")
	if endpoint == "" {
		return nil, errors.New("pricing: ml endpoint not configured")
	}

	body, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return nil, err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(request)
	if err != nil {
		if p.Logger != nil {
			p.Logger.Error("ml predict request failed", "error", err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if p.Logger != nil {
			p.Logger.Warn("ml predict returned error", "status", resp.StatusCode)
		}
		return &Prediction{Status: resp.StatusCode, Body: payload},
			fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}
	return &Prediction{Status: resp.StatusCode, Body: payload}, nil
}
