package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/scoutlab/vexscout/pkg/utils"
)

// HTTPClassifier calls an external model server for the team success
// probability. The server hosts the pretrained model; this process only
// ships features over and reads the probability back. Any failure is
// returned as an error and absorbed by the engine as a neutral 0.5.
type HTTPClassifier struct {
	url        string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewHTTPClassifier(url string, logger *logrus.Logger) *HTTPClassifier {
	return &HTTPClassifier{
		url: url,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: logger,
	}
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Probability float64 `json:"probability"`
}

func (c *HTTPClassifier) Predict(features []float64) (float64, error) {
	body, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", utils.ErrClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("classifier returned status %d", resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("classifier response malformed: %w", err)
	}
	return out.Probability, nil
}

// LogisticClassifier is the offline fallback: a logistic model with fixed
// coefficients fit against the same feature vector the model server expects
// (rank, auto, SP, WP, mean, stddev, ceiling, trend, win rate, elim win
// rate). It is deliberately simple; when the model server is reachable it is
// never used.
type LogisticClassifier struct {
	weights   []float64
	intercept float64
}

func NewLogisticClassifier() *LogisticClassifier {
	return &LogisticClassifier{
		weights: []float64{
			-0.09,  // rank: lower is better
			0.14,   // autonomous average
			0.015,  // schedule points
			0.55,   // win points
			0.035,  // mean score
			-0.045, // spread: volatility hurts
			0.02,   // ceiling
			0.05,   // trend
			1.6,    // qualification win rate
			1.9,    // elimination win rate
		},
		intercept: -3.2,
	}
}

func (c *LogisticClassifier) Predict(features []float64) (float64, error) {
	if len(features) != len(c.weights) {
		return 0, fmt.Errorf("expected %d features, got %d", len(c.weights), len(features))
	}
	z := c.intercept
	for i, f := range features {
		z += c.weights[i] * f
	}
	return 1 / (1 + math.Exp(-z)), nil
}
