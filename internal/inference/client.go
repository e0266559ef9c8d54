package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/DiogoBrazil/medimage-api/internal/config"
	"github.com/DiogoBrazil/medimage-api/internal/domain"
)

// Box is a detection rectangle returned by the breast model.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Result is the outcome of one model invocation.
type Result struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
	Boxes      []Box   `json:"boxes,omitempty"`
}

// Client calls the external model-inference service over HTTP.
type Client interface {
	Predict(ctx context.Context, model domain.ModelKind, imageBase64 string) (*Result, error)
}

type httpClient struct {
	baseURL string
	client  *http.Client
}

// NewClient builds an HTTP-backed inference client.
func NewClient(cfg config.InferenceConfig) Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &httpClient{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Image string `json:"image"`
}

func (c *httpClient) Predict(ctx context.Context, model domain.ModelKind, imageBase64 string) (*Result, error) {
	body, err := json.Marshal(predictRequest{Image: imageBase64})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/predict/%s", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("inference service returned %d: %s", resp.StatusCode, string(payload))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}
	return &result, nil
}
