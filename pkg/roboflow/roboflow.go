package roboflow

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ItfRoboflow is the client for the hosted Roboflow inference API. A client
// built without credentials reports Available() == false and never touches
// the network, so callers can distinguish "service not configured" from
// "nothing detected".
type ItfRoboflow interface {
	Available() bool
	Detect(ctx context.Context, imagePath string, confidence float64) (*DetectResponse, error)
}

type Prediction struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	Class      string  `json:"class"`
}

type DetectResponse struct {
	Predictions []Prediction `json:"predictions"`
}

type roboflowClient struct {
	baseURL string
	apiKey  string
	modelID string
	version string
	client  *http.Client
	log     *logrus.Logger
}

func New(log *logrus.Logger) ItfRoboflow {
	baseURL := os.Getenv("ROBOFLOW_BASE_URL")
	if baseURL == "" {
		baseURL = "https://detect.roboflow.com"
	}

	version := os.Getenv("ROBOFLOW_VERSION")
	if version == "" {
		version = "2"
	}

	c := &roboflowClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  os.Getenv("ROBOFLOW_API_KEY"),
		modelID: os.Getenv("ROBOFLOW_MODEL"),
		version: version,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}

	if !c.Available() {
		log.Warn("Roboflow credentials not configured, detector disabled")
	}

	return c
}

func (c *roboflowClient) Available() bool {
	return c.apiKey != "" && c.modelID != ""
}

func (c *roboflowClient) Detect(ctx context.Context, imagePath string, confidence float64) (*DetectResponse, error) {
	if !c.Available() {
		return nil, errors.New("roboflow client is not configured")
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	// The hosted API takes the threshold as a percentage.
	params.Set("confidence", fmt.Sprintf("%.0f", confidence*100))

	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.modelID, c.version, params.Encode())

	body := base64.StdEncoding.EncodeToString(imageData)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detection request failed: %w", err)
	}
	defer func(rc io.ReadCloser) {
		if err := rc.Close(); err != nil {
			c.log.Errorf("Failed to close detection response body: %v", err)
		}
	}(resp.Body)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		c.log.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(respBody),
		}).Error("Roboflow returned non-OK status")
		return nil, fmt.Errorf("detection service returned status %d", resp.StatusCode)
	}

	var result DetectResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode detection response: %w", err)
	}

	return &result, nil
}
