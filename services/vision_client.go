package services

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"nomify/models"
)

// VisionClient resolves a photo into a canonical food identity by
// calling the vision-analysis endpoint (the /vision/analyze function,
// or any deployment implementing the same contract).
type VisionClient struct {
	endpoint string
	client   *http.Client
}

// NewVisionClient reads the endpoint from VISION_API_URL.
func NewVisionClient() *VisionClient {
	return &VisionClient{
		endpoint: os.Getenv("VISION_API_URL"),
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type visionRequest struct {
	EncodedImage string `json:"encodedImage"`
}

type visionResponse struct {
	Msg string `json:"msg"`
}

// The msg field is itself a JSON-encoded string holding one of these.
type visionResult struct {
	FoodItem string `json:"foodItem,omitempty"`
	Error    string `json:"error,omitempty"`
}

// ResolvePhotoIdentity base64-encodes the image bytes and makes exactly
// one call to the vision endpoint. Any transport error, undecodable
// payload, or explicit "no food identified" answer becomes
// ErrNoFoodRecognized; there is no retry.
func (v *VisionClient) ResolvePhotoIdentity(image []byte) (models.FoodIdentityRequest, error) {
	encoded := base64.StdEncoding.EncodeToString(image)

	b, err := json.Marshal(visionRequest{EncodedImage: encoded})
	if err != nil {
		return models.FoodIdentityRequest{}, fmt.Errorf("failed to marshal vision payload: %w", err)
	}

	req, err := http.NewRequest("POST", v.endpoint, bytes.NewReader(b))
	if err != nil {
		return models.FoodIdentityRequest{}, fmt.Errorf("failed to create vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return models.FoodIdentityRequest{}, fmt.Errorf("%w: %v", ErrNoFoodRecognized, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.FoodIdentityRequest{}, fmt.Errorf("%w: reading vision response: %v", ErrNoFoodRecognized, err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.FoodIdentityRequest{}, fmt.Errorf("%w: vision API error %d", ErrNoFoodRecognized, resp.StatusCode)
	}

	var vr visionResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return models.FoodIdentityRequest{}, fmt.Errorf("%w: undecodable vision response", ErrNoFoodRecognized)
	}

	var result visionResult
	if err := json.Unmarshal([]byte(vr.Msg), &result); err != nil {
		return models.FoodIdentityRequest{}, fmt.Errorf("%w: undecodable vision result", ErrNoFoodRecognized)
	}
	if result.Error != "" || result.FoodItem == "" {
		return models.FoodIdentityRequest{}, ErrNoFoodRecognized
	}

	return models.FoodIdentityRequest{
		FoodItem: result.FoodItem,
		Modality: models.ModalityPhoto,
	}, nil
}
