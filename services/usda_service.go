package services

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"nomify/models"
)

// USDAService looks up scanned barcodes against the USDA FoodData
// Central search API.
type USDAService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewUSDAService initializes the USDAService with credentials and HTTP client
func NewUSDAService() *USDAService {
	return &USDAService{
		apiKey:  os.Getenv("USDA_API_KEY"),
		baseURL: "https://api.nal.usda.gov/fdc/v1/foods/search",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type foodSearchResponse struct {
	TotalHits int `json:"totalHits"`
	Foods     []struct {
		DataType    string `json:"dataType"`
		Description string `json:"description"`
		BrandName   string `json:"brandName"`
	} `json:"foods"`
}

// stripSymbologyPrefix drops the single leading framing character the
// scanning hardware prepends to every code. Assumes the scanner
// symbology always emits exactly one such character.
func stripSymbologyPrefix(code string) string {
	if len(code) <= 1 {
		return ""
	}
	return code[1:]
}

// ResolveBarcodeIdentity strips the symbology prefix and makes exactly
// one lookup against FoodData Central. The canonical identity is
// composed from the top-ranked match as "{brandName} {description}",
// with the brand omitted cleanly when absent.
func (s *USDAService) ResolveBarcodeIdentity(code string) (models.FoodIdentityRequest, error) {
	stripped := stripSymbologyPrefix(code)
	if stripped == "" {
		return models.FoodIdentityRequest{}, ErrNoFoodRecognized
	}

	u := fmt.Sprintf("%s?query=%s&pageSize=1&api_key=%s",
		s.baseURL, url.QueryEscape(stripped), s.apiKey)

	resp, err := s.client.Get(u)
	if err != nil {
		return models.FoodIdentityRequest{}, fmt.Errorf("%w: %v", ErrNoFoodRecognized, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.FoodIdentityRequest{}, fmt.Errorf("%w: reading food search response: %v", ErrNoFoodRecognized, err)
	}
	if resp.StatusCode != http.StatusOK {
		return models.FoodIdentityRequest{}, fmt.Errorf("%w: food search API error %d", ErrNoFoodRecognized, resp.StatusCode)
	}

	var fr foodSearchResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return models.FoodIdentityRequest{}, fmt.Errorf("%w: undecodable food search response", ErrNoFoodRecognized)
	}
	if fr.TotalHits == 0 || len(fr.Foods) == 0 {
		return models.FoodIdentityRequest{}, ErrNoFoodRecognized
	}

	top := fr.Foods[0]
	identity := top.Description
	if top.BrandName != "" {
		identity = top.BrandName + " " + top.Description
	}

	return models.FoodIdentityRequest{
		FoodItem: identity,
		Modality: models.ModalityBarcode,
	}, nil
}
