package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"nomify/models"
)

// GeminiService sends a (food identity, allergen profile) pair to the
// generative risk-analysis API and decodes the structured verdict.
type GeminiService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewGeminiService initializes the GeminiService with credentials and HTTP client
func NewGeminiService() *GeminiService {
	return &GeminiService{
		apiKey:  os.Getenv("GEMINI_API_KEY"),
		baseURL: "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-pro-latest:generateContent",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateContentRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction geminiContent   `json:"systemInstruction"`
	SafetySettings    []safetySetting `json:"safetySettings"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// foodAnalysis is the inner JSON the model is instructed to return.
// OverallRiskRating is a pointer so a missing field can be told apart
// from a genuine zero.
type foodAnalysis struct {
	Recommendation    string               `json:"recommendation"`
	RiskRating        map[string]int       `json:"riskRating"`
	OverallRiskRating *int                 `json:"overallRiskRating"`
	Alternatives      []models.Alternative `json:"alternatives"`
	Error             string               `json:"error"`
}

// systemInstruction fixes the response schema, the cross-contamination
// weighting rule, and the JSON-only contract.
const systemInstruction = "I will give you a list of my food allergies. Your job is to give me a recommendation as to whether I should consume a given food. " +
	"Make sure to account for the chance of cross contamination. If I can't consume it, give me a list of alternative brands or recipes I can consume instead with a url to that brand or recipe. " +
	"Do not include alternatives that contain ingredients that are unsafe for any of my allergies. " +
	"Each url to a brand you give me should be in the format of \"https://www.google.com/search?q={name_of_brand_goes_here}\", and each url to a recipe should be in the format of \"https://www.google.com/search?q={name_of_recipe_goes_here}\". " +
	"If you can't find alternatives within 5 seconds, leave the alternatives field as an empty array. " +
	"Additionally, for each food item give me a risk rating from 0% to 100%. " +
	"You must respond in JSON format with the following schema: \n" +
	" recommendation: a short recommendation on whether I should consume the food item. \n" +
	" riskRating: Dictionary mapping of key-value pairs where the key represents the allergen (string) and the value is the risk rating of that allergen in the given food item as an integer data type. \n" +
	" overallRiskRating: an overall risk rating of the food item as an integer data type. It must equal the highest riskRating value. \n" +
	" alternatives: List of alternative recipes and brands with their urls if available in the format of: \n name: name of brand or recipe, \n url: url of brand or recipe. \n \n" +
	" If you cannot identify the food item I've given, respond in JSON with: \n error: Couldn't identify food item. \n" +
	" In the JSON response, do not include the ```json in the beginning and the ``` at the end. " +
	"If I'm not allergic to anything, set the riskRating field in your response to an empty dictionary."

// BuildAllergyStatement renders the user's profile as the natural-
// language statement sent to the model: one "<severity> to <allergen>"
// clause per active allergen joined with " and ", in the fixed allergen
// order, or the literal "I'm not allergic to anything".
func BuildAllergyStatement(profile models.AllergenProfile) string {
	var clauses []string
	for _, allergen := range models.Allergens {
		sev := profile[allergen]
		if sev == models.SeverityNone || sev == "" {
			continue
		}
		clauses = append(clauses, sev.Phrase()+" to "+allergen)
	}
	if len(clauses) == 0 {
		return "I'm not allergic to anything"
	}
	return "I'm " + strings.Join(clauses, " and ")
}

// GetAnalysis makes exactly one generateContent call and re-decodes the
// raw text answer as a verdict. No retry.
func (g *GeminiService) GetAnalysis(foodItem string, profile models.AllergenProfile) (*models.RiskVerdict, error) {
	prompt := fmt.Sprintf("%s. Can I consume %s?", BuildAllergyStatement(profile), foodItem)

	reqBody := generateContentRequest{
		Contents:          []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		SystemInstruction: geminiContent{Parts: []geminiPart{{Text: systemInstruction}}},
		SafetySettings: []safetySetting{
			{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_ONLY_HIGH"},
		},
	}

	b, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis payload: %w", err)
	}

	req, err := http.NewRequest("POST", g.baseURL+"?key="+g.apiKey, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading analysis response: %v", ErrServiceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: analysis API error %d", ErrServiceUnavailable, resp.StatusCode)
	}

	var gr generateContentResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		log.Printf("malformed analysis envelope: %v", err)
		return nil, fmt.Errorf("%w: undecodable envelope", ErrMalformedResponse)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		log.Printf("malformed analysis envelope: no candidates")
		return nil, fmt.Errorf("%w: empty candidates", ErrMalformedResponse)
	}

	return decodeVerdict(gr.Candidates[0].Content.Parts[0].Text)
}

// decodeVerdict re-decodes the model's raw text answer. The overall
// risk is recomputed as the maximum per-allergen rating when any are
// present; the service-reported number is only trusted verbatim when
// the rating map is empty.
func decodeVerdict(raw string) (*models.RiskVerdict, error) {
	var fa foodAnalysis
	if err := json.Unmarshal([]byte(raw), &fa); err != nil {
		log.Printf("malformed analysis verdict: %v", err)
		return nil, fmt.Errorf("%w: undecodable verdict", ErrMalformedResponse)
	}

	if fa.Error != "" {
		return nil, ErrUnidentifiableFood
	}
	if fa.Recommendation == "" || fa.OverallRiskRating == nil {
		log.Printf("malformed analysis verdict: missing required fields")
		return nil, fmt.Errorf("%w: incomplete verdict", ErrMalformedResponse)
	}

	overall := *fa.OverallRiskRating
	if len(fa.RiskRating) > 0 {
		max := 0
		for _, r := range fa.RiskRating {
			if r > max {
				max = r
			}
		}
		overall = max
	}

	verdict := &models.RiskVerdict{
		Recommendation: fa.Recommendation,
		RiskByAllergen: fa.RiskRating,
		OverallRisk:    overall,
		Alternatives:   fa.Alternatives,
	}
	if verdict.RiskByAllergen == nil {
		verdict.RiskByAllergen = map[string]int{}
	}
	if verdict.Alternatives == nil {
		verdict.Alternatives = []models.Alternative{}
	}
	return verdict, nil
}
