package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// VisionService is the serving side of the vision-analysis contract:
// it takes a base64 image and answers with a msg string whose inner
// JSON is either {foodItem} or {error}. Detection runs on Rekognition.
type VisionService struct {
	client *rekognition.Client
}

func NewVisionService() (*VisionService, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(os.Getenv("AWS_REGION")))
	if err != nil {
		return nil, err
	}
	return &VisionService{client: rekognition.NewFromConfig(cfg)}, nil
}

// Labels that describe the picture rather than the food in it.
var nonFoodLabels = map[string]struct{}{
	"Food": {}, "Meal": {}, "Dish": {}, "Plate": {}, "Produce": {}, "Plant": {},
}

// AnalyzeImage detects labels on the image and composes the msg inner
// JSON. Accepts both bare base64 and data-URI payloads.
func (v *VisionService) AnalyzeImage(encodedImage string) (string, error) {
	payload := encodedImage
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return "", fmt.Errorf("invalid data URI")
		}
		payload = payload[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("failed to decode image: %w", err)
	}

	out, err := v.client.DetectLabels(context.TODO(), &rekognition.DetectLabelsInput{
		Image:         &types.Image{Bytes: data},
		MaxLabels:     aws.Int32(10),
		MinConfidence: aws.Float32(75),
	})
	if err != nil {
		return "", fmt.Errorf("failed to detect labels: %w", err)
	}

	foodItem := pickFoodLabel(out.Labels)

	var msg []byte
	if foodItem == "" {
		msg, _ = json.Marshal(visionResult{Error: "No food identified"})
	} else {
		msg, _ = json.Marshal(visionResult{FoodItem: foodItem})
	}
	return string(msg), nil
}

// pickFoodLabel returns the most confident label that names an actual
// food item, skipping generic scene labels.
func pickFoodLabel(labels []types.Label) string {
	sawFood := false
	for _, l := range labels {
		if l.Name == nil {
			continue
		}
		name := *l.Name
		if _, generic := nonFoodLabels[name]; generic {
			sawFood = true
			continue
		}
		if sawFood || labelHasFoodParent(l) {
			return name
		}
	}
	return ""
}

func labelHasFoodParent(l types.Label) bool {
	for _, p := range l.Parents {
		if p.Name != nil && (*p.Name == "Food" || *p.Name == "Produce") {
			return true
		}
	}
	return false
}
