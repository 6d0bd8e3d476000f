package controllers

import (
	"net/http"

	"nomify/services"

	"github.com/gin-gonic/gin"
)

// VisionController serves the vision-analysis contract consumed by the
// photo resolver: POST { encodedImage } -> { msg } where msg is itself
// a JSON-encoded string containing {foodItem} or {error}.
type VisionController struct {
	Vision *services.VisionService
}

func NewVisionController(vision *services.VisionService) *VisionController {
	return &VisionController{Vision: vision}
}

// POST /vision/analyze  { "encodedImage": "..." }
func (vc *VisionController) AnalyzeFoodImage(c *gin.Context) {
	var req struct {
		EncodedImage string `json:"encodedImage" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	msg, err := vc.Vision.AnalyzeImage(req.EncodedImage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": msg})
}
