package controllers

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strings"

	"nomify/models"
	"nomify/services"
	"nomify/utils"

	"github.com/gin-gonic/gin"
)

type AnalysisController struct {
	Pipelines *services.PipelineController
}

func NewAnalysisController(pipelines *services.PipelineController) *AnalysisController {
	return &AnalysisController{Pipelines: pipelines}
}

// POST /analysis/text  { "query": "Kit Kat" }
func (ac *AnalysisController) AnalyzeText(c *gin.Context) {
	userID := c.GetUint("userID")

	var req struct {
		Query string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	profile, err := services.GetAllergenProfile(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	state, err := ac.Pipelines.AnalyzeText(userID, req.Query, profile)
	if errors.Is(err, services.ErrEmptyInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "food name cannot be empty"})
		return
	}
	if errors.Is(err, services.ErrAnalysisInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": "an analysis is already in progress", "state": state})
		return
	}

	ac.maybeAlert(userID, state, profile)
	c.JSON(http.StatusOK, state)
}

// POST /analysis/photo  { "image_base64": "..." }
func (ac *AnalysisController) AnalyzePhoto(c *gin.Context) {
	userID := c.GetUint("userID")

	var req struct {
		ImageBase64 string `json:"image_base64" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	payload := req.ImageBase64
	if idx := strings.Index(payload, ","); strings.HasPrefix(payload, "data:") && idx >= 0 {
		payload = payload[idx+1:]
	}
	image, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image encoding"})
		return
	}

	profile, err := services.GetAllergenProfile(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Archive a copy for the user's history; the analysis never waits on it.
	go func() {
		if _, err := utils.UploadFoodPhoto(image, userID); err != nil {
			log.Printf("food photo archive failed: %v", err)
		}
	}()

	state, err := ac.Pipelines.AnalyzePhoto(userID, image, profile)
	if errors.Is(err, services.ErrAnalysisInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": "an analysis is already in progress", "state": state})
		return
	}

	ac.maybeAlert(userID, state, profile)
	c.JSON(http.StatusOK, state)
}

// POST /analysis/barcode  { "code": "X012345678905" }
func (ac *AnalysisController) AnalyzeBarcode(c *gin.Context) {
	userID := c.GetUint("userID")

	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	profile, err := services.GetAllergenProfile(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	state, err := ac.Pipelines.AnalyzeBarcode(userID, req.Code, profile)
	if errors.Is(err, services.ErrAnalysisInFlight) {
		c.JSON(http.StatusConflict, gin.H{"error": "an analysis is already in progress", "state": state})
		return
	}

	ac.maybeAlert(userID, state, profile)
	c.JSON(http.StatusOK, state)
}

// GET /analysis/state
func (ac *AnalysisController) State(c *gin.Context) {
	userID := c.GetUint("userID")
	c.JSON(http.StatusOK, ac.Pipelines.State(userID))
}

func (ac *AnalysisController) maybeAlert(userID uint, state models.PipelineState, profile models.AllergenProfile) {
	if services.ShouldAlert(state, profile) {
		services.EmitHighRiskAlert(userID, ac.Pipelines.LastIdentity(userID).FoodItem, state.Verdict.OverallRisk)
	}
}
