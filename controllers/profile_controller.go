package controllers

import (
	"net/http"

	"nomify/models"
	"nomify/services"

	"github.com/gin-gonic/gin"
)

// GET /profile/allergens
func GetAllergenProfile(c *gin.Context) {
	userID := c.GetUint("userID")
	profile, err := services.GetAllergenProfile(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"allergen_profile": profile})
}

// PUT /profile/allergens  { "allergen_profile": { "Dairy": "severe", ... } }
func UpdateAllergenProfile(c *gin.Context) {
	userID := c.GetUint("userID")

	var input struct {
		AllergenProfile models.AllergenProfile `json:"allergen_profile" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if err := services.SaveAllergenProfile(userID, input.AllergenProfile); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "allergen profile updated"})
}
