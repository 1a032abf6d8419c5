package handlers

import (
	"net/http"

	priceSchemeRepo "autodeel/database/repository/pricescheme"
	"autodeel/models"
	"autodeel/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PriceSchemeHandler serves rate card endpoints.
type PriceSchemeHandler struct {
	Repo priceSchemeRepo.PriceSchemeRepository
}

func NewPriceSchemeHandler(repo priceSchemeRepo.PriceSchemeRepository) *PriceSchemeHandler {
	return &PriceSchemeHandler{Repo: repo}
}

// List returns all price schemes.
func (h *PriceSchemeHandler) List(c *gin.Context) {
	schemes, err := h.Repo.GetAll()
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch price schemes", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"priceSchemes": schemes})
}

// Create adds a new price scheme. Rates must not be negative.
func (h *PriceSchemeHandler) Create(c *gin.Context) {
	var input struct {
		Name                            string  `json:"name" binding:"required"`
		CostsPerKilometer               float64 `json:"costs_per_kilometer" binding:"gte=0"`
		CostsPerEffectiveHour           float64 `json:"costs_per_effective_hour" binding:"gte=0"`
		CostsPerUnusedReservedHourStart float64 `json:"costs_per_unused_reserved_hour_start_trip" binding:"gte=0"`
		CostsPerUnusedReservedHourEnd   float64 `json:"costs_per_unused_reserved_hour_end_trip" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	scheme := &models.PriceScheme{
		ID:                              uuid.New().String(),
		Name:                            input.Name,
		CostsPerKilometer:               input.CostsPerKilometer,
		CostsPerEffectiveHour:           input.CostsPerEffectiveHour,
		CostsPerUnusedReservedHourStart: input.CostsPerUnusedReservedHourStart,
		CostsPerUnusedReservedHourEnd:   input.CostsPerUnusedReservedHourEnd,
	}
	if err := h.Repo.Create(scheme); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to create price scheme", err.Error())
		return
	}
	c.JSON(http.StatusCreated, gin.H{"priceScheme": scheme})
}
