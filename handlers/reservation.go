package handlers

import (
	"net/http"

	"autodeel/models"
	"autodeel/services/reservation"
	"autodeel/utils"

	"github.com/gin-gonic/gin"
)

// ReservationHandler serves reservation endpoints.
type ReservationHandler struct {
	Svc reservation.ReservationService
}

func NewReservationHandler(svc reservation.ReservationService) *ReservationHandler {
	return &ReservationHandler{Svc: svc}
}

// List returns the authenticated user's reservations. Admins see everyone's.
func (h *ReservationHandler) List(c *gin.Context) {
	var (
		reservations []models.Reservation
		err          error
	)
	if c.GetBool("isAdmin") {
		reservations, err = h.Svc.GetAllReservations()
	} else {
		reservations, err = h.Svc.GetUserReservations(c.GetString("userID"))
	}
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch reservations", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}

// Get returns one reservation enriched with its price scheme and cost
// breakdown.
func (h *ReservationHandler) Get(c *gin.Context) {
	id := c.Param("id")

	enriched, err := h.Svc.GetEnriched(id)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "reservation not found", err.Error())
		return
	}
	// Same response as a genuinely missing reservation.
	if enriched.Reservation.UserID != c.GetString("userID") && !c.GetBool("isAdmin") {
		utils.JSONError(c, http.StatusNotFound, "reservation not found", "")
		return
	}

	breakdown, err := h.Svc.Breakdown(id)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to render cost breakdown", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reservation": enriched,
		"breakdown":   breakdown,
	})
}

// Create adds a single reservation from one usage row.
func (h *ReservationHandler) Create(c *gin.Context) {
	var row models.ReservationImportRow
	if err := c.ShouldBindJSON(&row); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	report, err := h.Svc.Import(c.Request.Context(), []models.ReservationImportRow{row})
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to create reservation", err.Error())
		return
	}
	if len(report.Errors) > 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid reservation", report.Errors[0])
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": report.CreatedIDs[0]})
}

// Import creates reservations from admin-provided usage rows.
func (h *ReservationHandler) Import(c *gin.Context) {
	var input struct {
		Rows []models.ReservationImportRow `json:"rows" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	report, err := h.Svc.Import(c.Request.Context(), input.Rows)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "import failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, report)
}

// Outstanding returns the user's unpaid reservations grouped by month and
// business flag.
func (h *ReservationHandler) Outstanding(c *gin.Context) {
	userID := c.GetString("userID")
	groups, err := h.Svc.OutstandingGroups(userID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to group outstanding reservations", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// SetBusinessFlag toggles the business marker on the user's own reservation.
func (h *ReservationHandler) SetBusinessFlag(c *gin.Context) {
	var input struct {
		IsBusiness *bool `json:"is_business" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	userID := c.GetString("userID")
	if err := h.Svc.SetBusinessFlag(userID, c.Param("id"), *input.IsBusiness); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to update business flag", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
