package handlers

import (
	"net/http"

	"autodeel/services/payment"
	"autodeel/utils"

	"github.com/gin-gonic/gin"
)

// PaymentHandler serves payment endpoints. Read endpoints trigger a
// fire-and-forget status sync through EnqueueSync so pages never block on
// the gateway.
type PaymentHandler struct {
	Svc         payment.PaymentService
	EnqueueSync func()
}

func NewPaymentHandler(svc payment.PaymentService, enqueueSync func()) *PaymentHandler {
	return &PaymentHandler{Svc: svc, EnqueueSync: enqueueSync}
}

// PayGroup creates a payment for one outstanding month/business group and
// returns the shareable payment URL.
func (h *PaymentHandler) PayGroup(c *gin.Context) {
	var input struct {
		Month      string `json:"month" binding:"required"`
		IsBusiness bool   `json:"is_business"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	userID := c.GetString("userID")
	p, err := h.Svc.PayGroup(c.Request.Context(), userID, input.Month, input.IsBusiness)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "failed to create payment", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"payment":    p,
		"paymentURL": p.BunqPaymentURL,
	})
}

// List returns the authenticated user's payments and kicks off a background
// status sync.
func (h *PaymentHandler) List(c *gin.Context) {
	userID := c.GetString("userID")
	payments, err := h.Svc.GetUserPayments(userID)
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch payments", err.Error())
		return
	}

	if h.EnqueueSync != nil {
		h.EnqueueSync()
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// Get returns one payment and kicks off a background status sync.
func (h *PaymentHandler) Get(c *gin.Context) {
	p, err := h.Svc.GetPayment(c.Param("id"))
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "payment not found", err.Error())
		return
	}
	// Foreign payments look exactly like missing ones, so the endpoint
	// leaks no existence information.
	if p.UserID != c.GetString("userID") && !c.GetBool("isAdmin") {
		utils.JSONError(c, http.StatusNotFound, "payment not found", "")
		return
	}

	if h.EnqueueSync != nil {
		h.EnqueueSync()
	}
	c.JSON(http.StatusOK, gin.H{"payment": p})
}

// Sync runs a bulk status reconciliation and reports the outcome.
func (h *PaymentHandler) Sync(c *gin.Context) {
	report, err := h.Svc.SyncOutstanding(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "status sync failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, report)
}

// MarkPaid is the explicit admin action setting paid_at on a payment.
func (h *PaymentHandler) MarkPaid(c *gin.Context) {
	if err := h.Svc.MarkPaid(c.Param("id")); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "failed to mark payment paid", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "paid"})
}
