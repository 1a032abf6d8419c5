package handlers

import (
	"net/http"

	"autodeel/services/bunq"
	"autodeel/utils"

	"github.com/gin-gonic/gin"
)

// BunqHandler serves gateway maintenance endpoints.
type BunqHandler struct {
	Client *bunq.Client
}

func NewBunqHandler(client *bunq.Client) *BunqHandler {
	return &BunqHandler{Client: client}
}

// Test drops any cached gateway session and re-runs the full registration
// handshake from scratch. This is the operator's retry surface after a
// configuration change or a failed initialization.
func (h *BunqHandler) Test(c *gin.Context) {
	h.Client.Reset()
	if err := h.Client.EnsureReady(c.Request.Context()); err != nil {
		utils.JSONError(c, http.StatusBadGateway, "bunq handshake failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "connected"})
}
