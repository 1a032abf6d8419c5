package bunq

import (
	"strings"

	"autodeel/models"

	"go.uber.org/zap"
)

// normalizeStatus maps the remote payment-request status onto the local
// three-state model. Unrecognized values pass through as-is with a warning
// so new remote states surface in the data instead of disappearing.
func normalizeStatus(remote string, logger *zap.Logger) string {
	switch strings.ToUpper(remote) {
	case "PENDING":
		return models.PaymentStatusPending
	case "ACCEPTED", "SETTLED":
		return models.PaymentStatusAccepted
	case "REJECTED", "CANCELLED":
		return models.PaymentStatusRejected
	default:
		logger.Warn("unrecognized payment request status", zap.String("status", remote))
		return remote
	}
}
