package payment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"autodeel/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// syncCallDelay spaces out remote status calls during a bulk run to stay
// clear of the gateway's rate limits.
const syncCallDelay = 500 * time.Millisecond

// SyncPayment reconciles one payment against the gateway. The first
// transition to ACCEPTED sets paid_at; repeated runs never touch it again.
func (s *DefaultPaymentService) SyncPayment(ctx context.Context, p *models.Payment) (bool, error) {
	if p.BunqRequestID == "" || p.Finalized() {
		return false, nil
	}

	requestID, err := strconv.ParseInt(p.BunqRequestID, 10, 64)
	if err != nil {
		return false, fmt.Errorf("payment %s has a malformed request id %q: %w", p.ID, p.BunqRequestID, err)
	}

	status, err := s.Gateway.PaymentRequestStatus(ctx, requestID)
	if err != nil {
		return false, fmt.Errorf("failed to check status of payment %s: %w", p.ID, err)
	}

	update := bson.M{}
	if status != p.BunqStatus {
		update["bunq_status"] = status
	}
	if status == models.PaymentStatusAccepted && p.PaidAt == nil {
		update["paid_at"] = time.Now()
	}
	if len(update) == 0 {
		return false, nil
	}

	if err := s.Repo.UpdateSetDocument(p.ID, update); err != nil {
		return false, err
	}
	s.Logger.Info("payment status updated",
		zap.String("paymentID", p.ID),
		zap.String("status", status))
	return true, nil
}

// SyncOutstanding reconciles every payment that still awaits a final status.
// Per-payment failures are collected; the batch always runs to completion.
func (s *DefaultPaymentService) SyncOutstanding(ctx context.Context) (*SyncReport, error) {
	payments, err := s.Repo.GetOutstanding()
	if err != nil {
		return nil, err
	}

	report := &SyncReport{Errors: []string{}}
	for i := range payments {
		if i > 0 {
			select {
			case <-time.After(s.callDelay()):
			case <-ctx.Done():
				return report, ctx.Err()
			}
		}
		updated, err := s.SyncPayment(ctx, &payments[i])
		if err != nil {
			report.Errors = append(report.Errors, err.Error())
			continue
		}
		if updated {
			report.UpdatedCount++
		}
	}
	return report, nil
}

func (s *DefaultPaymentService) callDelay() time.Duration {
	if s.SyncDelay > 0 {
		return s.SyncDelay
	}
	return syncCallDelay
}
