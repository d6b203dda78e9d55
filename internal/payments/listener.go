package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"seatkeep/internal/reservations"
	"seatkeep/internal/shared/apperrors"
	"seatkeep/pkg/logger"
)

// ErrMalformedMessage marks messages no retry can fix
var ErrMalformedMessage = errors.New("malformed payment result")

// HoldSettler settles holds once the payment provider has answered
type HoldSettler interface {
	Commit(ctx context.Context, ownerRef, promoCode string) (*reservations.Receipt, error)
	Release(ctx context.Context, ownerRef, reason string) (*reservations.ReleaseResult, error)
}

// Listener turns payment results into commits and releases. It is transport
// agnostic; the Kafka and RabbitMQ consumers feed it raw message bodies.
type Listener struct {
	settler HoldSettler
}

func NewListener(settler HoldSettler) *Listener {
	return &Listener{settler: settler}
}

// Handle processes one message. A nil return means the message can be
// acknowledged; ErrMalformedMessage means it should be dropped; any other
// error means it should be redelivered.
func (l *Listener) Handle(ctx context.Context, body []byte) error {
	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	result.normalize()
	if result.OwnerRef == "" {
		return fmt.Errorf("%w: owner_ref is required", ErrMalformedMessage)
	}

	var err error
	switch result.Status {
	case StatusSucceeded:
		_, err = l.settler.Commit(ctx, result.OwnerRef, result.PromoCode)
	case StatusFailed, StatusTimedOut:
		_, err = l.settler.Release(ctx, result.OwnerRef, reservations.ReasonPayment)
	case StatusCancelled:
		_, err = l.settler.Release(ctx, result.OwnerRef, reservations.ReasonCancelled)
	default:
		return fmt.Errorf("%w: unknown status %q", ErrMalformedMessage, result.Status)
	}

	if err == nil {
		logger.GetDefault().Info("Payment result applied",
			"owner_ref", result.OwnerRef, "status", string(result.Status), "payment_id", result.PaymentID)
		return nil
	}

	switch apperrors.KindOf(err) {
	case apperrors.KindValidation, apperrors.KindConflict, apperrors.KindPreconditionFailed, apperrors.KindNotFound:
		// retrying cannot change the outcome
		logger.GetDefault().WithError(err).Warn("Payment result rejected",
			"owner_ref", result.OwnerRef, "status", string(result.Status), "payment_id", result.PaymentID)
		return nil
	}
	return fmt.Errorf("failed to apply payment result for %s: %w", result.OwnerRef, err)
}

// IsMalformed reports whether err marks a message that must not be retried
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformedMessage)
}
