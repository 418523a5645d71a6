package application

import (
	"errors"
	"fmt"

	"github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
)

// Error kinds surfaced by the orchestrator. Raw transport errors from the
// collaborators are always wrapped into one of these before leaving the
// application layer.
var (
	// ErrValidation covers missing or malformed checkout input; recovered by
	// re-prompting the form, never a system fault.
	ErrValidation = errors.New("checkout validation failed")
	// ErrGateway covers a failed initiation call or an initiation that returned
	// no usable transaction id. The order stays pending and may be retried.
	ErrGateway = errors.New("payment gateway error")
	// ErrConfirmation covers a failed or non-success confirm call. The checkout
	// returns to payment-pending so confirmation can be retried.
	ErrConfirmation = errors.New("payment confirmation failed")
	// ErrRepository covers order persistence failures; terminal for the attempt.
	ErrRepository = errors.New("order repository error")

	// ErrCheckoutInProgress rejects a second PlaceOrder while one is in flight.
	ErrCheckoutInProgress = errors.New("a checkout is already in progress")
	// ErrNoActiveCheckout rejects payment operations without an active checkout.
	ErrNoActiveCheckout = errors.New("no active checkout")
	// ErrAlreadyInitiated rejects a second initiation while a transaction for
	// the order is outstanding; confirmation must be resumed instead.
	ErrAlreadyInitiated = errors.New("payment already initiated for this order")
	// ErrCancelNeedsConfirmation asks the caller to confirm discarding a
	// checkout whose gateway transaction may be mid-flight.
	ErrCancelNeedsConfirmation = errors.New("cancelling a pending payment requires confirmation")
	// ErrForbidden rejects access to an order owned by another user.
	ErrForbidden = errors.New("order belongs to another user")
)

func validationErr(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func gatewayErr(err error) error {
	return fmt.Errorf("%w: %w", ErrGateway, err)
}

func confirmationErr(err error) error {
	return fmt.Errorf("%w: %w", ErrConfirmation, err)
}

func repositoryErr(err error) error {
	return fmt.Errorf("%w: %w", ErrRepository, err)
}

func mapDomainError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyItems) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidUnitPrice) ||
		errors.Is(err, domain.ErrIncompleteAddress) ||
		errors.Is(err, domain.ErrPhoneRequired) ||
		errors.Is(err, domain.ErrUnknownMethod) ||
		errors.Is(err, domain.ErrInvalidOrderStatus) {
		return validationErr(err)
	}
	return err
}
