package ports

import "context"

// ConfirmationTrigger schedules the confirmation of an initiated payment.
// Implementations range from a no-op (confirmation arrives over HTTP) to a
// local timer simulating the gateway callback, to a durable workflow.
// Scheduling the same transaction twice must not produce a second confirm.
type ConfirmationTrigger interface {
	ScheduleConfirm(ctx context.Context, orderID, transactionID string) error
}
