package checkoutserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	checkoutapp "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application"
	checkoutdomain "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
	checkoutports "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
	apierrors "github.com/19jem-ila/ecommerce-checkout/internal/shared/errors"
)

// checkoutResponder maps checkout application errors to RFC 7807 problems
// before falling back to the generic responder.
var checkoutResponder = apierrors.NewChainedResponder("", mapCheckoutError)

func mapCheckoutError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, checkoutapp.ErrValidation):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, checkoutapp.ErrForbidden):
		return apierrors.ErrForbidden.WithDetail(err.Error()), true
	case errors.Is(err, checkoutports.ErrNotFound), errors.Is(err, checkoutapp.ErrNoActiveCheckout):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, checkoutapp.ErrCheckoutInProgress),
		errors.Is(err, checkoutapp.ErrAlreadyInitiated),
		errors.Is(err, checkoutdomain.ErrStatusTransition),
		errors.Is(err, checkoutdomain.ErrOrderNotCancellable):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, checkoutapp.ErrCancelNeedsConfirmation):
		return apierrors.ErrConflict.
			WithDetail(err.Error()).
			WithExtension("confirmationRequired", true), true
	case errors.Is(err, checkoutapp.ErrConfirmation):
		return apierrors.ErrPaymentFailed.WithDetail(err.Error()), true
	case errors.Is(err, checkoutapp.ErrGateway):
		return apierrors.ErrUpstream.WithDetail(err.Error()), true
	case errors.Is(err, checkoutapp.ErrRepository):
		return apierrors.ErrInternal.WithDetail(err.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}

// respondError keeps binding failures and simple guards on the problem format.
func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		return
	}
	var problem apierrors.ProblemDetail
	switch status {
	case http.StatusBadRequest:
		problem = apierrors.ErrBadRequest.WithDetail(err.Error())
	case http.StatusUnauthorized:
		problem = apierrors.ErrUnauthorized.WithDetail(err.Error())
	case http.StatusForbidden:
		problem = apierrors.ErrForbidden.WithDetail(err.Error())
	case http.StatusNotFound:
		problem = apierrors.ErrNotFound.WithDetail(err.Error())
	default:
		problem = apierrors.ErrInternal.WithDetail(err.Error())
	}
	checkoutResponder.Respond(c, problem)
}

func respondCheckoutServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	checkoutResponder.RespondError(c, err)
}
