package checkoutserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	checkoutmapper "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/adapters/http/mapper"
	checkouttypes "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application/types"
	checkoutports "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
)

// CheckoutAPI wires HTTP transport with the checkout orchestration service.
type CheckoutAPI struct {
	service checkoutports.Service
}

// NewCheckoutAPI creates a CheckoutAPI backed by the provided service.
func NewCheckoutAPI(service checkoutports.Service) CheckoutAPI {
	return CheckoutAPI{service: service}
}

type placeOrderRequest struct {
	ShippingAddress checkoutmapper.Address `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
}

type placeOrderResponse struct {
	Order         checkoutmapper.Order `json:"order"`
	CheckoutState string               `json:"checkoutState"`
}

// Post /v1/orders
// Creates an order from the caller's cart and starts the checkout.
func (api *CheckoutAPI) PlaceOrder(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var payload placeOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	result, err := api.service.PlaceOrder(c.Request.Context(), checkouttypes.PlaceOrderInput{
		UserID:          userID,
		ShippingAddress: checkoutmapper.ToAddressInput(payload.ShippingAddress),
		PaymentMethod:   payload.PaymentMethod,
	})
	if err != nil {
		respondCheckoutServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placeOrderResponse{
		Order:         checkoutmapper.FromDomainOrder(result.Order),
		CheckoutState: result.State.String(),
	})
}

type initiatePaymentRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

type initiatePaymentResponse struct {
	OrderID       string    `json:"orderId"`
	TransactionID string    `json:"transactionId"`
	PaymentURL    string    `json:"paymentUrl"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// Post /v1/orders/payments/initiate
// Starts the gateway transaction for the caller's active checkout.
func (api *CheckoutAPI) InitiatePayment(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var payload initiatePaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	result, err := api.service.InitiatePayment(c.Request.Context(), checkouttypes.InitiatePaymentInput{
		UserID:  userID,
		OrderID: payload.OrderID,
	})
	if err != nil {
		respondCheckoutServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, initiatePaymentResponse{
		OrderID:       result.OrderID,
		TransactionID: result.TransactionID,
		PaymentURL:    result.PaymentURL,
		ExpiresAt:     result.ExpiresAt,
	})
}

type confirmPaymentRequest struct {
	OrderID       string            `json:"orderId"`
	TransactionID string            `json:"transactionId"`
	Status        string            `json:"status"`
	Data          map[string]string `json:"data"`
}

type confirmPaymentResponse struct {
	OrderID       string `json:"orderId"`
	PaymentStatus string `json:"paymentStatus"`
}

// Post /v1/orders/payments/confirm
// Settles the pending transaction for the caller's active checkout.
func (api *CheckoutAPI) ConfirmPayment(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var payload confirmPaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	result, err := api.service.ConfirmPayment(c.Request.Context(), checkouttypes.ConfirmPaymentInput{
		UserID:        userID,
		OrderID:       payload.OrderID,
		TransactionID: payload.TransactionID,
		Status:        payload.Status,
		Data:          payload.Data,
	})
	if err != nil {
		respondCheckoutServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, confirmPaymentResponse{
		OrderID:       result.OrderID,
		PaymentStatus: string(result.PaymentStatus),
	})
}

type resumeCheckoutResponse struct {
	Resumed       bool   `json:"resumed"`
	OrderID       string `json:"orderId,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	CheckoutState string `json:"checkoutState"`
}

// Post /v1/checkout/resume
// Re-enters a persisted pending checkout after a reload.
func (api *CheckoutAPI) ResumeCheckout(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	result, err := api.service.ResumeIfPending(c.Request.Context(), userID)
	if err != nil {
		respondCheckoutServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resumeCheckoutResponse{
		Resumed:       result.Resumed,
		OrderID:       result.OrderID,
		TransactionID: result.TransactionID,
		CheckoutState: result.State.String(),
	})
}

type cancelCheckoutRequest struct {
	Confirmed bool `json:"confirmed"`
}

// Post /v1/checkout/cancel
// Discards the caller's active checkout session.
func (api *CheckoutAPI) CancelCheckout(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var payload cancelCheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&payload); err != nil {
			respondError(c, http.StatusBadRequest, err)
			return
		}
	}
	if err := api.service.CancelCheckout(c.Request.Context(), checkouttypes.CancelCheckoutInput{
		UserID:    userID,
		Confirmed: payload.Confirmed,
	}); err != nil {
		respondCheckoutServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
