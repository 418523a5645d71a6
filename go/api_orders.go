package checkoutserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	checkoutmapper "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/adapters/http/mapper"
	checkouttypes "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application/types"
	checkoutports "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/ports"
)

// OrdersAPI wires HTTP transport with order lookup and management.
type OrdersAPI struct {
	service checkoutports.Service
}

// NewOrdersAPI creates an OrdersAPI backed by the provided service.
func NewOrdersAPI(service checkoutports.Service) OrdersAPI {
	return OrdersAPI{service: service}
}

// Get /v1/orders/my-orders
// Pages through the caller's order history.
func (api *OrdersAPI) ListMyOrders(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	page, err := api.service.ListUserOrders(c.Request.Context(), checkouttypes.ListUserOrdersInput{
		UserID: userID,
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 10),
		Status: c.Query("status"),
	})
	if err != nil {
		respondCheckoutServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutmapper.FromOrdersPage(page))
}

// Get /v1/orders/:orderId
// Loads one order; owners only.
func (api *OrdersAPI) GetOrder(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	order, err := api.service.GetOrder(c.Request.Context(), checkouttypes.GetOrderInput{
		UserID:  userID,
		OrderID: c.Param("orderId"),
	})
	if err != nil {
		respondCheckoutServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutmapper.FromDomainOrder(order))
}

// Patch /v1/orders/:orderId/cancel
// Cancels the caller's order before it ships.
func (api *OrdersAPI) CancelOrder(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	order, err := api.service.CancelOrder(c.Request.Context(), checkouttypes.CancelOrderInput{
		UserID:  userID,
		OrderID: c.Param("orderId"),
	})
	if err != nil {
		respondCheckoutServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutmapper.FromDomainOrder(order))
}

// Get /v1/orders/admin/all
// Pages through every order with optional status filters.
func (api *OrdersAPI) ListAllOrders(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	page, err := api.service.ListAllOrders(c.Request.Context(), checkouttypes.ListAllOrdersInput{
		Page:          queryInt(c, "page", 1),
		Limit:         queryInt(c, "limit", 20),
		Status:        c.Query("status"),
		PaymentStatus: c.Query("paymentStatus"),
	})
	if err != nil {
		respondCheckoutServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutmapper.FromOrdersPage(page))
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Patch /v1/orders/admin/:orderId/status
// Applies a fulfilment transition to any order.
func (api *OrdersAPI) UpdateOrderStatus(c *gin.Context) {
	if !requireAdmin(c) {
		return
	}
	var payload updateOrderStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	order, err := api.service.UpdateOrderStatus(c.Request.Context(), checkouttypes.UpdateOrderStatusInput{
		OrderID: c.Param("orderId"),
		Status:  payload.Status,
	})
	if err != nil {
		respondCheckoutServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkoutmapper.FromDomainOrder(order))
}

func queryInt(c *gin.Context, name string, fallback int) int {
	value := c.Query(name)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}
