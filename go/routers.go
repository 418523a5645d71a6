package checkoutserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ApiHandleFunctions groups the handler bundles served by the router.
type ApiHandleFunctions struct {
	CheckoutAPI CheckoutAPI
	OrdersAPI   OrdersAPI
}

// Route binds one HTTP method and path to a handler.
type Route struct {
	Method      string
	Pattern     string
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a gin engine with all checkout routes registered.
func NewRouter(handlers ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handlers)
}

// NewRouterWithGinEngine registers the checkout routes on a caller-owned engine.
func NewRouterWithGinEngine(router *gin.Engine, handlers ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handlers) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = defaultHandler
		}
		router.Handle(route.Method, route.Pattern, route.HandlerFunc)
	}
	return router
}

func defaultHandler(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{"error": "not implemented"})
}

func getRoutes(handlers ApiHandleFunctions) []Route {
	return []Route{
		{http.MethodPost, "/v1/orders", handlers.CheckoutAPI.PlaceOrder},
		{http.MethodPost, "/v1/orders/payments/initiate", handlers.CheckoutAPI.InitiatePayment},
		{http.MethodPost, "/v1/orders/payments/confirm", handlers.CheckoutAPI.ConfirmPayment},
		{http.MethodPost, "/v1/checkout/resume", handlers.CheckoutAPI.ResumeCheckout},
		{http.MethodPost, "/v1/checkout/cancel", handlers.CheckoutAPI.CancelCheckout},

		{http.MethodGet, "/v1/orders/my-orders", handlers.OrdersAPI.ListMyOrders},
		{http.MethodGet, "/v1/orders/:orderId", handlers.OrdersAPI.GetOrder},
		{http.MethodPatch, "/v1/orders/:orderId/cancel", handlers.OrdersAPI.CancelOrder},
		{http.MethodGet, "/v1/orders/admin/all", handlers.OrdersAPI.ListAllOrders},
		{http.MethodPatch, "/v1/orders/admin/:orderId/status", handlers.OrdersAPI.UpdateOrderStatus},
	}
}

// Caller identity arrives from the fronting auth layer as trusted headers.
const (
	userIDHeader   = "X-User-ID"
	userRoleHeader = "X-User-Role"
)

func callerID(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.GetHeader(userIDHeader))
	if userID == "" {
		respondError(c, http.StatusUnauthorized, errors.New("missing user identity"))
		return "", false
	}
	return userID, true
}

func requireAdmin(c *gin.Context) bool {
	if _, ok := callerID(c); !ok {
		return false
	}
	if !strings.EqualFold(strings.TrimSpace(c.GetHeader(userRoleHeader)), "admin") {
		respondError(c, http.StatusForbidden, errors.New("admin role required"))
		return false
	}
	return true
}
