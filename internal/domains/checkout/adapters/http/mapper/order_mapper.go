package mapper

import (
	"time"

	checkouttypes "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/application/types"
	checkoutdomain "github.com/19jem-ila/ecommerce-checkout/internal/domains/checkout/domain"
)

// Address is the transport-layer shape of a shipping or billing address.
type Address struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zipCode" binding:"required"`
	Country string `json:"country" binding:"required"`
	Phone   string `json:"phone,omitempty"`
}

// LineItem is the transport-layer shape of one order position.
type LineItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int32   `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Color     string  `json:"color,omitempty"`
	ImageURL  string  `json:"imageUrl,omitempty"`
	LineTotal float64 `json:"lineTotal"`
}

// Order is the transport-layer shape of an order aggregate.
type Order struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	Items            []LineItem `json:"items"`
	ShippingAddress  Address    `json:"shippingAddress"`
	PaymentMethod    string     `json:"paymentMethod"`
	Subtotal         float64    `json:"subtotal"`
	Tax              float64    `json:"tax"`
	ShippingCost     float64    `json:"shippingCost"`
	Total            float64    `json:"total"`
	OrderStatus      string     `json:"orderStatus"`
	PaymentStatus    string     `json:"paymentStatus"`
	TransactionID    string     `json:"transactionId,omitempty"`
	PaymentExpiresAt *time.Time `json:"paymentExpiresAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Pagination is the listing envelope shared by user and admin order queries.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalOrders int64 `json:"totalOrders"`
}

// OrdersPage is one page of orders.
type OrdersPage struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// ToAddressInput converts a transport address into the application input.
func ToAddressInput(a Address) checkouttypes.AddressInput {
	return checkouttypes.AddressInput{
		Street:  a.Street,
		City:    a.City,
		State:   a.State,
		ZipCode: a.ZipCode,
		Country: a.Country,
		Phone:   a.Phone,
	}
}

// FromDomainOrder converts a domain order to the transport representation.
func FromDomainOrder(order *checkoutdomain.Order) Order {
	if order == nil {
		return Order{}
	}
	items := make([]LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Color:     item.Color,
			ImageURL:  item.ImageURL,
			LineTotal: item.LineTotal(),
		})
	}
	return Order{
		ID:     order.ID,
		UserID: order.UserID,
		Items:  items,
		ShippingAddress: Address{
			Street:  order.ShippingAddress.Street,
			City:    order.ShippingAddress.City,
			State:   order.ShippingAddress.State,
			ZipCode: order.ShippingAddress.ZipCode,
			Country: order.ShippingAddress.Country,
			Phone:   order.ShippingAddress.Phone,
		},
		PaymentMethod:    string(order.PaymentMethod),
		Subtotal:         order.Subtotal,
		Tax:              order.Tax,
		ShippingCost:     order.ShippingCost,
		Total:            order.Total,
		OrderStatus:      string(order.OrderStatus),
		PaymentStatus:    string(order.PaymentStatus),
		TransactionID:    order.TransactionID,
		PaymentExpiresAt: order.PaymentExpiresAt,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

// FromOrdersPage converts a listing result to the transport representation.
func FromOrdersPage(page *checkouttypes.OrdersPage) OrdersPage {
	if page == nil {
		return OrdersPage{Orders: []Order{}}
	}
	orders := make([]Order, 0, len(page.Orders))
	for _, order := range page.Orders {
		orders = append(orders, FromDomainOrder(order))
	}
	return OrdersPage{
		Orders: orders,
		Pagination: Pagination{
			CurrentPage: page.Pagination.CurrentPage,
			TotalPages:  page.Pagination.TotalPages,
			TotalOrders: page.Pagination.TotalOrders,
		},
	}
}
