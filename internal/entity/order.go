package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrderType string

const (
	OrderLeadCapture OrderType = "lead_capture"
	OrderSale        OrderType = "sale"
	OrderUpsell      OrderType = "upsell"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderCreated   OrderStatus = "created"
	OrderDelivered OrderStatus = "delivered"
)

// LineItem é uma linha do pedido; produtos repetidos viram linhas repetidas.
type LineItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type Order struct {
	ID          string      `json:"id"`
	OrderToken  string      `json:"order_id"`
	OrderDate   time.Time   `json:"order_date"`
	Type        OrderType   `json:"order_type"`
	TotalAmount int64       `json:"total_amount"` // Em centavos
	Status      OrderStatus `json:"status"`
	Products    []LineItem  `json:"products"`
	LeadID      *string     `json:"lead_id"`
	CreatedAt   time.Time   `json:"created_at"`
}

// NewOrder cria o pedido com status created e uma linha de quantidade 1 por produto.
func NewOrder(leadID string, orderType OrderType, amount int64, productIDs []string) *Order {
	items := make([]LineItem, 0, len(productIDs))
	for _, id := range productIDs {
		items = append(items, LineItem{ProductID: id, Quantity: 1})
	}

	var lead *string
	if leadID != "" {
		lead = &leadID
	}

	now := time.Now()
	return &Order{
		OrderToken:  uuid.New().String(),
		OrderDate:   now,
		Type:        orderType,
		TotalAmount: amount,
		Status:      OrderCreated,
		Products:    items,
		LeadID:      lead,
		CreatedAt:   now,
	}
}

// ProductIDs devolve os produtos das linhas na ordem de inserção.
func (o *Order) ProductIDs() []string {
	ids := make([]string, 0, len(o.Products))
	for _, item := range o.Products {
		ids = append(ids, item.ProductID)
	}
	return ids
}

type OrderRepositoryInterface interface {
	Create(ctx context.Context, order *Order) error
	MarkDelivered(ctx context.Context, id string) error
}
