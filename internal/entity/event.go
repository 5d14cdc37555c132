package entity

import (
	"context"
	"time"
)

type EventType string

const (
	EventEmailDelivery    EventType = "email_delivery"
	EventWhatsAppDelivery EventType = "whatsapp_delivery"
)

// Event registra uma entrega bem sucedida de um produto por um canal.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Category  OrderType `json:"category"`
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	ProductID *string   `json:"product_id"`
	SentAt    time.Time `json:"sent_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewEvent(eventType EventType, category OrderType, to, subject, productID string, sentAt time.Time) *Event {
	var product *string
	if productID != "" {
		product = &productID
	}
	now := time.Now()
	return &Event{
		Type:      eventType,
		Category:  category,
		To:        to,
		Subject:   subject,
		ProductID: product,
		SentAt:    sentAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type EventRepositoryInterface interface {
	Create(ctx context.Context, event *Event) error
}
