package usecase

import "github.com/LeomirDias/gpmd-sys/internal/entity"

type CaptureLeadInput struct {
	LandingSource     string                  `json:"landing_source" validate:"required,max=255"`
	Name              string                  `json:"name" validate:"required,max=255"`
	Email             *string                 `json:"email" validate:"omitempty,email"`
	Phone             *string                 `json:"phone" validate:"omitempty,max=32"`
	UserType          string                  `json:"user_type"`
	ConsentMarketing  *bool                   `json:"consent_marketing"`
	ConversionStatus  entity.ConversionStatus `json:"conversion_status" validate:"omitempty,oneof=not_converted converted"`
	RemarketingStatus string                  `json:"remarketing_status"`
	ProductID         *string                 `json:"product_id" validate:"omitempty,uuid"`
	ProductIDs        []string                `json:"product_ids" validate:"omitempty,dive,uuid"`
}

// RequestedProductIDs junta product_ids e product_id, nesta ordem.
func (in CaptureLeadInput) RequestedProductIDs() []string {
	ids := make([]string, 0, len(in.ProductIDs)+1)
	ids = append(ids, in.ProductIDs...)
	if len(ids) == 0 && in.ProductID != nil {
		ids = append(ids, *in.ProductID)
	}
	return ids
}

type CaptureLeadOutput struct {
	Success        bool               `json:"success"`
	Data           *entity.Lead       `json:"data"`
	DeliverySent   entity.ContactType `json:"delivery_sent,omitempty"`
	DeliveryErrors []DeliveryError    `json:"delivery_errors,omitempty"`
}

type UpdateLeadInput struct {
	UserType string  `json:"user_type" validate:"required,max=64"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=32"`
}

type UpdateLeadOutput struct {
	Success bool         `json:"success"`
	Data    *entity.Lead `json:"data"`
}

type PurchaseCustomer struct {
	Name  string
	Email *string
	Phone *string
}

type PurchaseInput struct {
	Event       string
	Customer    *PurchaseCustomer
	AmountCents int64
	ExternalIDs []string
}

type PurchaseOutput struct {
	OK         bool     `json:"ok"`
	Ignored    bool     `json:"ignored,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	LeadID     string   `json:"lead_id,omitempty"`
	OrderID    string   `json:"order_id,omitempty"`
	ProductIDs []string `json:"product_ids,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// DeliveryJob é o payload da entrega em segundo plano (goroutine ou fila).
type DeliveryJob struct {
	OrderID      string             `json:"order_id"`
	Category     entity.OrderType   `json:"category"`
	ContactType  entity.ContactType `json:"contact_type"`
	CustomerName string             `json:"customer_name"`
	Email        *string            `json:"email,omitempty"`
	Phone        *string            `json:"phone,omitempty"`
	ProductIDs   []string           `json:"product_ids"`
}
