package entity

import (
	"context"
	"errors"
	"strings"
	"time"
)

type ConversionStatus string

const (
	NotConverted ConversionStatus = "not_converted"
	Converted    ConversionStatus = "converted"
)

const (
	DefaultRemarketingStatus = "not_sent_remarketing"
	DefaultUserType          = "hobby"
)

var (
	ErrLeadContactRequired = errors.New("informe ao menos email ou telefone")
	ErrLeadNotFound        = errors.New("lead não encontrado")
	// ErrLeadContactTaken sinaliza violação do unique de email/phone no insert.
	ErrLeadContactTaken = errors.New("já existe um lead com este email ou telefone")
)

type Lead struct {
	ID                string           `json:"id"`
	LandingSource     string           `json:"landing_source"`
	Name              string           `json:"name"`
	Email             *string          `json:"email"`
	Phone             *string          `json:"phone"`
	ContactType       ContactType      `json:"contact_type"`
	UserType          string           `json:"user_type"`
	ConsentMarketing  bool             `json:"consent_marketing"`
	ConversionStatus  ConversionStatus `json:"conversion_status"`
	RemarketingStatus string           `json:"remarketing_status"`
	ProductID         *string          `json:"product_id"`
	CreatedAt         time.Time        `json:"created_at"`
}

// NewLead monta um lead novo; email e telefone vazios viram nil.
func NewLead(landingSource, name string, email, phone *string) (*Lead, error) {
	email = NullIfEmpty(email)
	phone = NullIfEmpty(phone)
	if email == nil && phone == nil {
		return nil, ErrLeadContactRequired
	}

	return &Lead{
		LandingSource:     landingSource,
		Name:              name,
		Email:             email,
		Phone:             phone,
		ContactType:       ResolveContactType(email, phone),
		UserType:          DefaultUserType,
		ConsentMarketing:  true,
		ConversionStatus:  NotConverted,
		RemarketingStatus: DefaultRemarketingStatus,
		CreatedAt:         time.Now(),
	}, nil
}

// NullIfEmpty apara espaços e converte string vazia em nil.
func NullIfEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type LeadRepositoryInterface interface {
	FindByContact(ctx context.Context, email, phone *string) (*Lead, error)
	Create(ctx context.Context, lead *Lead) error
	Update(ctx context.Context, lead *Lead) error
	UpdateUserType(ctx context.Context, id, userType string) (*Lead, error)
}
