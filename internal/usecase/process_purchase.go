package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

const (
	PurchaseApprovedEvent = "purchase_approved"
	checkoutLandingSource = "checkout"
	directCustomerType    = "direct-customer"
	defaultCustomerName   = "Cliente"
)

// ProcessPurchaseUseCase trata a compra aprovada: converte o lead, grava o
// pedido e agenda a entrega sem esperar por ela.
type ProcessPurchaseUseCase struct {
	Leads      *LeadService
	Products   *ProductResolver
	Orders     entity.OrderRepositoryInterface
	Dispatcher DeliveryDispatcher
	log        *zap.Logger
}

func NewProcessPurchaseUseCase(
	leads *LeadService,
	products *ProductResolver,
	orders entity.OrderRepositoryInterface,
	dispatcher DeliveryDispatcher,
	log *zap.Logger,
) *ProcessPurchaseUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProcessPurchaseUseCase{
		Leads:      leads,
		Products:   products,
		Orders:     orders,
		Dispatcher: dispatcher,
		log:        log,
	}
}

func (uc *ProcessPurchaseUseCase) Execute(ctx context.Context, input PurchaseInput) (*PurchaseOutput, error) {
	if input.Event != PurchaseApprovedEvent {
		return &PurchaseOutput{OK: true, Ignored: true, Reason: "Evento não é purchase_approved"}, nil
	}

	if input.Customer == nil {
		return nil, newValidationError("Dados do cliente ausentes", nil)
	}
	email := entity.NullIfEmpty(input.Customer.Email)
	phone := entity.NullIfEmpty(input.Customer.Phone)
	if email == nil && phone == nil {
		return nil, newValidationError("Cliente precisa de email ou telefone", []ValidationError{{"customer", entity.ErrLeadContactRequired.Error()}})
	}
	if len(input.ExternalIDs) == 0 {
		return nil, newValidationError("Nenhum produto informado", []ValidationError{{"product", "is required"}})
	}

	products, err := uc.Products.ByExternalIDs(ctx, input.ExternalIDs)
	if err != nil {
		return nil, err
	}
	ids := productIDs(products)

	name := strings.TrimSpace(input.Customer.Name)
	if name == "" {
		name = defaultCustomerName
	}

	lead, err := uc.Leads.Upsert(ctx, LeadUpsertInput{
		Mode:              LeadConversion,
		LandingSource:     checkoutLandingSource,
		Name:              name,
		Email:             email,
		Phone:             phone,
		UserType:          directCustomerType,
		ConsentMarketing:  true,
		RemarketingStatus: entity.DefaultRemarketingStatus,
		ProductID:         &ids[0],
	})
	if err != nil {
		return nil, err
	}

	order := entity.NewOrder(lead.ID, entity.OrderSale, input.AmountCents, ids)
	if err := uc.Orders.Create(ctx, order); err != nil {
		return nil, &TechnicalError{Code: "ORDER_CREATE", Message: "erro ao registrar pedido", Err: err}
	}

	// Entrega só para os contatos informados na compra.
	job := DeliveryJob{
		OrderID:      order.ID,
		Category:     entity.OrderSale,
		ContactType:  entity.ResolveContactType(email, phone),
		CustomerName: lead.Name,
		Email:        email,
		Phone:        phone,
		ProductIDs:   ids,
	}
	// A partir daqui o pedido existe: falha no agendamento só vai para o log.
	if err := uc.Dispatcher.Dispatch(ctx, job); err != nil {
		uc.log.Error("erro ao agendar entrega",
			zap.String("order_id", order.ID), zap.Error(err))
	}

	uc.log.Info("compra registrada",
		zap.String("lead_id", lead.ID),
		zap.String("order_id", order.ID),
		zap.Strings("product_ids", ids))

	return &PurchaseOutput{
		OK:         true,
		LeadID:     lead.ID,
		OrderID:    order.ID,
		ProductIDs: ids,
		Message:    "Pedido registrado; entrega em andamento",
	}, nil
}
