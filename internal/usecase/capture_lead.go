package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

type CaptureLeadUseCase struct {
	Leads        *LeadService
	Products     *ProductResolver
	Orders       entity.OrderRepositoryInterface
	Orchestrator *DeliveryOrchestrator
	log          *zap.Logger
}

func NewCaptureLeadUseCase(
	leads *LeadService,
	products *ProductResolver,
	orders entity.OrderRepositoryInterface,
	orchestrator *DeliveryOrchestrator,
	log *zap.Logger,
) *CaptureLeadUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &CaptureLeadUseCase{
		Leads:        leads,
		Products:     products,
		Orders:       orders,
		Orchestrator: orchestrator,
		log:          log,
	}
}

// Execute cadastra o lead, registra o pedido de captura e entrega os arquivos
// antes de responder.
func (uc *CaptureLeadUseCase) Execute(ctx context.Context, input CaptureLeadInput) (*CaptureLeadOutput, error) {
	input.Email = entity.NullIfEmpty(input.Email)
	input.Phone = entity.NullIfEmpty(input.Phone)
	input.ProductID = entity.NullIfEmpty(input.ProductID)

	if errs := ValidateCaptureLeadInput(input); len(errs) > 0 {
		return nil, newValidationError("Dados inválidos", errs)
	}

	// 1. Contato já cadastrado é conflito, antes de tocar em produtos
	if err := uc.Leads.EnsureNew(ctx, input.Email, input.Phone); err != nil {
		return nil, err
	}

	// 2. Produtos
	products, err := uc.Products.ByIDs(ctx, input.RequestedProductIDs())
	if err != nil {
		return nil, err
	}

	// 3. Lead
	consent := true
	if input.ConsentMarketing != nil {
		consent = *input.ConsentMarketing
	}
	var firstProduct *string
	if len(products) > 0 {
		firstProduct = &products[0].ID
	}
	lead, err := uc.Leads.Upsert(ctx, LeadUpsertInput{
		Mode:              LeadCapture,
		LandingSource:     input.LandingSource,
		Name:              input.Name,
		Email:             input.Email,
		Phone:             input.Phone,
		UserType:          input.UserType,
		ConsentMarketing:  consent,
		ConversionStatus:  input.ConversionStatus,
		RemarketingStatus: input.RemarketingStatus,
		ProductID:         firstProduct,
	})
	if err != nil {
		return nil, err
	}

	// 4. Pedido
	order := entity.NewOrder(lead.ID, entity.OrderLeadCapture, 0, productIDs(products))
	if err := uc.Orders.Create(ctx, order); err != nil {
		return nil, &TechnicalError{Code: "ORDER_CREATE", Message: "erro ao registrar pedido", Err: err}
	}
	uc.log.Info("lead capturado",
		zap.String("lead_id", lead.ID),
		zap.String("order_id", order.ID),
		zap.Int("products", len(products)))

	// 5. Entrega síncrona
	result, err := uc.Orchestrator.Deliver(ctx, DeliveryRequest{
		OrderID:      order.ID,
		Category:     entity.OrderLeadCapture,
		ContactType:  lead.ContactType,
		CustomerName: lead.Name,
		Email:        lead.Email,
		Phone:        lead.Phone,
		Products:     products,
	}, ReportPolicy{Log: uc.log})
	if err != nil {
		return nil, err
	}

	return &CaptureLeadOutput{
		Success:        true,
		Data:           lead,
		DeliverySent:   result.Sent,
		DeliveryErrors: result.Errors,
	}, nil
}
