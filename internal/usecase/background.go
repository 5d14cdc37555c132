package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultDeliveryDeadline = 60 * time.Second

// BackgroundDelivery executa um DeliveryJob com prazo próprio e LogPolicy.
type BackgroundDelivery struct {
	Products     *ProductResolver
	Orchestrator *DeliveryOrchestrator
	Policy       FailurePolicy
	Deadline     time.Duration
	log          *zap.Logger
}

func NewBackgroundDelivery(products *ProductResolver, orchestrator *DeliveryOrchestrator, policy FailurePolicy, deadline time.Duration, log *zap.Logger) *BackgroundDelivery {
	if log == nil {
		log = zap.NewNop()
	}
	if deadline <= 0 {
		deadline = DefaultDeliveryDeadline
	}
	return &BackgroundDelivery{
		Products:     products,
		Orchestrator: orchestrator,
		Policy:       policy,
		Deadline:     deadline,
		log:          log,
	}
}

// Run devolve erro só para falhas de infraestrutura antes da entrega
// (ex.: produtos não encontrados); falhas de envio ficam com a Policy.
func (b *BackgroundDelivery) Run(ctx context.Context, job DeliveryJob) error {
	ctx, cancel := context.WithTimeout(ctx, b.Deadline)
	defer cancel()

	products, err := b.Products.ByIDs(ctx, job.ProductIDs)
	if err != nil {
		b.log.Error("entrega em segundo plano sem produtos",
			zap.String("order_id", job.OrderID), zap.Error(err))
		return err
	}

	result, err := b.Orchestrator.Deliver(ctx, DeliveryRequest{
		OrderID:      job.OrderID,
		Category:     job.Category,
		ContactType:  job.ContactType,
		CustomerName: job.CustomerName,
		Email:        job.Email,
		Phone:        job.Phone,
		Products:     products,
	}, b.Policy)
	if err != nil {
		return err
	}

	b.log.Info("entrega em segundo plano finalizada",
		zap.String("order_id", job.OrderID),
		zap.Int("tasks", result.Tasks),
		zap.Int("failures", len(result.Errors)),
		zap.Bool("delivered", result.Delivered),
		zap.Bool("aborted", result.Aborted))
	return nil
}

// InProcessDispatcher roda a entrega numa goroutine desacoplada do request.
type InProcessDispatcher struct {
	Runner *BackgroundDelivery
	wg     sync.WaitGroup
}

func NewInProcessDispatcher(runner *BackgroundDelivery) *InProcessDispatcher {
	return &InProcessDispatcher{Runner: runner}
}

func (d *InProcessDispatcher) Dispatch(ctx context.Context, job DeliveryJob) error {
	bg := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = d.Runner.Run(bg, job)
	}()
	return nil
}

// Wait bloqueia até as entregas em andamento terminarem ou o ctx expirar.
func (d *InProcessDispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

