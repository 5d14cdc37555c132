package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

type UndeliveredOrderLister interface {
	ListUndelivered(ctx context.Context, before time.Time, limit int) ([]*entity.Order, error)
}

type gauge interface {
	Set(float64)
}

// StaleOrderWorker aponta pedidos que passaram do prazo sem chegar a delivered.
// Não altera status: só loga e atualiza a métrica.
type StaleOrderWorker struct {
	orders       UndeliveredOrderLister
	staleAfter   time.Duration
	tickInterval time.Duration
	batch        int
	gauge        gauge
	now          func() time.Time
	log          *zap.Logger
}

func NewStaleOrderWorker(orders UndeliveredOrderLister, staleAfter time.Duration, g gauge, log *zap.Logger) *StaleOrderWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &StaleOrderWorker{
		orders:       orders,
		staleAfter:   staleAfter,
		tickInterval: time.Minute,
		batch:        100,
		gauge:        g,
		now:          time.Now,
		log:          log,
	}
}

func (w *StaleOrderWorker) Start(ctx context.Context) {
	w.log.Info("monitor de pedidos não entregues iniciado", zap.Duration("stale_after", w.staleAfter))

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.check(ctx)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("monitor de pedidos não entregues encerrado")
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

func (w *StaleOrderWorker) check(ctx context.Context) int {
	orders, err := w.orders.ListUndelivered(ctx, w.now().Add(-w.staleAfter), w.batch)
	if err != nil {
		w.log.Error("erro ao buscar pedidos não entregues", zap.Error(err))
		return 0
	}

	for _, o := range orders {
		w.log.Warn("pedido sem entrega confirmada",
			zap.String("order_id", o.ID),
			zap.String("order_type", string(o.Type)),
			zap.String("status", string(o.Status)),
			zap.Strings("product_ids", o.ProductIDs()),
			zap.Duration("elapsed", w.now().Sub(o.CreatedAt).Round(time.Minute)))
	}
	if w.gauge != nil {
		w.gauge.Set(float64(len(orders)))
	}
	return len(orders)
}
