package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/LeomirDias/gpmd-sys/internal/usecase"
)

// JobRunner executa a entrega de um job (usecase.BackgroundDelivery).
type JobRunner interface {
	Run(ctx context.Context, job usecase.DeliveryJob) error
}

type consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

type Worker struct {
	Channel consumer
	Runner  JobRunner
	log     *zap.Logger
}

func NewWorker(ch *amqp.Channel, runner JobRunner, log *zap.Logger) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Worker{Channel: ch, Runner: runner, log: log}
}

// Start consome até o ctx ser cancelado ou o canal fechar.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.log.Info("worker de entregas consumindo", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("canal do RabbitMQ fechado")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var job usecase.DeliveryJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		w.log.Error("payload inválido na fila de entregas", zap.Error(err))
		// Mensagem malformada: sem requeue para não travar a fila.
		d.Nack(false, false)
		return
	}

	// O prazo por job é aplicado pelo Runner; o ctx do worker só propaga o shutdown.
	if err := w.Runner.Run(context.WithoutCancel(ctx), job); err != nil {
		w.log.Error("entrega falhou, enviando para DLQ",
			zap.String("order_id", job.OrderID), zap.Error(err))
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}
