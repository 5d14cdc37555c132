package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
	"github.com/LeomirDias/gpmd-sys/internal/usecase"
)

// MockPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func TestPublishDelivery(t *testing.T) {
	pub := new(MockPublisher)
	job := usecase.DeliveryJob{
		OrderID:     "order-1",
		Category:    entity.OrderSale,
		ContactType: entity.ContactEmail,
		ProductIDs:  []string{"p1"},
	}
	pub.On("PublishWithContext", mock.Anything, ExchangeName, RoutingKey, false, false, mock.MatchedBy(func(msg amqp.Publishing) bool {
		var got usecase.DeliveryJob
		return json.Unmarshal(msg.Body, &got) == nil &&
			got.OrderID == "order-1" &&
			msg.DeliveryMode == amqp.Persistent &&
			msg.ContentType == "application/json"
	})).Return(nil)

	producer := &RabbitMQProducer{Ch: pub}
	require.NoError(t, producer.Dispatch(context.Background(), job))
	pub.AssertExpectations(t)
}

func TestPublishDeliveryError(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("channel closed"))

	err := (&RabbitMQProducer{Ch: pub}).PublishDelivery(context.Background(), usecase.DeliveryJob{OrderID: "o"})
	assert.ErrorContains(t, err, "channel closed")
}

type fakeAcknowledger struct {
	acked, nacked []uint64
	requeued      bool
}

func (f *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	f.acked = append(f.acked, tag)
	return nil
}

func (f *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	f.nacked = append(f.nacked, tag)
	f.requeued = f.requeued || requeue
	return nil
}

func (f *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return f.Nack(tag, false, requeue)
}

type fakeConsumer struct {
	msgs chan amqp.Delivery
}

func (f *fakeConsumer) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.msgs, nil
}

type runnerFunc func(ctx context.Context, job usecase.DeliveryJob) error

func (f runnerFunc) Run(ctx context.Context, job usecase.DeliveryJob) error { return f(ctx, job) }

func TestWorkerAcksAndDeadLetters(t *testing.T) {
	ack := &fakeAcknowledger{}
	msgs := make(chan amqp.Delivery, 3)
	okBody, _ := json.Marshal(usecase.DeliveryJob{OrderID: "ok"})
	failBody, _ := json.Marshal(usecase.DeliveryJob{OrderID: "fail"})
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: okBody}
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: failBody}
	msgs <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 3, Body: []byte("{not json")}
	close(msgs)

	var seen []string
	w := &Worker{
		Channel: &fakeConsumer{msgs: msgs},
		Runner: runnerFunc(func(_ context.Context, job usecase.DeliveryJob) error {
			seen = append(seen, job.OrderID)
			if job.OrderID == "fail" {
				return errors.New("produtos não encontrados")
			}
			return nil
		}),
		log: zap.NewNop(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := w.Start(ctx, QueueName)

	assert.Error(t, err, "canal fechado encerra o worker")
	assert.Equal(t, []string{"ok", "fail"}, seen)
	assert.Equal(t, []uint64{1}, ack.acked)
	assert.Equal(t, []uint64{2, 3}, ack.nacked)
	assert.False(t, ack.requeued)
}
