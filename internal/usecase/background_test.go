package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

func TestInProcessDispatcherRunsWithDeadline(t *testing.T) {
	f := newDeliveryFixture()
	products := new(MockProductRepository)
	p1 := product("p1", "Guide", "cdn.test/p1.pdf")

	products.On("FindByIDs", mock.Anything, []string{"p1"}).Return([]*entity.Product{p1}, nil)
	f.fetcher.On("FetchWithRetry", mock.MatchedBy(func(ctx context.Context) bool {
		deadline, ok := ctx.Deadline()
		return ok && time.Until(deadline) <= 5*time.Second
	}), p1.ProviderPath, 3).Return([]byte("pdf"), nil)
	f.email.On("SendProductDelivery", mock.Anything, mock.Anything).Return(nil)
	f.orders.On("MarkDelivered", mock.Anything, "order-1").Return(nil)

	runner := NewBackgroundDelivery(NewProductResolver(products), f.orch, LogPolicy{}, 5*time.Second, nil)
	dispatcher := NewInProcessDispatcher(runner)

	// o request que originou o job já terminou
	reqCtx, cancel := context.WithCancel(context.Background())
	require.NoError(t, dispatcher.Dispatch(reqCtx, DeliveryJob{
		OrderID:     "order-1",
		Category:    entity.OrderSale,
		ContactType: entity.ContactEmail,
		Email:       strPtr("a@x.com"),
		ProductIDs:  []string{"p1"},
	}))
	cancel()

	waitCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
	defer stop()
	require.NoError(t, dispatcher.Wait(waitCtx))

	f.orders.AssertExpectations(t)
	assert.Len(t, f.events.ofType(entity.EventEmailDelivery), 1)
}

func TestBackgroundDeliveryReturnsLookupError(t *testing.T) {
	f := newDeliveryFixture()
	products := new(MockProductRepository)
	products.On("FindByIDs", mock.Anything, []string{"gone"}).Return([]*entity.Product{}, nil)

	runner := NewBackgroundDelivery(NewProductResolver(products), f.orch, LogPolicy{}, 0, nil)
	err := runner.Run(context.Background(), DeliveryJob{OrderID: "order-2", ProductIDs: []string{"gone"}})

	var notFound *ProductsNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, DefaultDeliveryDeadline, runner.Deadline)
}
