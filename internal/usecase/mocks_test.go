package usecase

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

// MockProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Product), args.Error(1)
}

func (m *MockProductRepository) FindByExternalIDs(ctx context.Context, refs []string) ([]*entity.Product, error) {
	args := m.Called(ctx, refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Product), args.Error(1)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByContact(ctx context.Context, email, phone *string) (*entity.Lead, error) {
	args := m.Called(ctx, email, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) Update(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) UpdateUserType(ctx context.Context, id, userType string) (*entity.Lead, error) {
	args := m.Called(ctx, id, userType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

// MockOrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *entity.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) MarkDelivered(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeEventRepository guarda os eventos em memória; as tarefas rodam em paralelo.
type fakeEventRepository struct {
	mu     sync.Mutex
	events []*entity.Event
	err    error
}

func (f *fakeEventRepository) Create(_ context.Context, event *entity.Event) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventRepository) ofType(t entity.EventType) []*entity.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*entity.Event
	for _, e := range f.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendProductDelivery(ctx context.Context, email ProductEmail) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

// MockWhatsAppService
type MockWhatsAppService struct {
	mock.Mock
}

func (m *MockWhatsAppService) SendDocument(ctx context.Context, doc WhatsAppDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

// MockBlobFetcher
type MockBlobFetcher struct {
	mock.Mock
}

func (m *MockBlobFetcher) FetchWithRetry(ctx context.Context, locator string, maxAttempts int) ([]byte, error) {
	args := m.Called(ctx, locator, maxAttempts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockDispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, job DeliveryJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

type recordingReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *recordingReporter) Report(_ context.Context, err error, _ map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func strPtr(s string) *string { return &s }

func product(id, name, path string) *entity.Product {
	return &entity.Product{ID: id, Name: name, ExternalID: "ext-" + id, ProviderPath: path}
}
