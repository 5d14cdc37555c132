package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
	"github.com/LeomirDias/gpmd-sys/internal/usecase"
)

type memLeads struct {
	mu    sync.Mutex
	leads []*entity.Lead
}

func (m *memLeads) FindByContact(_ context.Context, email, phone *string) (*entity.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.leads {
		if (email != nil && l.Email != nil && *l.Email == *email) || (phone != nil && l.Phone != nil && *l.Phone == *phone) {
			return l, nil
		}
	}
	return nil, entity.ErrLeadNotFound
}

func (m *memLeads) Create(_ context.Context, lead *entity.Lead) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	lead.ID = "lead-" + string(rune('a'+len(m.leads)))
	m.leads = append(m.leads, lead)
	return nil
}

func (m *memLeads) Update(context.Context, *entity.Lead) error { return nil }

func (m *memLeads) UpdateUserType(_ context.Context, id, userType string) (*entity.Lead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.leads {
		if l.ID == id {
			l.UserType = userType
			return l, nil
		}
	}
	return nil, entity.ErrLeadNotFound
}

type memProducts struct {
	products []*entity.Product
}

func (m *memProducts) FindByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	return m.filter(ids, func(p *entity.Product) string { return p.ID }), nil
}

func (m *memProducts) FindByExternalIDs(_ context.Context, refs []string) ([]*entity.Product, error) {
	return m.filter(refs, func(p *entity.Product) string { return p.ExternalID }), nil
}

func (m *memProducts) filter(refs []string, key func(*entity.Product) string) []*entity.Product {
	var out []*entity.Product
	for _, p := range m.products {
		for _, r := range refs {
			if key(p) == r {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

type memOrders struct {
	mu        sync.Mutex
	created   []*entity.Order
	delivered []string
}

func (m *memOrders) Create(_ context.Context, o *entity.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = "order-" + string(rune('a'+len(m.created)))
	m.created = append(m.created, o)
	return nil
}

func (m *memOrders) MarkDelivered(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delivered = append(m.delivered, id)
	return nil
}

type memEvents struct {
	mu     sync.Mutex
	events []*entity.Event
}

func (m *memEvents) Create(_ context.Context, e *entity.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

// fakeFetcher falha para locators que contêm "broken".
type fakeFetcher struct{}

func (fakeFetcher) FetchWithRetry(_ context.Context, locator string, _ int) ([]byte, error) {
	if strings.Contains(locator, "broken") {
		return nil, errors.New("connection reset by peer")
	}
	return []byte(locator), nil
}

type okEmail struct{}

func (okEmail) SendProductDelivery(context.Context, usecase.ProductEmail) error { return nil }

type recordingDispatcher struct {
	jobs []usecase.DeliveryJob
}

func (d *recordingDispatcher) Dispatch(_ context.Context, job usecase.DeliveryJob) error {
	d.jobs = append(d.jobs, job)
	return nil
}
