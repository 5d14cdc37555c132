package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
	"github.com/LeomirDias/gpmd-sys/internal/usecase"
)

const (
	guideID  = "11111111-1111-1111-1111-111111111111"
	brokenID = "22222222-2222-2222-2222-222222222222"
	ghostID  = "33333333-3333-3333-3333-333333333333"
)

type testApp struct {
	leads      *memLeads
	orders     *memOrders
	events     *memEvents
	dispatcher *recordingDispatcher
	lead       *LeadHandler
	webhook    *WebhookHandler
}

func newTestApp() *testApp {
	app := &testApp{
		leads:      &memLeads{},
		orders:     &memOrders{},
		events:     &memEvents{},
		dispatcher: &recordingDispatcher{},
	}
	products := &memProducts{products: []*entity.Product{
		{ID: guideID, Name: "Guia", ExternalID: "cakto-guide", ProviderPath: "cdn.test/guia.pdf"},
		{ID: brokenID, Name: "Quebrado", ExternalID: "cakto-broken", ProviderPath: "cdn.test/broken.pdf"},
	}}

	leadService := usecase.NewLeadService(app.leads, nil, nil)
	resolver := usecase.NewProductResolver(products)
	orch := usecase.NewDeliveryOrchestrator(fakeFetcher{}, okEmail{}, nil, app.events, app.orders, usecase.MessageComposer{}, nil)

	app.lead = NewLeadHandler(
		usecase.NewCaptureLeadUseCase(leadService, resolver, app.orders, orch, nil),
		usecase.NewUpdateLeadUseCase(app.leads),
		nil,
	)
	app.webhook = NewWebhookHandler(
		usecase.NewProcessPurchaseUseCase(leadService, resolver, app.orders, app.dispatcher, nil),
		"s3cret",
		nil,
	)
	return app
}

func do(h http.HandlerFunc, method, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	var out map[string]any
	json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestCaptureLeadCreated(t *testing.T) {
	app := newTestApp()

	rec, body := do(app.lead.CaptureLead, http.MethodPost,
		`{"landing_source":"lp-guia","name":"Ana","email":"a@x.com","product_ids":["`+guideID+`"]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "email", body["delivery_sent"])
	assert.NotContains(t, body, "delivery_errors")
	assert.Equal(t, []string{"order-a"}, app.orders.delivered)
	assert.Len(t, app.events.events, 1)
}

func TestCaptureLeadBadJSON(t *testing.T) {
	rec, body := do(newTestApp().lead.CaptureLead, http.MethodPost, `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "JSON inválido", body["error"])
}

func TestCaptureLeadValidationDetails(t *testing.T) {
	rec, body := do(newTestApp().lead.CaptureLead, http.MethodPost, `{"name":"Ana"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	details, ok := body["details"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, details)
	first := details[0].(map[string]any)
	assert.Contains(t, first, "field")
	assert.Contains(t, first, "message")
}

func TestCaptureLeadConflictReturnsLeadID(t *testing.T) {
	app := newTestApp()
	email := "a@x.com"
	app.leads.leads = append(app.leads.leads, &entity.Lead{ID: "lead-existing", Email: &email})

	rec, body := do(app.lead.CaptureLead, http.MethodPost,
		`{"landing_source":"lp","name":"Ana","email":"a@x.com","product_id":"`+guideID+`"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "lead-existing", body["lead_id"])
	assert.Empty(t, app.orders.created)
}

func TestCaptureLeadMissingProducts(t *testing.T) {
	app := newTestApp()

	rec, body := do(app.lead.CaptureLead, http.MethodPost,
		`{"landing_source":"lp","name":"Ana","phone":"64999990000","product_ids":["`+guideID+`","`+ghostID+`"]}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, []any{ghostID}, body["missing"])
	assert.Empty(t, app.leads.leads)
	assert.Empty(t, app.orders.created)
}

func TestCaptureLeadDownloadFailure(t *testing.T) {
	app := newTestApp()

	rec, body := do(app.lead.CaptureLead, http.MethodPost,
		`{"landing_source":"lp","name":"Ana","email":"b@x.com","product_ids":["`+guideID+`","`+brokenID+`"]}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, brokenID, body["product_id"])
	assert.Empty(t, app.orders.delivered)
	assert.Empty(t, app.events.events)
}

func TestCaptureLeadReportsDeliveryErrors(t *testing.T) {
	app := newTestApp()

	// sem WhatsApp configurado: a tarefa falha, o email sai
	rec, body := do(app.lead.CaptureLead, http.MethodPost,
		`{"landing_source":"lp","name":"Ana","email":"c@x.com","phone":"64999990000","product_ids":["`+guideID+`"]}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "both", body["delivery_sent"])
	errs := body["delivery_errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "whatsapp", errs[0].(map[string]any)["channel"])
	assert.Empty(t, app.orders.delivered)
}

func TestUpdateLead(t *testing.T) {
	app := newTestApp()
	email := "a@x.com"
	app.leads.leads = append(app.leads.leads, &entity.Lead{ID: "lead-1", Email: &email, UserType: "hobby"})

	rec, body := do(app.lead.UpdateLead, http.MethodPatch, `{"user_type":"professional","email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "professional", body["data"].(map[string]any)["user_type"])

	rec, _ = do(app.lead.UpdateLead, http.MethodPatch, `{"user_type":"professional","email":"z@x.com"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWebhookRejectsBadSecret(t *testing.T) {
	app := newTestApp()

	rec, _ := do(app.webhook.Handle, http.MethodPost, `{"secret":"nope","event":"purchase_approved"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, app.orders.created)
}

func TestWebhookIgnoresOtherEvents(t *testing.T) {
	rec, body := do(newTestApp().webhook.Handle, http.MethodPost, `{"secret":"s3cret","event":"boleto_gerado"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ignored"])
}

func TestWebhookMissingCustomer(t *testing.T) {
	rec, body := do(newTestApp().webhook.Handle, http.MethodPost,
		`{"secret":"s3cret","event":"purchase_approved","data":{"product":{"id":"cakto-guide"}}}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Dados do cliente ausentes", body["error"])
}

func TestWebhookUnknownProduct(t *testing.T) {
	app := newTestApp()

	rec, body := do(app.webhook.Handle, http.MethodPost,
		`{"secret":"s3cret","event":"purchase_approved","data":{"customer":{"name":"Ana","email":"a@x.com"},"products":[{"id":"cakto-x"}]}}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, []any{"cakto-x"}, body["missing"])
	assert.Empty(t, app.orders.created)
}

func TestWebhookAcceptsPurchase(t *testing.T) {
	app := newTestApp()

	rec, body := do(app.webhook.Handle, http.MethodPost,
		`{"secret":"s3cret","event":"purchase_approved","data":{"customer":{"name":"","phone":"64999990000"},"amount":"49.90","product":{"id":"cakto-guide"}}}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "order-a", body["order_id"])
	require.Len(t, app.orders.created, 1)
	assert.Equal(t, int64(4990), app.orders.created[0].TotalAmount)
	assert.Equal(t, entity.OrderSale, app.orders.created[0].Type)
	require.Len(t, app.dispatcher.jobs, 1)
	assert.Equal(t, "Cliente", app.dispatcher.jobs[0].CustomerName)
	assert.Equal(t, []string{guideID}, app.dispatcher.jobs[0].ProductIDs)
	assert.Equal(t, entity.Converted, app.leads.leads[0].ConversionStatus)
}

func TestParseAmountCents(t *testing.T) {
	cases := []struct {
		raw  string
		want int64
	}{
		{``, 0},
		{`null`, 0},
		{`49.9`, 4990},
		{`"49.90"`, 4990},
		{`" 10 "`, 1000},
		{`97`, 9700},
		{`"abc"`, 0},
		{`19.999`, 2000},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseAmountCents(json.RawMessage(tc.raw)), tc.raw)
	}
}

func TestExternalIDsPrefersList(t *testing.T) {
	var req caktoWebhookRequest
	require.NoError(t, json.Unmarshal([]byte(`{"data":{"product":{"id":"single"},"products":[{"id":" a "},{"id":""},{"id":"b"}]}}`), &req))
	assert.Equal(t, []string{"a", "b"}, req.externalIDs())

	require.NoError(t, json.Unmarshal([]byte(`{"data":{"product":{"id":"single"},"products":[]}}`), &req))
	assert.Equal(t, []string{"single"}, req.externalIDs())
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type fakeConn struct{ closed bool }

func (f fakeConn) IsClosed() bool { return f.closed }

func TestHealth(t *testing.T) {
	h := NewHealthHandler(fakePinger{}, fakeConn{}, nil, map[string]bool{"email": true, "whatsapp": false})
	rec, body := do(h.Handle, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])

	h = NewHealthHandler(fakePinger{err: errors.New("down")}, fakeConn{closed: true}, nil, nil)
	rec, body = do(h.Handle, http.MethodGet, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", body["status"])
}
