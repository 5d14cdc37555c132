package handlers

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/LeomirDias/gpmd-sys/internal/infra/http/middleware"
	"github.com/LeomirDias/gpmd-sys/internal/usecase"
)

type caktoProduct struct {
	ID string `json:"id"`
}

type caktoCustomer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type caktoWebhookRequest struct {
	Secret string `json:"secret"`
	Event  string `json:"event"`
	Data   struct {
		Customer *caktoCustomer  `json:"customer"`
		Amount   json.RawMessage `json:"amount"`
		Product  *caktoProduct   `json:"product"`
		Products []caktoProduct  `json:"products"`
	} `json:"data"`
}

// externalIDs prefere data.products; cai para data.product quando a lista vem vazia.
func (req caktoWebhookRequest) externalIDs() []string {
	var ids []string
	for _, p := range req.Data.Products {
		if id := strings.TrimSpace(p.ID); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) > 0 {
		return ids
	}
	if req.Data.Product != nil {
		if id := strings.TrimSpace(req.Data.Product.ID); id != "" {
			return []string{id}
		}
	}
	return nil
}

func (req caktoWebhookRequest) toInput() usecase.PurchaseInput {
	input := usecase.PurchaseInput{
		Event:       req.Event,
		AmountCents: parseAmountCents(req.Data.Amount),
		ExternalIDs: req.externalIDs(),
	}
	if c := req.Data.Customer; c != nil {
		input.Customer = &usecase.PurchaseCustomer{
			Name:  c.Name,
			Email: &c.Email,
			Phone: &c.Phone,
		}
	}
	return input
}

// parseAmountCents aceita número ou string em reais ("49.90") e devolve centavos.
// Valor ausente ou ilegível vira 0.
func parseAmountCents(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0
		}
		text = strings.TrimSpace(text)
	}

	amount, err := decimal.NewFromString(text)
	if err != nil {
		return 0
	}
	return amount.Shift(2).Round(0).IntPart()
}

type WebhookHandler struct {
	uc     *usecase.ProcessPurchaseUseCase
	secret string
	log    *zap.Logger
}

func NewWebhookHandler(uc *usecase.ProcessPurchaseUseCase, secret string, log *zap.Logger) *WebhookHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookHandler{uc: uc, secret: secret, log: log}
}

// Handle: POST /api/webhooks/send-product. Responde assim que o pedido existe.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req caktoWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.RecordWebhook("unknown", "bad_request")
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "JSON inválido"})
		return
	}

	if h.secret == "" || subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.secret)) != 1 {
		h.log.Warn("webhook com segredo inválido ou ausente")
		middleware.RecordWebhook(req.Event, "unauthorized")
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": "Segredo inválido"})
		return
	}

	out, err := h.uc.Execute(r.Context(), req.toInput())
	if err != nil {
		middleware.RecordWebhook(req.Event, "error")
		writeError(w, h.log, err)
		return
	}

	result := "accepted"
	if out.Ignored {
		result = "ignored"
	}
	middleware.RecordWebhook(req.Event, result)
	writeJSON(w, http.StatusOK, out)
}
