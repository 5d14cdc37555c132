package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/LeomirDias/gpmd-sys/internal/infra/http/middleware"
	"github.com/LeomirDias/gpmd-sys/internal/usecase"
)

type LeadHandler struct {
	capture *usecase.CaptureLeadUseCase
	update  *usecase.UpdateLeadUseCase
	log     *zap.Logger
}

func NewLeadHandler(capture *usecase.CaptureLeadUseCase, update *usecase.UpdateLeadUseCase, log *zap.Logger) *LeadHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeadHandler{capture: capture, update: update, log: log}
}

// CaptureLead: POST /api/leads. A entrega acontece antes da resposta.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	var input usecase.CaptureLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		middleware.RecordLeadCapture(http.StatusBadRequest)
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "JSON inválido"})
		return
	}

	out, err := h.capture.Execute(r.Context(), input)
	if err != nil {
		middleware.RecordLeadCapture(writeError(w, h.log, err))
		return
	}

	middleware.RecordLeadCapture(http.StatusCreated)
	writeJSON(w, http.StatusCreated, out)
}

// UpdateLead: PATCH /api/leads, atualiza o user_type achando o lead por email/telefone.
func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "JSON inválido"})
		return
	}

	out, err := h.update.Execute(r.Context(), input)
	if err != nil {
		writeError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
