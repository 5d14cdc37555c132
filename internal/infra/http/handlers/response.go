package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/LeomirDias/gpmd-sys/internal/usecase"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError traduz os erros do usecase para status + corpo JSON e devolve o status.
func writeError(w http.ResponseWriter, log *zap.Logger, err error) int {
	var (
		appErr   *usecase.AppError
		notFound *usecase.ProductsNotFoundError
		dlErr    *usecase.DownloadError
	)

	switch {
	case errors.As(err, &notFound):
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error":   "Produto(s) não encontrado(s)",
			"detail":  notFound.Error(),
			"missing": notFound.Missing,
		})
		return http.StatusNotFound

	case errors.As(err, &appErr):
		body := map[string]any{"error": appErr.Message}
		for k, v := range appErr.Details {
			body[k] = v
		}
		status := appErr.HTTPStatus()
		writeJSON(w, status, body)
		return status

	case errors.As(err, &dlErr):
		log.Error("falha ao baixar arquivo do produto", zap.String("product_id", dlErr.ProductID), zap.Error(dlErr.Err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":      "Erro ao baixar arquivo do produto",
			"detail":     dlErr.Err.Error(),
			"product_id": dlErr.ProductID,
		})
		return http.StatusInternalServerError

	default:
		log.Error("erro inesperado", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "Erro interno"})
		return http.StatusInternalServerError
	}
}
