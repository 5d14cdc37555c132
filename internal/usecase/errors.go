package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindUnauthorized
	KindNotFound
	KindConflict
)

// AppError é um erro de regra de negócio com código estável e status HTTP.
type AppError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func IsAppError(err error) bool {
	var de *AppError
	return errors.As(err, &de)
}

// TechnicalError é falha de infraestrutura (banco, fila); vira 500.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func newValidationError(message string, fields []ValidationError) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    "VALIDATION_ERROR",
		Message: message,
		Details: map[string]any{"details": fields},
	}
}

// ProductsNotFoundError lista as referências que não resolveram para produto.
type ProductsNotFoundError struct {
	Field   string // "id" ou "external_id"
	Missing []string
}

func (e *ProductsNotFoundError) Error() string {
	return fmt.Sprintf("Nenhum produto com %s: %s", e.Field, strings.Join(e.Missing, ", "))
}

// DownloadError aborta a entrega: o arquivo de um produto não pôde ser baixado.
type DownloadError struct {
	ProductID string
	Err       error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("erro ao baixar arquivo do produto %s: %v", e.ProductID, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

// DeliveryError é a falha de uma tarefa de envio; não aborta as demais.
type DeliveryError struct {
	Channel Channel `json:"channel"`
	Message string  `json:"error"`
}

var ErrChannelUnavailable = errors.New("canal de entrega não configurado")
