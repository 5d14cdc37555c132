package zapi

import "fmt"

type SendDocumentInput struct {
	Phone    string // qualquer formato; o client normaliza para 55DDDNUMERO
	FileName string
	Content  []byte
	Caption  string
}

type sendDocumentPayload struct {
	Phone    string `json:"phone"`
	Document string `json:"document"` // data URI
	FileName string `json:"fileName"`
	Caption  string `json:"caption,omitempty"`
}

type SendDocumentResponse struct {
	ZaapID    string `json:"zaapId"`
	MessageID string `json:"messageId"`
	ID        string `json:"id"`
}

// APIError é uma resposta não-2xx da Z-API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("z-api retornou status %d: %s", e.StatusCode, e.Body)
}
