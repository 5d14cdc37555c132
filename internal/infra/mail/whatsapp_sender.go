package mail

import (
	"context"

	"github.com/LeomirDias/gpmd-sys/internal/infra/integration/zapi"
	"github.com/LeomirDias/gpmd-sys/internal/usecase"
)

type documentClient interface {
	SendDocument(ctx context.Context, input zapi.SendDocumentInput) (*zapi.SendDocumentResponse, error)
}

// WhatsAppSender entrega cada arquivo como documento pela Z-API.
type WhatsAppSender struct {
	client documentClient
}

func NewWhatsAppSender(client *zapi.Client) *WhatsAppSender {
	return &WhatsAppSender{client: client}
}

func (s *WhatsAppSender) SendDocument(ctx context.Context, doc usecase.WhatsAppDocument) error {
	_, err := s.client.SendDocument(ctx, zapi.SendDocumentInput{
		Phone:    doc.Phone,
		FileName: doc.FileName,
		Content:  doc.Content,
		Caption:  doc.Caption,
	})
	return err
}
